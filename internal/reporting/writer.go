package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"daio-rewards/internal/domain"
)

// Writer persists run reports as Markdown and CSV files.
type Writer struct {
	dir string
	now func() time.Time // Injectable clock for deterministic output
}

// NewWriter creates a Writer that writes into dir.
func NewWriter(dir string) *Writer {
	return &Writer{
		dir: dir,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Write renders the summary and writes rewards_<timestamp>_<run>.md and .csv.
// Returns the paths written.
func (w *Writer) Write(s *domain.CheckSummary) (mdPath, csvPath string, err error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	report := BuildReport(s, w.now())
	base := fmt.Sprintf("rewards_%s_%s", s.StartedAt.UTC().Format("20060102T150405Z"), shortRunID(s.RunID))

	mdPath = filepath.Join(w.dir, base+".md")
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(report)), 0o644); err != nil {
		return "", "", fmt.Errorf("write markdown report: %w", err)
	}

	csvPath = filepath.Join(w.dir, base+".csv")
	if err := os.WriteFile(csvPath, []byte(RenderCSV(report.Rewards)), 0o644); err != nil {
		return "", "", fmt.Errorf("write csv report: %w", err)
	}

	return mdPath, csvPath, nil
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
