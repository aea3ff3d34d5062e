// Package httpapi serves health, metrics and read-only tracker status.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"daio-rewards/internal/domain"
	"daio-rewards/internal/observability"
	"daio-rewards/internal/scheduler"
	"daio-rewards/internal/tracker"
)

// Source is the read-only tracker view served over HTTP.
type Source interface {
	Status() tracker.Status
	List() []string
	IsTracked(address string) bool
	History(ctx context.Context, address string, limit int) ([]*domain.RewardSnapshot, error)
}

// Options configures the router.
type Options struct {
	Source    Source
	Schedule  *scheduler.Daily // nil omits next_check_at
	StartedAt time.Time
	Now       func() time.Time
	Logger    *log.Logger
}

// Server holds the HTTP router.
type Server struct {
	source    Source
	schedule  *scheduler.Daily
	startedAt time.Time
	now       func() time.Time
	logger    *log.Logger
	router    http.Handler
}

// New builds the router.
func New(opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	started := opts.StartedAt
	if started.IsZero() {
		started = now()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		source:    opts.Source,
		schedule:  opts.Schedule,
		startedAt: started,
		now:       now,
		logger:    logger,
	}
	s.router = s.buildRouter()
	return s
}

// Handler exposes the configured HTTP router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.Handler())
	r.Get("/status", s.handleStatus)
	r.Get("/wallets", s.handleWallets)
	r.Get("/wallets/{address}/history", s.handleHistory)

	return r
}

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	Status         string     `json:"status"`
	Uptime         string     `json:"uptime"`
	StartedAt      time.Time  `json:"started_at"`
	TrackedWallets int        `json:"tracked_wallets"`
	ChecksRun      int        `json:"checks_run"`
	LastRunID      string     `json:"last_run_id,omitempty"`
	LastCheckAt    *time.Time `json:"last_check_at,omitempty"`
	LastDuration   string     `json:"last_duration,omitempty"`
	Schedule       string     `json:"schedule,omitempty"`
	NextCheckAt    *time.Time `json:"next_check_at,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	st := s.source.Status()

	resp := StatusResponse{
		Status:         "running",
		Uptime:         now.Sub(s.startedAt).Truncate(time.Second).String(),
		StartedAt:      s.startedAt,
		TrackedWallets: st.TrackedWallets,
		ChecksRun:      st.ChecksRun,
		LastRunID:      st.LastRunID,
	}
	if !st.LastCheckAt.IsZero() {
		last := st.LastCheckAt
		resp.LastCheckAt = &last
		resp.LastDuration = st.LastDuration.String()
	}
	if s.schedule != nil {
		next := s.schedule.Next(now)
		resp.Schedule = s.schedule.String()
		resp.NextCheckAt = &next
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// WalletsResponse is the JSON response for /wallets.
type WalletsResponse struct {
	Wallets []string `json:"wallets"`
}

func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	wallets := s.source.List()
	if wallets == nil {
		wallets = []string{}
	}
	s.writeJSON(w, http.StatusOK, WalletsResponse{Wallets: wallets})
}

// HistoryEntry is one recorded reward in /wallets/{address}/history.
type HistoryEntry struct {
	RunID           string    `json:"run_id"`
	TokenAccount    string    `json:"token_account"`
	MintAddress     string    `json:"mint_address"`
	AcquiredAt      time.Time `json:"acquired_at"`
	HoldingDays     int       `json:"holding_days"`
	Tier            string    `json:"tier"`
	BaseMultiplier  float64   `json:"base_multiplier"`
	Boost           float64   `json:"boost"`
	FinalMultiplier float64   `json:"final_multiplier"`
	Seed            int       `json:"seed"`
	CheckedAt       time.Time `json:"checked_at"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !s.source.IsTracked(address) {
		s.writeError(w, http.StatusNotFound, "wallet is not tracked")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	snaps, err := s.source.History(r.Context(), address, limit)
	if errors.Is(err, tracker.ErrHistoryUnavailable) {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		s.logger.Printf("WARN: history for %s: %v", address, err)
		s.writeError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}

	entries := make([]HistoryEntry, 0, len(snaps))
	for _, snap := range snaps {
		entries = append(entries, HistoryEntry{
			RunID:           snap.RunID,
			TokenAccount:    snap.TokenAccount,
			MintAddress:     snap.MintAddress,
			AcquiredAt:      snap.AcquiredAt,
			HoldingDays:     snap.HoldingDays,
			Tier:            string(snap.Tier),
			BaseMultiplier:  snap.BaseMultiplier,
			Boost:           snap.Boost,
			FinalMultiplier: snap.FinalMultiplier,
			Seed:            snap.Seed,
			CheckedAt:       snap.CheckedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("WARN: encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
