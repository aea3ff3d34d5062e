// Package config loads tracker settings from defaults, a TOML file,
// environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"daio-rewards/internal/analysis"
	"daio-rewards/internal/holdings"
	"daio-rewards/internal/scheduler"
	"daio-rewards/internal/solana"
)

// Duration is a time.Duration that decodes from TOML strings like "60s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds all tracker settings.
type Config struct {
	// Solana
	RPCEndpoint      string   `toml:"rpc_endpoint"`
	WSEndpoint       string   `toml:"ws_endpoint"`
	IssuerAddress    string   `toml:"issuer_address"`
	TokenProgramID   string   `toml:"token_program_id"`
	RPCTimeout       Duration `toml:"rpc_timeout"`
	RPCMaxRetries    int      `toml:"rpc_max_retries"`
	RPCRateLimit     float64  `toml:"rpc_rate_limit"`
	HistoryPageLimit int      `toml:"history_page_limit"`
	MaxHistoryPages  int      `toml:"max_history_pages"`
	WatchDebounce    Duration `toml:"watch_debounce"`

	// Schedule
	CheckTime string `toml:"check_time"`
	Timezone  string `toml:"timezone"`

	// Tracked wallets added at start-up
	Wallets []string `toml:"wallets"`

	// Storage
	PostgresDSN   string `toml:"postgres_dsn"`
	ClickhouseDSN string `toml:"clickhouse_dsn"`

	// Analysis
	OpenAIAPIKey      string   `toml:"openai_api_key"`
	OpenAIModel       string   `toml:"openai_model"`
	OpenAIBaseURL     string   `toml:"openai_base_url"`
	AnalysisMaxTokens int      `toml:"analysis_max_tokens"`
	AnalysisTimeout   Duration `toml:"analysis_timeout"`

	// Output and observability
	OutputDir      string `toml:"output_dir"`
	LogFile        string `toml:"log_file"`
	MetricsAddr    string `toml:"metrics_addr"`
	TracingEnabled bool   `toml:"tracing_enabled"`
	OTLPEndpoint   string `toml:"otlp_endpoint"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		RPCEndpoint:       "https://api.mainnet-beta.solana.com",
		IssuerAddress:     holdings.DefaultIssuer,
		TokenProgramID:    solana.TokenProgramID,
		RPCTimeout:        Duration{solana.DefaultTimeout},
		RPCMaxRetries:     solana.DefaultMaxRetries,
		RPCRateLimit:      10,
		HistoryPageLimit:  holdings.DefaultPageLimit,
		MaxHistoryPages:   holdings.DefaultMaxPages,
		WatchDebounce:     Duration{5 * time.Minute},
		CheckTime:         "16:21",
		Timezone:          scheduler.DefaultTimezone,
		OpenAIModel:       analysis.DefaultModel,
		AnalysisMaxTokens: analysis.DefaultMaxTokens,
		AnalysisTimeout:   Duration{analysis.DefaultTimeout},
		MetricsAddr:       ":9090",
		OTLPEndpoint:      "localhost:4317",
	}
}

// LoadDotEnv loads variables from a .env file without overriding the environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and then the environment.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"SOLANA_RPC_URL":              &c.RPCEndpoint,
		"SOLANA_WS_URL":               &c.WSEndpoint,
		"DAIO_ISSUER_ADDRESS":         &c.IssuerAddress,
		"CHECK_TIME":                  &c.CheckTime,
		"CHECK_TIMEZONE":              &c.Timezone,
		"POSTGRES_DSN":                &c.PostgresDSN,
		"CLICKHOUSE_DSN":              &c.ClickhouseDSN,
		"OPENAI_API_KEY":              &c.OpenAIAPIKey,
		"OPENAI_MODEL":                &c.OpenAIModel,
		"OPENAI_BASE_URL":             &c.OpenAIBaseURL,
		"METRICS_ADDR":                &c.MetricsAddr,
		"OUTPUT_DIR":                  &c.OutputDir,
		"LOG_FILE":                    &c.LogFile,
		"OTEL_EXPORTER_OTLP_ENDPOINT": &c.OTLPEndpoint,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	if v := strings.TrimSpace(getenv("TRACING_ENABLED")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRACING_ENABLED: %w", err)
		}
		c.TracingEnabled = b
	}
	if v := strings.TrimSpace(getenv("TRACKED_WALLETS")); v != "" {
		c.Wallets = splitList(v)
	}
	return nil
}

// BindFlags registers flags whose defaults are the current values, so that
// parsing fs overrides only what is given on the command line.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.RPCEndpoint, "rpc-endpoint", c.RPCEndpoint, "Solana RPC HTTP endpoint")
	fs.StringVar(&c.WSEndpoint, "ws-endpoint", c.WSEndpoint, "Solana WebSocket endpoint (enables activity re-checks)")
	fs.StringVar(&c.IssuerAddress, "issuer", c.IssuerAddress, "Address whose mints qualify for rewards")
	fs.StringVar(&c.TokenProgramID, "token-program", c.TokenProgramID, "SPL Token program ID")
	fs.DurationVar(&c.RPCTimeout.Duration, "rpc-timeout", c.RPCTimeout.Duration, "Per-request RPC timeout")
	fs.IntVar(&c.RPCMaxRetries, "rpc-max-retries", c.RPCMaxRetries, "RPC retry attempts")
	fs.Float64Var(&c.RPCRateLimit, "rpc-rate-limit", c.RPCRateLimit, "RPC requests per second (0 disables)")
	fs.IntVar(&c.HistoryPageLimit, "history-page-limit", c.HistoryPageLimit, "Signatures per history page")
	fs.IntVar(&c.MaxHistoryPages, "max-history-pages", c.MaxHistoryPages, "History pages scanned per token account")
	fs.DurationVar(&c.WatchDebounce.Duration, "watch-debounce", c.WatchDebounce.Duration, "Minimum interval between activity re-checks per wallet")
	fs.StringVar(&c.CheckTime, "check-time", c.CheckTime, "Daily check time (HH:MM)")
	fs.StringVar(&c.Timezone, "timezone", c.Timezone, "IANA timezone of the daily check")
	fs.StringVar(&c.PostgresDSN, "postgres-dsn", c.PostgresDSN, "PostgreSQL connection string (persists tracked wallets)")
	fs.StringVar(&c.ClickhouseDSN, "clickhouse-dsn", c.ClickhouseDSN, "ClickHouse connection string (records reward history)")
	fs.StringVar(&c.OpenAIModel, "openai-model", c.OpenAIModel, "Chat model used for holding analysis")
	fs.StringVar(&c.OpenAIBaseURL, "openai-base-url", c.OpenAIBaseURL, "OpenAI-compatible API base URL")
	fs.IntVar(&c.AnalysisMaxTokens, "analysis-max-tokens", c.AnalysisMaxTokens, "Max tokens per analysis")
	fs.DurationVar(&c.AnalysisTimeout.Duration, "analysis-timeout", c.AnalysisTimeout.Duration, "Analysis call timeout")
	fs.StringVar(&c.OutputDir, "output-dir", c.OutputDir, "Directory for Markdown/CSV run reports (empty disables)")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Also log to this file, rotated by size")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "HTTP address for /health, /metrics and /status (empty disables)")
	fs.BoolVar(&c.TracingEnabled, "tracing", c.TracingEnabled, "Export OpenTelemetry traces over OTLP gRPC")
	fs.StringVar(&c.OTLPEndpoint, "otlp-endpoint", c.OTLPEndpoint, "OTLP gRPC collector endpoint")
	fs.Func("wallet", "Track this wallet at start-up (repeatable)", func(v string) error {
		c.Wallets = append(c.Wallets, splitList(v)...)
		return nil
	})
}

// Validate checks settings that would otherwise fail at run time.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.RPCEndpoint) == "" {
		errs = append(errs, errors.New("rpc_endpoint is required"))
	}
	if err := solana.ValidateAddress(c.IssuerAddress); err != nil {
		errs = append(errs, fmt.Errorf("issuer_address: %w", err))
	}
	if err := solana.ValidateAddress(c.TokenProgramID); err != nil {
		errs = append(errs, fmt.Errorf("token_program_id: %w", err))
	}
	if _, err := scheduler.ParseDaily(c.CheckTime, c.Timezone); err != nil {
		errs = append(errs, err)
	}
	if c.RPCTimeout.Duration <= 0 {
		errs = append(errs, errors.New("rpc_timeout must be positive"))
	}
	if c.RPCMaxRetries < 0 {
		errs = append(errs, errors.New("rpc_max_retries must not be negative"))
	}
	if c.RPCRateLimit < 0 {
		errs = append(errs, errors.New("rpc_rate_limit must not be negative"))
	}
	if c.HistoryPageLimit <= 0 || c.HistoryPageLimit > 1000 {
		errs = append(errs, errors.New("history_page_limit must be in [1, 1000]"))
	}
	if c.MaxHistoryPages <= 0 {
		errs = append(errs, errors.New("max_history_pages must be positive"))
	}
	if c.AnalysisMaxTokens <= 0 {
		errs = append(errs, errors.New("analysis_max_tokens must be positive"))
	}
	if c.AnalysisTimeout.Duration <= 0 {
		errs = append(errs, errors.New("analysis_timeout must be positive"))
	}
	for _, w := range c.Wallets {
		if err := solana.ValidateAddress(w); err != nil {
			errs = append(errs, fmt.Errorf("wallets: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Schedule returns the parsed daily check schedule.
func (c *Config) Schedule() (scheduler.Daily, error) {
	return scheduler.ParseDaily(c.CheckTime, c.Timezone)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
