package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Load("", envMap(nil))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "16:21", cfg.CheckTime)
	assert.Equal(t, "America/Los_Angeles", cfg.Timezone)
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout.Duration)
	assert.Equal(t, 300, cfg.AnalysisMaxTokens)

	sched, err := cfg.Schedule()
	require.NoError(t, err)
	assert.Equal(t, 16, sched.Hour)
	assert.Equal(t, 21, sched.Minute)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "tracker.toml", `
rpc_endpoint = "https://file.example"
check_time = "09:30"
analysis_timeout = "15s"
wallets = ["`+testWallet+`"]
`)

	cfg, err := Load(path, envMap(map[string]string{
		"SOLANA_RPC_URL":  "https://env.example",
		"TRACING_ENABLED": "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example", cfg.RPCEndpoint, "env overrides file")
	assert.Equal(t, "09:30", cfg.CheckTime, "file overrides default")
	assert.Equal(t, 15*time.Second, cfg.AnalysisTimeout.Duration)
	assert.Equal(t, []string{testWallet}, cfg.Wallets)
	assert.True(t, cfg.TracingEnabled)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-check-time", "07:00", "-rpc-rate-limit", "2.5"}))

	assert.Equal(t, "07:00", cfg.CheckTime, "flag overrides file")
	assert.Equal(t, "https://env.example", cfg.RPCEndpoint, "unset flag keeps env value")
	assert.Equal(t, 2.5, cfg.RPCRateLimit)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeFile(t, "bad.toml", `rpc_endpont = "typo"`)

	_, err := Load(path, envMap(nil))
	assert.ErrorContains(t, err, "rpc_endpont")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"), envMap(nil))
	assert.Error(t, err)
}

func TestLoad_BadEnvBool(t *testing.T) {
	_, err := Load("", envMap(map[string]string{"TRACING_ENABLED": "maybe"}))
	assert.ErrorContains(t, err, "TRACING_ENABLED")
}

func TestLoad_WalletsFromEnv(t *testing.T) {
	cfg, err := Load("", envMap(map[string]string{"TRACKED_WALLETS": " a , b ,,"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cfg.Wallets)
}

func TestWalletFlagRepeatable(t *testing.T) {
	cfg := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.BindFlags(fs)

	require.NoError(t, fs.Parse([]string{"-wallet", "a", "-wallet", "b,c"}))
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Wallets)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad check time", func(c *Config) { c.CheckTime = "4:21pm" }, "check time"},
		{"unknown timezone", func(c *Config) { c.Timezone = "Nowhere/City" }, "timezone"},
		{"bad issuer", func(c *Config) { c.IssuerAddress = "not base58!" }, "issuer_address"},
		{"empty rpc", func(c *Config) { c.RPCEndpoint = " " }, "rpc_endpoint"},
		{"zero page limit", func(c *Config) { c.HistoryPageLimit = 0 }, "history_page_limit"},
		{"page limit too large", func(c *Config) { c.HistoryPageLimit = 5000 }, "history_page_limit"},
		{"zero pages", func(c *Config) { c.MaxHistoryPages = 0 }, "max_history_pages"},
		{"zero tokens", func(c *Config) { c.AnalysisMaxTokens = 0 }, "analysis_max_tokens"},
		{"zero analysis timeout", func(c *Config) { c.AnalysisTimeout.Duration = 0 }, "analysis_timeout"},
		{"negative rate", func(c *Config) { c.RPCRateLimit = -1 }, "rpc_rate_limit"},
		{"bad wallet", func(c *Config) { c.Wallets = []string{"xyz"} }, "wallets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := writeFile(t, ".env", "DAIO_TEST_DOTENV=loaded\n")
	t.Setenv("DAIO_TEST_DOTENV", "")
	os.Unsetenv("DAIO_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("DAIO_TEST_DOTENV"))
}
