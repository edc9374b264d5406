package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chdirTemp moves the test into an empty temp dir so no stray config.yaml
// is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, int32(2), cfg.Store.MinConns)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, int64(150), cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 0.3, cfg.Anthropic.Temperature, 0.001)
	assert.Equal(t, 30*time.Second, cfg.Anthropic.CallTimeout)
	assert.InDelta(t, 5.0, cfg.Anthropic.RequestsPerSecond, 0.001)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, 4, cfg.Pipeline.Concurrency)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leads
log:
  level: debug
  format: console
server:
  port: 9090
anthropic:
  model: claude-sonnet-4-5-20250929
  call_timeout: 10s
pipeline:
  concurrency: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leads", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, 10*time.Second, cfg.Anthropic.CallTimeout)
	assert.Equal(t, 8, cfg.Pipeline.Concurrency)
	// Defaults still apply for unset values
	assert.Equal(t, int64(150), cfg.Anthropic.MaxTokens)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADSCORE_STORE_DRIVER", "postgres")
	t.Setenv("LEADSCORE_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LEADSCORE_SERVER_PORT", "3000")
	t.Setenv("LEADSCORE_ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "sk-ant-test", cfg.Anthropic.APIKey)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := chdirTemp(t)

	yaml := "server:\n  port: 7070\n"
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	dir := chdirTemp(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config that passes common validation.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Server.Port = 8080
	cfg.Pipeline.Concurrency = 4
	return cfg
}

func TestValidateStore_SQLite(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidateStore_PostgresNeedsURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/leads"
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidateStore_UnsupportedDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver: mysql")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateScore_ConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Pipeline.Concurrency = -1
	err := cfg.Validate("score")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline.concurrency must be between 1 and 32")

	cfg.Pipeline.Concurrency = 33
	err = cfg.Validate("score")
	assert.Error(t, err)

	// Zero means "use the built-in default" and is accepted.
	cfg.Pipeline.Concurrency = 0
	assert.NoError(t, cfg.Validate("score"))

	cfg.Pipeline.Concurrency = 32
	assert.NoError(t, cfg.Validate("score"))
}

func TestValidateScore_NoClassifierKeyIsFine(t *testing.T) {
	// Scoring without an API key degrades to rule-based only, so the key is
	// not a validation requirement.
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("score"))
}

func TestValidateNotion_MissingFields(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("notion")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "notion.token is required")
	assert.Contains(t, err.Error(), "notion.parent_page or notion.lead_db is required")
}

func TestValidateNotion_LeadDBSuffices(t *testing.T) {
	cfg := validDefaults()
	cfg.Notion.Token = "ntn_token"
	cfg.Notion.LeadDB = "lead-db-id"

	assert.NoError(t, cfg.Validate("notion"))
}

func TestValidateSalesforce_MissingFields(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("salesforce")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "salesforce.client_id is required")
	assert.Contains(t, err.Error(), "salesforce.username is required")
	assert.Contains(t, err.Error(), "salesforce.key_path is required")
}

func TestValidateSalesforce_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Salesforce.ClientID = "3MVG9client"
	cfg.Salesforce.Username = "integration@example.com"
	cfg.Salesforce.KeyPath = "/etc/leadscore/sf.pem"

	assert.NoError(t, cfg.Validate("salesforce"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
