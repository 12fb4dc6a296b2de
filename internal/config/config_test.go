package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", envOf(nil))

	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.PostgresAddress)
	assert.Equal(t, "5433", cfg.PostgresPort)
	assert.Equal(t, "9446", cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.OperatorWorkers)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, 30*time.Second, cfg.BankFeedTimeout())
	assert.Equal(t, "gemini-2.5-flash", cfg.GenAIModel)
	assert.Equal(t, 7, cfg.MatchWindowDays)
	assert.Equal(t, "$.transactions", cfg.BankFeedPaths.List)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
postgres_address: db.internal
http_port: "8080"
operator_workers: 8
bankfeed_url: https://feed.example.com
bankfeed_paths:
  list: $.data.items
  amount: $.value
`), 0o600))

	cfg, err := Load(path, envOf(map[string]string{
		"HTTP_PORT":    "9000",
		"AUTO_MIGRATE": "true",
		"POSTGRES_DB":  "",
	}))

	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.PostgresAddress)
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 8, cfg.OperatorWorkers)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "postgres", cfg.PostgresDB)
	assert.Equal(t, "https://feed.example.com", cfg.BankFeedURL)
	assert.Equal(t, "$.data.items", cfg.BankFeedPaths.List)
	assert.Equal(t, "$.value", cfg.BankFeedPaths.Amount)
	// Paths missing from the file keep their defaults.
	assert.Equal(t, "$.id", cfg.BankFeedPaths.ID)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), envOf(nil))
	assert.ErrorContains(t, err, "reading config file")

	_, err = Load("", envOf(map[string]string{"OPERATOR_WORKERS": "many"}))
	assert.ErrorContains(t, err, "OPERATOR_WORKERS")

	_, err = Load("", envOf(map[string]string{"OPERATOR_WORKERS": "0"}))
	assert.Error(t, err)

	_, err = Load("", envOf(map[string]string{"AUTO_MIGRATE": "sometimes"}))
	assert.ErrorContains(t, err, "AUTO_MIGRATE")
}
