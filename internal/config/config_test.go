package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", cfg.Market.Timezone)
	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, 10*time.Minute, cfg.DataSource.CacheTTL)
	assert.Equal(t, "output", cfg.Screening.OutputDir)
	assert.Equal(t, "0 5 20 * * 1-5", cfg.Schedule.ScreeningCron)
	assert.Equal(t, ":8080", cfg.HTTP.Listen)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
data_source:
  provider: Polygon
  api_key: from-file
  cache_ttl: 90s
screening:
  tickers: [AAA, BBB]
  normal: [3, 4]
  inverted: [20]
  raw_dump: true
log:
  level: debug
`)
	t.Setenv("POLYGON_API_KEY", "from-env")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "polygon", cfg.DataSource.Provider)
	assert.Equal(t, "from-env", cfg.DataSource.APIKey)
	assert.Equal(t, 90*time.Second, cfg.DataSource.CacheTTL)
	assert.Equal(t, []string{"AAA", "BBB"}, cfg.Screening.Tickers)
	assert.Equal(t, []int{3, 4}, cfg.Screening.Normal)
	assert.True(t, cfg.Screening.RawDump)
	assert.Equal(t, "/tmp/x.db", cfg.Database.SQLitePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "market: [unclosed"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad timezone", func(c *Config) { c.Market.Timezone = "Mars/Olympus" }, "market.timezone"},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "not supported"},
		{"polygon without key", func(c *Config) { c.DataSource.Provider = "polygon" }, "api_key"},
		{"rest without url", func(c *Config) { c.DataSource.Provider = "rest" }, "base_url"},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "t" }, "telegram"},
		{"overlap", func(c *Config) {
			c.Screening.Normal = []int{5}
			c.Screening.Inverted = []int{5}
		}, "both normal and inverted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
