package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Data:      DataConfig{BasePath: "/data", CaptionsPath: "/data/captions"},
		Retrieval: RetrievalConfig{K: 5, RerankThreshold: 0.5, SnippetLength: 200},
		Session:   SessionConfig{TTL: time.Hour},
		RateLimit: RateLimitConfig{AskPerMinute: 30, AskBurst: 10},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown environment", func(c *Config) { c.App.Environment = "test" }},
		{"environment is case sensitive", func(c *Config) { c.App.Environment = "DEVELOPMENT" }},
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"empty data path", func(c *Config) { c.Data.BasePath = "" }},
		{"empty captions path", func(c *Config) { c.Data.CaptionsPath = "" }},
		{"zero k", func(c *Config) { c.Retrieval.K = 0 }},
		{"huge k", func(c *Config) { c.Retrieval.K = 51 }},
		{"threshold of one", func(c *Config) { c.Retrieval.RerankThreshold = 1 }},
		{"negative threshold", func(c *Config) { c.Retrieval.RerankThreshold = -0.1 }},
		{"zero snippet", func(c *Config) { c.Retrieval.SnippetLength = 0 }},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"zero burst", func(c *Config) { c.RateLimit.AskBurst = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadConfig([]string{"-env-file", filepath.Join(home, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, filepath.Join(home, "Cuepoint"), cfg.Data.BasePath)
	assert.Equal(t, filepath.Join(home, "Cuepoint", "captions"), cfg.Data.CaptionsPath)
	assert.True(t, cfg.Data.Watch)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5, cfg.Retrieval.K)
	assert.InDelta(t, 0.5, cfg.Retrieval.RerankThreshold, 1e-9)
	assert.Equal(t, 200, cfg.Retrieval.SnippetLength)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Empty(t, cfg.Retrieval.AnswerLogPath)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, filepath.Join(home, "Cuepoint", "catalog.db"), cfg.CatalogPath())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	yamlPath := filepath.Join(dir, "cuepoint.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
log_level: warn
data:
  base_path: /from/yaml
  watch: "false"
server:
  port: "7000"
  cors_origins: ["https://app.example.com"]
retrieval:
  k: "8"
  rerank_threshold: "0.4"
`), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("SERVER_PORT=7100\nRETRIEVAL_K=9\n"), 0o600))

	t.Setenv("RETRIEVAL_K", "10")

	cfg, err := LoadConfig([]string{"-config", yamlPath, "-env-file", envPath, "-log-level", "debug"})
	require.NoError(t, err)
	t.Cleanup(func() { os.Unsetenv("SERVER_PORT") })

	assert.Equal(t, "debug", cfg.Logger.Level, "flag beats yaml")
	assert.Equal(t, 10, cfg.Retrieval.K, "env beats .env")
	assert.Equal(t, "7100", cfg.Server.Port, ".env beats yaml")
	assert.Equal(t, "/from/yaml", cfg.Data.BasePath)
	assert.False(t, cfg.Data.Watch)
	assert.InDelta(t, 0.4, cfg.Retrieval.RerankThreshold, 1e-9)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SESSION_TTL", "forever")

	_, err := LoadConfig([]string{"-env-file", "/nonexistent/.env"})
	assert.ErrorContains(t, err, "session_ttl")
}

func TestLoadConfig_BadYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := LoadConfig([]string{"-config", path, "-env-file", "/nonexistent/.env"})
	assert.ErrorContains(t, err, "parse config file")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/clips", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "clips"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("/abs/../abs/path", "")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("CUEPOINT_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "CUEPOINT_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "CUEPOINT_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "CUEPOINT_UNSET_KEY", "default"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}

func TestLoadConfig_AnswerLogPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ANSWER_LOG_PATH", "~/eval/answers.jsonl")

	cfg, err := LoadConfig([]string{"-env-file", filepath.Join(home, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "eval", "answers.jsonl"), cfg.Retrieval.AnswerLogPath)
}
