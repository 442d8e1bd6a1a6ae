// Package config loads server configuration from flags, the environment, an
// optional .env file and an optional YAML file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Retrieval RetrievalConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates on-disk state.
type DataConfig struct {
	BasePath     string // catalog, index and sessions live here (default: ~/Cuepoint)
	CaptionsPath string // <id>_captions.srt and <id>_description.txt (default: {base}/captions)
	Watch        bool   // ingest caption files as they appear (default: true)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// RetrievalConfig tunes question answering.
type RetrievalConfig struct {
	K               int     // candidates fetched per question (default: 5)
	RerankThreshold float64 // chapter similarity needed to reorder (default: 0.5)
	SnippetLength   int     // characters of each source shown (default: 200)
	AnswerLogPath   string  // JSONL log of answered questions; empty disables
}

// SessionConfig controls chat session lifetime.
type SessionConfig struct {
	TTL time.Duration
}

// RateLimitConfig limits questions per client.
type RateLimitConfig struct {
	AskPerMinute int
	AskBurst     int
}

// fileConfig mirrors the YAML file layout. Every value is optional.
type fileConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	Data        struct {
		BasePath     string `yaml:"base_path"`
		CaptionsPath string `yaml:"captions_path"`
		Watch        string `yaml:"watch"`
	} `yaml:"data"`
	Server struct {
		Port         string   `yaml:"port"`
		ReadTimeout  string   `yaml:"read_timeout"`
		WriteTimeout string   `yaml:"write_timeout"`
		IdleTimeout  string   `yaml:"idle_timeout"`
		CORSOrigins  []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Retrieval struct {
		K               string `yaml:"k"`
		RerankThreshold string `yaml:"rerank_threshold"`
		SnippetLength   string `yaml:"snippet_length"`
		AnswerLog       string `yaml:"answer_log"`
	} `yaml:"retrieval"`
	Session struct {
		TTL string `yaml:"ttl"`
	} `yaml:"session"`
	RateLimit struct {
		AskPerMinute string `yaml:"ask_per_minute"`
		AskBurst     string `yaml:"ask_burst"`
	} `yaml:"rate_limit"`
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. YAML config file.
// 5. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("cuepoint", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for server state")
	captionsPath := fs.String("captions-path", "", "Directory holding caption and description files")
	watch := fs.String("watch", "", "Ingest caption files as they appear (default: true)")

	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	retrievalK := fs.String("k", "", "Passages retrieved per question (default: 5)")
	threshold := fs.String("rerank-threshold", "", "Chapter similarity needed to reorder sources (default: 0.5)")
	sessionTTL := fs.String("session-ttl", "", "Chat session lifetime (default: 24h)")

	envFile := fs.String("env-file", ".env", "Path to .env file")
	configFile := fs.String("config", "", "Path to YAML config file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env is fine; env vars already set take precedence over it.
	_ = godotenv.Load(*envFile)

	var file fileConfig
	if path := getConfigValue(*configFile, "CONFIG_FILE", ""); path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		file = *loaded
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", or(file.Environment, "development")),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", or(file.LogLevel, "info")),
		},
		Data: DataConfig{
			BasePath:     getConfigValue(*dataPath, "DATA_PATH", file.Data.BasePath),
			CaptionsPath: getConfigValue(*captionsPath, "CAPTIONS_PATH", file.Data.CaptionsPath),
			Watch:        getBoolConfigValue(*watch, "WATCH_CAPTIONS", or(file.Data.Watch, "true")),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*port, "SERVER_PORT", or(file.Server.Port, "8080")),
			CORSOrigins: file.Server.CORSOrigins,
		},
		RateLimit: RateLimitConfig{
			AskPerMinute: getIntConfigValue("", "ASK_RATE_PER_MINUTE", or(file.RateLimit.AskPerMinute, "30")),
			AskBurst:     getIntConfigValue("", "ASK_BURST", or(file.RateLimit.AskBurst, "10")),
		},
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", or(file.Server.ReadTimeout, "15s")); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", or(file.Server.WriteTimeout, "60s")); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", or(file.Server.IdleTimeout, "60s")); err != nil {
		return nil, err
	}
	if cfg.Session.TTL, err = getDurationConfigValue(*sessionTTL, "SESSION_TTL", or(file.Session.TTL, "24h")); err != nil {
		return nil, err
	}

	cfg.Retrieval.K = getIntConfigValue(*retrievalK, "RETRIEVAL_K", or(file.Retrieval.K, "5"))
	cfg.Retrieval.SnippetLength = getIntConfigValue("", "SNIPPET_LENGTH", or(file.Retrieval.SnippetLength, "200"))
	cfg.Retrieval.AnswerLogPath = getConfigValue("", "ANSWER_LOG_PATH", file.Retrieval.AnswerLog)

	thresholdStr := getConfigValue(*threshold, "RERANK_THRESHOLD", or(file.Retrieval.RerankThreshold, "0.5"))
	cfg.Retrieval.RerankThreshold, err = strconv.ParseFloat(thresholdStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid rerank threshold %q: %w", thresholdStr, err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}
	if c.Data.CaptionsPath == "" {
		return errors.New("captions path cannot be empty after expansion")
	}

	if c.Retrieval.K < 1 || c.Retrieval.K > 50 {
		return fmt.Errorf("retrieval k must be between 1 and 50, got %d", c.Retrieval.K)
	}
	if c.Retrieval.RerankThreshold < 0 || c.Retrieval.RerankThreshold >= 1 {
		return fmt.Errorf("rerank threshold must be in [0,1), got %v", c.Retrieval.RerankThreshold)
	}
	if c.Retrieval.SnippetLength < 1 {
		return errors.New("snippet length must be positive")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.RateLimit.AskPerMinute < 1 || c.RateLimit.AskBurst < 1 {
		return errors.New("ask rate limit and burst must be positive")
	}

	return nil
}

// IndexPath is where the passage index lives.
func (c *Config) IndexPath() string { return filepath.Join(c.Data.BasePath, "index") }

// CatalogPath is the SQLite catalog file.
func (c *Config) CatalogPath() string { return filepath.Join(c.Data.BasePath, "catalog.db") }

// SessionsPath is the session store directory.
func (c *Config) SessionsPath() string { return filepath.Join(c.Data.BasePath, "sessions") }

func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	base, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "Cuepoint"))
	if err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	c.Data.BasePath = base

	captions, err := expandPath(c.Data.CaptionsPath, filepath.Join(base, "captions"))
	if err != nil {
		return fmt.Errorf("invalid captions path: %w", err)
	}
	c.Data.CaptionsPath = captions

	if c.Retrieval.AnswerLogPath != "" {
		if c.Retrieval.AnswerLogPath, err = expandPath(c.Retrieval.AnswerLogPath, ""); err != nil {
			return fmt.Errorf("invalid answer log path: %w", err)
		}
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// An empty path resolves to defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- config path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1", "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey, defaultValue string) bool {
	v := strings.ToLower(getConfigValue(flagValue, envKey, defaultValue))
	return v == "true" || v == "1" || v == "yes"
}

// getIntConfigValue falls back to the default when the value is not a number.
func getIntConfigValue(flagValue, envKey, defaultValue string) int {
	n, err := strconv.Atoi(getConfigValue(flagValue, envKey, defaultValue))
	if err != nil {
		n, _ = strconv.Atoi(defaultValue)
	}
	return n
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), s, err)
	}
	return d, nil
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
