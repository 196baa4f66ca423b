// Package config provides application configuration management with support for command-line flags, environment variables, .env files, and a YAML config file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DatabaseFile is the SQLite file name inside the data directory.
const DatabaseFile = "lifelog.db"

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Preview   PreviewConfig
	Audit     AuditConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds on-disk storage configuration.
type DataConfig struct {
	Path string // directory holding the database
}

// DatabasePath returns the SQLite database file path.
func (d DataConfig) DatabasePath() string {
	return filepath.Join(d.Path, DatabaseFile)
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port               string        // Server port (default: 8080)
	ReadTimeout        time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout       time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout        time.Duration // HTTP idle timeout (default: 60s)
	CORSAllowedOrigins []string      // empty allows any origin
}

// RateLimitConfig holds write rate limiting configuration.
type RateLimitConfig struct {
	RPS   float64 // sustained writes per second per client (default: 5)
	Burst int     // bucket size (default: 20)
}

// PreviewConfig holds link preview configuration.
type PreviewConfig struct {
	Enabled      bool
	Timeout      time.Duration // per-fetch timeout (default: 10s)
	CacheSize    int64         // cached previews (default: 1000)
	AllowPrivate bool          // permit loopback and private network targets (default: false)
}

// AuditConfig holds audit webhook configuration.
type AuditConfig struct {
	// WebhookURL receives mutation events. Empty disables auditing.
	WebhookURL string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. YAML config file.
// 5. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("lifelog", pflag.ContinueOnError)

	env := flags.String("env", "", "Environment (development, staging, production)")
	logLevel := flags.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flags.String("data-path", "", "Directory holding the database")

	// Server flags
	serverPort := flags.String("port", "", "Server port (default: 8080)")
	readTimeout := flags.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flags.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flags.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := flags.String("cors-allowed-origins", "", "Comma-separated allowed CORS origins (default: any)")

	rateLimitRPS := flags.String("rate-limit-rps", "", "Writes per second per client (default: 5)")
	rateLimitBurst := flags.String("rate-limit-burst", "", "Write burst per client (default: 20)")

	previewEnabled := flags.String("preview-enabled", "", "Enable link previews (default: true)")
	previewTimeout := flags.String("preview-timeout", "", "Link preview fetch timeout (default: 10s)")
	previewCacheSize := flags.String("preview-cache-size", "", "Cached link previews (default: 1000)")
	previewAllowPrivate := flags.String("preview-allow-private", "", "Allow previews of private network hosts (default: false)")

	auditWebhookURL := flags.String("audit-webhook-url", "", "URL receiving audit events (default: disabled)")

	envFile := flags.String("env-file", ".env", "Path to .env file")
	configFile := flags.String("config", "", "Path to YAML config file")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists. Existing environment variables win.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	file, err := loadFileValues(getConfigValue(*configFile, "CONFIG_FILE", ""))
	if err != nil {
		return nil, err
	}
	src := source{file: file}

	cfg := &Config{
		App: AppConfig{
			Environment: src.get(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: src.get(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			Path: src.get(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:               src.get(*serverPort, "SERVER_PORT", "8080"),
			CORSAllowedOrigins: splitList(src.get(*corsOrigins, "CORS_ALLOWED_ORIGINS", "")),
		},
		Preview: PreviewConfig{
			Enabled:      src.getBool(*previewEnabled, "PREVIEW_ENABLED", true),
			AllowPrivate: src.getBool(*previewAllowPrivate, "PREVIEW_ALLOW_PRIVATE", false),
		},
		Audit: AuditConfig{
			WebhookURL: src.get(*auditWebhookURL, "AUDIT_WEBHOOK_URL", ""),
		},
	}

	// Parse server timeouts.
	if cfg.Server.ReadTimeout, err = src.getDuration(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = src.getDuration(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = src.getDuration(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	rps := src.get(*rateLimitRPS, "RATE_LIMIT_RPS", "5")
	if cfg.RateLimit.RPS, err = strconv.ParseFloat(rps, 64); err != nil {
		return nil, fmt.Errorf("invalid rate limit rps %q: %w", rps, err)
	}
	burst := src.get(*rateLimitBurst, "RATE_LIMIT_BURST", "20")
	if cfg.RateLimit.Burst, err = strconv.Atoi(burst); err != nil {
		return nil, fmt.Errorf("invalid rate limit burst %q: %w", burst, err)
	}

	if cfg.Preview.Timeout, err = src.getDuration(*previewTimeout, "PREVIEW_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	cacheSize := src.get(*previewCacheSize, "PREVIEW_CACHE_SIZE", "1000")
	if cfg.Preview.CacheSize, err = strconv.ParseInt(cacheSize, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid preview cache size %q: %w", cacheSize, err)
	}

	// Expand and validate data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
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

	if c.Data.Path == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}

	if c.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive, got %v", c.RateLimit.RPS)
	}
	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive, got %d", c.RateLimit.Burst)
	}

	if c.Preview.Enabled {
		if c.Preview.Timeout <= 0 {
			return fmt.Errorf("preview timeout must be positive, got %s", c.Preview.Timeout)
		}
		if c.Preview.CacheSize <= 0 {
			return fmt.Errorf("preview cache size must be positive, got %d", c.Preview.CacheSize)
		}
	}

	if c.Audit.WebhookURL != "" {
		u, err := url.Parse(c.Audit.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid audit webhook url: %q", c.Audit.WebhookURL)
		}
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/Lifelog/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Lifelog", "data")

	expanded, err := expandPath(c.Data.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Data.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable (including values loaded from .env).
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// source resolves a key through flags, the environment and the config file.
type source struct {
	file map[string]string
}

func (s source) get(flagValue, envKey, defaultValue string) string {
	if v := getConfigValue(flagValue, envKey, ""); v != "" {
		return v
	}
	if v := s.file[envKey]; v != "" {
		return v
	}
	return defaultValue
}

// getBool accepts "true", "1", "yes" (case-insensitive) as true; anything else is false.
func (s source) getBool(flagValue, envKey string, defaultValue bool) bool {
	v := s.get(flagValue, envKey, "")
	if v == "" {
		return defaultValue
	}
	v = strings.ToLower(v)
	return v == "true" || v == "1" || v == "yes"
}

func (s source) getDuration(flagValue, envKey, defaultValue string) (time.Duration, error) {
	v := s.get(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), v, err)
	}
	return d, nil
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
