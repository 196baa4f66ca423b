package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML config file layout.
//
//	env: production
//	log_level: info
//	data_path: /var/lib/lifelog
//	server:
//	  port: 8080
//	  read_timeout: 15s
//	  cors_allowed_origins: [https://app.example.com]
//	rate_limit:
//	  rps: 5
//	  burst: 20
//	preview:
//	  enabled: true
//	  timeout: 10s
//	  cache_size: 1000
//	  allow_private: false
//	audit:
//	  webhook_url: https://hooks.example.com/lifelog
type fileConfig struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	DataPath string `yaml:"data_path"`

	Server struct {
		Port               *int     `yaml:"port"`
		ReadTimeout        string   `yaml:"read_timeout"`
		WriteTimeout       string   `yaml:"write_timeout"`
		IdleTimeout        string   `yaml:"idle_timeout"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	RateLimit struct {
		RPS   *float64 `yaml:"rps"`
		Burst *int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Preview struct {
		Enabled      *bool  `yaml:"enabled"`
		Timeout      string `yaml:"timeout"`
		CacheSize    *int64 `yaml:"cache_size"`
		AllowPrivate *bool  `yaml:"allow_private"`
	} `yaml:"preview"`

	Audit struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"audit"`
}

// loadFileValues reads a YAML config file and flattens it to environment keys.
// An empty path yields no values.
func loadFileValues(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	expanded, err := expandPath(path, "")
	if err != nil {
		return nil, fmt.Errorf("config file path: %w", err)
	}

	data, err := os.ReadFile(expanded) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", expanded, err)
	}
	return fc.values(), nil
}

func (fc *fileConfig) values() map[string]string {
	v := map[string]string{
		"ENV":                  fc.Env,
		"LOG_LEVEL":            fc.LogLevel,
		"DATA_PATH":            fc.DataPath,
		"SERVER_READ_TIMEOUT":  fc.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT": fc.Server.WriteTimeout,
		"SERVER_IDLE_TIMEOUT":  fc.Server.IdleTimeout,
		"CORS_ALLOWED_ORIGINS": strings.Join(fc.Server.CORSAllowedOrigins, ","),
		"PREVIEW_TIMEOUT":      fc.Preview.Timeout,
		"AUDIT_WEBHOOK_URL":    fc.Audit.WebhookURL,
	}
	if fc.Server.Port != nil {
		v["SERVER_PORT"] = strconv.Itoa(*fc.Server.Port)
	}
	if fc.RateLimit.RPS != nil {
		v["RATE_LIMIT_RPS"] = strconv.FormatFloat(*fc.RateLimit.RPS, 'f', -1, 64)
	}
	if fc.RateLimit.Burst != nil {
		v["RATE_LIMIT_BURST"] = strconv.Itoa(*fc.RateLimit.Burst)
	}
	if fc.Preview.Enabled != nil {
		v["PREVIEW_ENABLED"] = strconv.FormatBool(*fc.Preview.Enabled)
	}
	if fc.Preview.CacheSize != nil {
		v["PREVIEW_CACHE_SIZE"] = strconv.FormatInt(*fc.Preview.CacheSize, 10)
	}
	if fc.Preview.AllowPrivate != nil {
		v["PREVIEW_ALLOW_PRIVATE"] = strconv.FormatBool(*fc.Preview.AllowPrivate)
	}
	return v
}
