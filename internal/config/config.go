// Package config loads the console settings from an optional .env file, an
// optional YAML file and the environment, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"equipment-console/internal/adapters/http/middleware"
)

const (
	StoreFile     = "file"
	StoreDynamoDB = "dynamodb"
)

type Config struct {
	API         APIConfig         `yaml:"api"`
	Session     SessionConfig     `yaml:"session"`
	Server      ServerConfig      `yaml:"server"`
	Permissions PermissionsConfig `yaml:"permissions"`
	Documents   DocumentsConfig   `yaml:"documents"`
	LogLevel    string            `yaml:"log_level"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig selects where the bearer token is kept between runs.
type SessionConfig struct {
	Store   string `yaml:"store"`
	File    string `yaml:"file"`
	Table   string `yaml:"table"`
	Region  string `yaml:"region"`
	Profile string `yaml:"profile"`
}

type ServerConfig struct {
	Port     string          `yaml:"port"`
	AuthMode middleware.Mode `yaml:"auth_mode"`
	APIKey   string          `yaml:"api_key"`
}

type PermissionsConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type DocumentsConfig struct {
	ExpiryWarningDays int `yaml:"expiry_warning_days"`
}

func (d DocumentsConfig) ExpiryWindow() time.Duration {
	return time.Duration(d.ExpiryWarningDays) * 24 * time.Hour
}

func Defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8000/api",
			Timeout: 30 * time.Second,
		},
		Session: SessionConfig{
			Store:   StoreFile,
			File:    defaultTokenFile(),
			Profile: "default",
		},
		Server: ServerConfig{
			Port:     "8080",
			AuthMode: middleware.ModeNone,
		},
		Permissions: PermissionsConfig{Concurrency: 8},
		Documents:   DocumentsConfig{ExpiryWarningDays: 30},
		LogLevel:    "info",
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".console-token.json"
	}
	return filepath.Join(dir, "equipment-console", "token.json")
}

// Load reads envFiles (".env" when none is given; missing files are
// ignored), then the YAML file named by CONSOLE_CONFIG, then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Defaults()
	if path := os.Getenv("CONSOLE_CONFIG"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.API.BaseURL = getEnv("API_BASE_URL", c.API.BaseURL)
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	c.Session.Store = strings.ToLower(getEnv("TOKEN_STORE", c.Session.Store))
	c.Session.File = getEnv("TOKEN_FILE", c.Session.File)
	c.Session.Table = getEnv("TOKEN_TABLE", c.Session.Table)
	c.Session.Region = getEnv("AWS_REGION", c.Session.Region)
	c.Session.Profile = getEnv("SESSION_PROFILE", c.Session.Profile)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.APIKey = getEnv("CONSOLE_API_KEY", c.Server.APIKey)
	mode, err := middleware.ParseAuthMode(getEnv("AUTH_MODE", string(c.Server.AuthMode)))
	if err != nil {
		return fmt.Errorf("AUTH_MODE: %w", err)
	}
	c.Server.AuthMode = mode
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Permissions.Concurrency = getEnvInt("PERMISSION_CONCURRENCY", c.Permissions.Concurrency)
	c.Documents.ExpiryWarningDays = getEnvInt("EXPIRY_WARNING_DAYS", c.Documents.ExpiryWarningDays)
	return nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) url, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("API_TIMEOUT must be positive")
	}
	switch c.Session.Store {
	case StoreFile:
		if c.Session.File == "" {
			return errors.New("TOKEN_FILE is required when TOKEN_STORE=file")
		}
	case StoreDynamoDB:
		if c.Session.Table == "" || c.Session.Region == "" {
			return errors.New("TOKEN_TABLE and AWS_REGION are required when TOKEN_STORE=dynamodb")
		}
	default:
		return fmt.Errorf("unknown TOKEN_STORE %q", c.Session.Store)
	}
	if c.Server.AuthMode == middleware.ModeAPIKey && c.Server.APIKey == "" {
		return errors.New("CONSOLE_API_KEY is required when AUTH_MODE=api_key")
	}
	if c.Permissions.Concurrency <= 0 {
		return errors.New("PERMISSION_CONCURRENCY must be positive")
	}
	if c.Documents.ExpiryWarningDays <= 0 {
		return errors.New("EXPIRY_WARNING_DAYS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
