// Package config provides configuration management for the trading coach.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"trading-coach/internal/analysis/bias"
	apperrors "trading-coach/internal/errors"
	"trading-coach/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Logging     logging.LogConfig `mapstructure:"logging"`
	Coach       CoachConfig       `mapstructure:"coach"`
	Analysis    AnalysisConfig    `mapstructure:"analysis"`
	UI          UIConfig          `mapstructure:"ui"`
	Credentials Credentials       `mapstructure:"-"` // Loaded separately
	Dir         string            `mapstructure:"-"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
	RateLimitMax    int           `mapstructure:"rate_limit_max"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// CoachConfig holds LLM coaching configuration.
type CoachConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	UseMock     bool          `mapstructure:"use_mock"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

// AnalysisConfig holds analytics configuration.
type AnalysisConfig struct {
	// Timezone is an IANA zone name used for hour and weekday bucketing.
	Timezone     string      `mapstructure:"timezone"`
	RecentTrades int         `mapstructure:"recent_trades"`
	Bias         bias.Config `mapstructure:"bias"`
}

// UIConfig holds CLI output configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// Credentials holds API credentials.
type Credentials struct {
	Coach CoachCredentials `mapstructure:"coach"`
}

// CoachCredentials holds the LLM provider key.
type CoachCredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := DefaultConfigDir()
	logCfg := logging.DefaultLogConfig()
	logCfg.FilePath = filepath.Join(dir, "logs", "coach.log")
	return &Config{
		Server: ServerConfig{
			Addr:            ":3000",
			Mode:            "release",
			RateLimitWindow: 15 * time.Minute,
			RateLimitMax:    100,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
		},
		Storage: StorageConfig{DBPath: filepath.Join(dir, "coach.db")},
		Logging: logCfg,
		Coach: CoachConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.3,
			MaxTokens:   500,
			Timeout:     30 * time.Second,
			MaxRetries:  2,
		},
		Analysis: AnalysisConfig{
			Timezone:     "UTC",
			RecentTrades: 10,
			Bias:         bias.DefaultConfig(),
		},
		UI:  UIConfig{ColorEnabled: true, DateFormat: "2006-01-02 15:04"},
		Dir: dir,
	}
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trading-coach"
	}
	return filepath.Join(home, ".config", "trading-coach")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. Missing files
// are created from templates and the defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env in the working directory, then in the config directory; neither is required
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	cfg := Default()
	cfg.Dir = configDir
	cfg.Storage.DBPath = filepath.Join(configDir, "coach.db")
	cfg.Logging.FilePath = filepath.Join(configDir, "logs", "coach.log")

	if err := loadConfigFile(configDir, "config", configTemplate, 0644, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadConfigFile(configDir, "credentials", credentialsTemplate, 0600, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name, template string, perm os.FileMode, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createTemplate(configDir, name, template, perm)
		}
		return err
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.Credentials.Coach.APIKey = v
	}
	if v := os.Getenv("COACH_API_KEY"); v != "" {
		cfg.Credentials.Coach.APIKey = v
	}
	if v := os.Getenv("USE_MOCK_AI"); v != "" {
		cfg.Coach.UseMock = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRADING_COACH_DB"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("TRADING_COACH_TZ"); v != "" {
		cfg.Analysis.Timezone = v
	}

	// RATE_LIMIT_WINDOW is in milliseconds
	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: RATE_LIMIT_WINDOW must be milliseconds: %v", apperrors.ErrConfigInvalid, err)
		}
		cfg.Server.RateLimitWindow = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: RATE_LIMIT_MAX must be an integer: %v", apperrors.ErrConfigInvalid, err)
		}
		cfg.Server.RateLimitMax = n
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: invalid timezone %q: %v", apperrors.ErrConfigInvalid, c.Analysis.Timezone, err)
	}
	if c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("%w: rate_limit_window must be positive", apperrors.ErrConfigInvalid)
	}
	if c.Server.RateLimitMax <= 0 {
		return fmt.Errorf("%w: rate_limit_max must be positive", apperrors.ErrConfigInvalid)
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("%w: invalid server mode: %s (must be debug, release or test)", apperrors.ErrConfigInvalid, c.Server.Mode)
	}
	if c.Logging.Level != "" && !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: invalid log level: %s", apperrors.ErrConfigInvalid, c.Logging.Level)
	}
	if c.Coach.Temperature < 0 || c.Coach.Temperature > 2 {
		return fmt.Errorf("%w: coach temperature must be between 0 and 2", apperrors.ErrConfigInvalid)
	}
	if c.Coach.MaxTokens <= 0 {
		return fmt.Errorf("%w: coach max_tokens must be positive", apperrors.ErrConfigInvalid)
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("%w: storage db_path is required", apperrors.ErrConfigInvalid)
	}
	return c.Analysis.Bias.Validate()
}

// Location resolves the analysis timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Analysis.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Analysis.Timezone)
}

// MockCoach reports whether coaching runs on canned responses.
func (c *Config) MockCoach() bool {
	return c.Coach.UseMock || c.Credentials.Coach.APIKey == ""
}
