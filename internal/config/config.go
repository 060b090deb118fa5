// Package config loads application configuration from environment variables
// and an optional YAML file, environment taking precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// DataConfig locates the CSV extracts and the companion report.
type DataConfig struct {
	Dir        string `yaml:"dir" envconfig:"DIR" default:"data"`
	ReportFile string `yaml:"report_file" envconfig:"REPORT_FILE" default:"TRENCH_ANALYSIS_REPORT.md"`
}

// AnalyticsConfig carries the launch-analysis policy knobs. The anchor is the
// seasonal reference date (ipchun); the window and lead offsets derive the
// golden window and campaign start from it.
type AnalyticsConfig struct {
	AnchorDate       string   `yaml:"anchor_date" envconfig:"ANCHOR_DATE" default:"2025-02-03"`
	GoldenWindowDays int      `yaml:"golden_window_days" envconfig:"GOLDEN_WINDOW_DAYS" default:"14"`
	CampaignLeadDays int      `yaml:"campaign_lead_days" envconfig:"CAMPAIGN_LEAD_DAYS" default:"7"`
	CategoryTerms    []string `yaml:"category_terms" envconfig:"CATEGORY_TERMS" default:"트렌치,코트"`
	DefaultKeywords  int      `yaml:"default_keywords" envconfig:"DEFAULT_KEYWORDS" default:"5"`
	MaxKeywords      int      `yaml:"max_keywords" envconfig:"MAX_KEYWORDS" default:"20"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Environment variables take precedence over the file
	if err := envconfig.Process("TP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Server.WriteTimeout == 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if envConfig.Server.RequestTimeout == 0 {
		envConfig.Server.RequestTimeout = fileConfig.Server.RequestTimeout
	}
	if envConfig.Data.Dir == "" {
		envConfig.Data.Dir = fileConfig.Data.Dir
	}
	if envConfig.Data.ReportFile == "" {
		envConfig.Data.ReportFile = fileConfig.Data.ReportFile
	}
	if envConfig.Analytics.AnchorDate == "" {
		envConfig.Analytics.AnchorDate = fileConfig.Analytics.AnchorDate
	}
	if envConfig.Analytics.GoldenWindowDays == 0 {
		envConfig.Analytics.GoldenWindowDays = fileConfig.Analytics.GoldenWindowDays
	}
	if envConfig.Analytics.CampaignLeadDays == 0 {
		envConfig.Analytics.CampaignLeadDays = fileConfig.Analytics.CampaignLeadDays
	}
	if len(envConfig.Analytics.CategoryTerms) == 0 {
		envConfig.Analytics.CategoryTerms = fileConfig.Analytics.CategoryTerms
	}

	return envConfig
}

// Anchor returns the parsed anchor date. Load has already validated it.
func (c AnalyticsConfig) Anchor() time.Time {
	t, _ := time.Parse("2006-01-02", c.AnchorDate)
	return t
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data directory must be set")
	}
	if _, err := time.Parse("2006-01-02", c.Analytics.AnchorDate); err != nil {
		return fmt.Errorf("invalid anchor date %q: %w", c.Analytics.AnchorDate, err)
	}
	if c.Analytics.GoldenWindowDays <= 0 {
		return fmt.Errorf("golden window days must be positive")
	}
	if c.Analytics.CampaignLeadDays < 0 {
		return fmt.Errorf("campaign lead days must not be negative")
	}
	if len(c.Analytics.CategoryTerms) == 0 {
		return fmt.Errorf("at least one category term must be specified")
	}
	if c.Analytics.DefaultKeywords <= 0 {
		return fmt.Errorf("default keyword count must be positive")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Data: DataConfig{
			Dir:        "data",
			ReportFile: "TRENCH_ANALYSIS_REPORT.md",
		},
		Analytics: AnalyticsConfig{
			AnchorDate:       "2025-02-03",
			GoldenWindowDays: 14,
			CampaignLeadDays: 7,
			CategoryTerms:    []string{"트렌치", "코트"},
			DefaultKeywords:  5,
			MaxKeywords:      20,
		},
	}
}
