// Package config loads the application configuration from a YAML file with
// environment-variable overrides. A .env file, if present, is loaded first
// so secrets can live in .env locally and in real env vars in deployment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the tracker and the campaign runner.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Tracking TrackingConfig `yaml:"tracking"`
	Campaign CampaignConfig `yaml:"campaign"`
	Dispatch DispatchConfig `yaml:"dispatch"`
}

// ServerConfig holds the tracking HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TrackingConfig holds the tracking data layout and public URL settings.
type TrackingConfig struct {
	// DataDir is the directory holding the per-campaign record files.
	// Shared by the tracking server and the campaign runner.
	DataDir string `yaml:"data_dir"`

	// BaseURL is the public tracking base embedded in outbound emails,
	// e.g. "https://track.example.com/track".
	BaseURL string `yaml:"base_url"`

	// DefaultRedirectURL is where click requests land when the url
	// parameter is missing or malformed.
	DefaultRedirectURL string `yaml:"default_redirect_url"`
}

// CampaignConfig holds the send loop settings.
type CampaignConfig struct {
	LeadsCSV        string `yaml:"leads_csv"`
	BatchSize       int    `yaml:"batch_size"`
	DelayMinSeconds int    `yaml:"delay_min_seconds"`
	DelayMaxSeconds int    `yaml:"delay_max_seconds"`
	SentDir         string `yaml:"sent_dir"`
	ReportDir       string `yaml:"report_dir"`
	SubjectTemplate string `yaml:"subject_template"`
	BodyTemplate    string `yaml:"body_template"`
}

// DelayMin returns the minimum inter-send delay as a duration.
func (c CampaignConfig) DelayMin() time.Duration {
	return time.Duration(c.DelayMinSeconds) * time.Second
}

// DelayMax returns the maximum inter-send delay as a duration.
func (c CampaignConfig) DelayMax() time.Duration {
	return time.Duration(c.DelayMaxSeconds) * time.Second
}

// DispatchConfig holds the message dispatch provider settings.
type DispatchConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the dispatch HTTP timeout as a duration.
func (c DispatchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses the configuration file, then applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides. A
// missing config file is not an error; defaults are used instead.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TRACKING_DATA_DIR"); v != "" {
		cfg.Tracking.DataDir = v
	}
	if v := os.Getenv("TRACKING_BASE_URL"); v != "" {
		cfg.Tracking.BaseURL = v
	}
	if v := os.Getenv("DEFAULT_REDIRECT_URL"); v != "" {
		cfg.Tracking.DefaultRedirectURL = v
	}
	if v := os.Getenv("LEADS_CSV"); v != "" {
		cfg.Campaign.LeadsCSV = v
	}
	if v := os.Getenv("BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Campaign.BatchSize = n
		}
	}
	if v := os.Getenv("DELAY_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Campaign.DelayMinSeconds = n
		}
	}
	if v := os.Getenv("DELAY_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Campaign.DelayMaxSeconds = n
		}
	}
	if v := os.Getenv("DISPATCH_BASE_URL"); v != "" {
		cfg.Dispatch.BaseURL = v
	}
	if v := os.Getenv("DISPATCH_API_KEY"); v != "" {
		cfg.Dispatch.APIKey = v
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Tracking.DataDir == "" {
		cfg.Tracking.DataDir = "tracking_data"
	}
	if cfg.Tracking.BaseURL == "" {
		cfg.Tracking.BaseURL = "http://localhost:8080/track"
	}
	if cfg.Tracking.DefaultRedirectURL == "" {
		cfg.Tracking.DefaultRedirectURL = "https://www.example.com"
	}
	if cfg.Campaign.BatchSize == 0 {
		cfg.Campaign.BatchSize = 10
	}
	if cfg.Campaign.DelayMinSeconds == 0 {
		cfg.Campaign.DelayMinSeconds = 60
	}
	if cfg.Campaign.DelayMaxSeconds == 0 {
		cfg.Campaign.DelayMaxSeconds = 180
	}
	if cfg.Campaign.SentDir == "" {
		cfg.Campaign.SentDir = "sent_emails"
	}
	if cfg.Campaign.ReportDir == "" {
		cfg.Campaign.ReportDir = "reports"
	}
	if cfg.Dispatch.TimeoutSeconds == 0 {
		cfg.Dispatch.TimeoutSeconds = 30
	}
}
