// The application's root configuration: quota window, detector cadence,
// storage backends and the caption webhook collaborator.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/nexla-ia/gerador-frases-ia/api/schemas"
)

var (
	instance *Config
	once     sync.Once
)

// Config is the root configuration structure for the entire application.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Quota    QuotaConfig    `mapstructure:"quota"`
	Detector DetectorConfig `mapstructure:"detector"`
	History  HistoryConfig  `mapstructure:"history"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Caption  CaptionConfig  `mapstructure:"caption"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Server   ServerConfig   `mapstructure:"server"`
}

// ColorConfig defines the color settings for different log levels.
// These are used for console output to make logs more readable.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" json:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" json:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" json:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" json:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" json:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" json:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" json:"fatal" yaml:"fatal"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" json:"level" yaml:"level"`
	Format      string      `mapstructure:"format" json:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" json:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" json:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" json:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" json:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" json:"colors" yaml:"colors"`
}

// StorageConfig selects and parametrizes the persisted key-value backend.
type StorageConfig struct {
	// Backend is one of "file", "redis" or "memory".
	Backend    string `mapstructure:"backend"`
	ProfileDir string `mapstructure:"profile_dir"`
	RedisAddr  string `mapstructure:"redis_addr"`
	RedisDB    int    `mapstructure:"redis_db"`
}

// QuotaConfig holds the free-tier request allowance.
type QuotaConfig struct {
	MaxFreeRequests int           `mapstructure:"max_free_requests"`
	SessionDuration time.Duration `mapstructure:"session_duration"`
}

// DetectorConfig holds the private-browsing detector cadence and the
// per-probe timeouts.
type DetectorConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	FocusDebounce   time.Duration `mapstructure:"focus_debounce"`
	DatabaseTimeout time.Duration `mapstructure:"database_timeout"`
	PeerTimeout     time.Duration `mapstructure:"peer_timeout"`
}

// HistoryConfig caps the persisted search history.
type HistoryConfig struct {
	MaxItems int           `mapstructure:"max_items"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// AuditConfig caps the persisted audit log and optionally points at a
// Postgres sink for exported entries.
type AuditConfig struct {
	MaxEntries  int           `mapstructure:"max_entries"`
	TTL         time.Duration `mapstructure:"ttl"`
	PostgresURL string        `mapstructure:"postgres_url"`
}

// CaptionConfig describes the external caption-generation collaborator.
type CaptionConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	// RequestsPerSecond throttles outbound webhook calls. Zero disables
	// the limiter.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// BrowserConfig holds settings for the probe backend.
type BrowserConfig struct {
	// Driver is "chrome" for a live chromedp-driven browser or "static"
	// for the persona-backed fixture environment.
	Driver   string          `mapstructure:"driver"`
	Headless bool            `mapstructure:"headless"`
	Args     []string        `mapstructure:"args"`
	Persona  schemas.Persona `mapstructure:"persona"`
}

// ServerConfig holds settings for the local HTTP facade.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// Validate rejects configurations the rest of the system cannot act on.
func (c *Config) Validate() error {
	if c.Quota.MaxFreeRequests <= 0 {
		return fmt.Errorf("quota.max_free_requests must be positive, got %d", c.Quota.MaxFreeRequests)
	}
	if c.Quota.SessionDuration <= 0 {
		return fmt.Errorf("quota.session_duration must be positive, got %s", c.Quota.SessionDuration)
	}
	switch c.Storage.Backend {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Browser.Driver {
	case "chrome", "static":
	default:
		return fmt.Errorf("unknown browser driver %q", c.Browser.Driver)
	}
	if c.History.MaxItems <= 0 {
		return fmt.Errorf("history.max_items must be positive, got %d", c.History.MaxItems)
	}
	if c.Audit.MaxEntries <= 0 {
		return fmt.Errorf("audit.max_entries must be positive, got %d", c.Audit.MaxEntries)
	}
	return nil
}

// Load initializes the configuration singleton from Viper.
func Load(v *viper.Viper) error {
	var loadErr error
	once.Do(func() {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			loadErr = fmt.Errorf("error unmarshaling config: %w", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			loadErr = err
			return
		}
		instance = &cfg
	})
	return loadErr
}

// Set stores a configuration directly, bypassing Viper. Intended for tests
// and embedded callers that assemble the Config themselves.
func Set(cfg *Config) {
	instance = cfg
}

// Get returns the loaded configuration instance.
func Get() *Config {
	if instance == nil {
		panic("Configuration not initialized. Call config.Load() in the root command.")
	}
	return instance
}
