// Package config loads and validates pinboard configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/livetemplate/pinboard"
	"github.com/livetemplate/pinboard/internal/security"
)

// FileNames are the config file names LoadFromDir looks for, in order.
var FileNames = []string{"pinboard.yaml", "pinboard.yml"}

// Config represents the pinboard configuration
type Config struct {
	Title    string         `yaml:"title"`
	Server   ServerConfig   `yaml:"server"`
	Board    BoardConfig    `yaml:"board"`
	Storage  StorageConfig  `yaml:"storage"`
	API      APIConfig      `yaml:"api"`
	Features FeaturesConfig `yaml:"features"`
	Log      LogConfig      `yaml:"log"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `yaml:"-"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port  int    `yaml:"port"`
	Host  string `yaml:"host"`
	Debug bool   `yaml:"debug"`
}

// BoardConfig describes the board served on startup.
type BoardConfig struct {
	Name string `yaml:"name"` // Snapshot key in storage
	// Items seeds the board. Nil means the demo items; an empty list means an empty board.
	Items []pinboard.ItemSpec `yaml:"items"`
}

// StorageConfig enables board snapshots.
type StorageConfig struct {
	Driver string `yaml:"driver,omitempty"` // "sqlite" or "postgres"; empty disables storage
	DSN    string `yaml:"dsn,omitempty"`    // File path for sqlite, connection string for postgres (env vars expanded)
}

// APIConfig holds HTTP API configuration
type APIConfig struct {
	RateLimit *RateLimitConfig `yaml:"rate_limit,omitempty"`
}

// RateLimitConfig holds rate limiting configuration for the API
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"` // default: 20
	Burst             int     `yaml:"burst,omitempty"`               // default: 40
	MaxIPs            int     `yaml:"max_ips,omitempty"`             // default: 10000
}

// FeaturesConfig holds feature flags
type FeaturesConfig struct {
	HotReload bool `yaml:"hot_reload"`
}

// LogConfig routes log output to a rotating file when File is set.
type LogConfig struct {
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`  // default: 10
	MaxBackups int    `yaml:"max_backups,omitempty"`  // default: 3
	MaxAgeDays int    `yaml:"max_age_days,omitempty"` // default: 28
	Compress   bool   `yaml:"compress,omitempty"`
}

// IsEnabled reports whether snapshots are configured.
func (c StorageConfig) IsEnabled() bool {
	return c.Driver != ""
}

// GetDSN returns the DSN with environment variables expanded. A relative
// sqlite path is resolved against baseDir.
func (c StorageConfig) GetDSN(baseDir string) string {
	dsn := os.ExpandEnv(c.DSN)
	if c.Driver == "sqlite" {
		if dsn == "" {
			dsn = "pinboard.db"
		}
		if !filepath.IsAbs(dsn) && baseDir != "" {
			dsn = filepath.Join(baseDir, dsn)
		}
	}
	return dsn
}

// GetRateLimitRPS returns the rate limit in requests per second (default: 20)
func (c APIConfig) GetRateLimitRPS() float64 {
	if c.RateLimit == nil || c.RateLimit.RequestsPerSecond <= 0 {
		return 20
	}
	return c.RateLimit.RequestsPerSecond
}

// GetRateLimitBurst returns the burst size (default: 40)
func (c APIConfig) GetRateLimitBurst() int {
	if c.RateLimit == nil || c.RateLimit.Burst <= 0 {
		return 40
	}
	return c.RateLimit.Burst
}

// GetRateLimitMaxIPs returns the number of tracked client IPs (default: 10000)
func (c APIConfig) GetRateLimitMaxIPs() int {
	if c.RateLimit == nil || c.RateLimit.MaxIPs <= 0 {
		return 10000
	}
	return c.RateLimit.MaxIPs
}

// GetMaxSizeMB returns the rotation size (default: 10)
func (c LogConfig) GetMaxSizeMB() int {
	if c.MaxSizeMB <= 0 {
		return 10
	}
	return c.MaxSizeMB
}

// GetMaxBackups returns the number of rotated files kept (default: 3)
func (c LogConfig) GetMaxBackups() int {
	if c.MaxBackups <= 0 {
		return 3
	}
	return c.MaxBackups
}

// GetMaxAgeDays returns the retention in days (default: 28)
func (c LogConfig) GetMaxAgeDays() int {
	if c.MaxAgeDays <= 0 {
		return 28
	}
	return c.MaxAgeDays
}

// GetItems returns the seed items, falling back to the demo board.
func (c BoardConfig) GetItems() []pinboard.ItemSpec {
	if c.Items == nil {
		return pinboard.DemoItems()
	}
	return c.Items
}

// GetName returns the snapshot key (default: "default")
func (c BoardConfig) GetName() string {
	if c.Name == "" {
		return "default"
	}
	return c.Name
}

// BaseDir returns the directory relative paths are resolved against.
func (c *Config) BaseDir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// Validate checks the configuration for values the server cannot use.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	for i, item := range c.Board.Items {
		if !slices.Contains(pinboard.Kinds(), item.Kind) {
			return fmt.Errorf("board.items[%d]: %w", i, &pinboard.UnknownKindError{Kind: string(item.Kind)})
		}
		if err := security.ValidateItem(item); err != nil {
			return fmt.Errorf("board.items[%d]: %w", i, err)
		}
	}
	switch c.Storage.Driver {
	case "", "sqlite":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage: postgres requires a dsn")
		}
	default:
		return fmt.Errorf("storage: unsupported driver %q (use sqlite or postgres)", c.Storage.Driver)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Title: "Pinboard",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
	}
}

// Load loads configuration from a YAML file
// If the file doesn't exist, returns the default configuration
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig() // Start with defaults
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.Path = configPath

	return config, nil
}

// LoadFromDir looks for pinboard.yaml or pinboard.yml in the given directory
// If none is found, returns the default configuration
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return DefaultConfig(), nil
}

// Save writes the configuration to a YAML file
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
