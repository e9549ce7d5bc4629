package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/swipetrack/internal/domain"
)

const appName = "swipetrack"

// Config holds all application configuration
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers"`
	Cloud     CloudConfig     `mapstructure:"cloud"`
	Session   SessionConfig   `mapstructure:"session"`
	Deck      DeckConfig      `mapstructure:"deck"`
	Search    SearchConfig    `mapstructure:"search"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// ProvidersConfig holds metadata API settings
type ProvidersConfig struct {
	OMDb OMDbConfig `mapstructure:"omdb"`
	RAWG RAWGConfig `mapstructure:"rawg"`
}

// OMDbConfig configures the movie/series provider
type OMDbConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	DetailLimit int    `mapstructure:"detail_limit"` // detail lookups per deck page
}

// RAWGConfig configures the game provider
type RAWGConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	PageSize int    `mapstructure:"page_size"`
}

// CloudConfig configures the remote record store
type CloudConfig struct {
	URL        string `mapstructure:"url"` // collection endpoint, e.g. https://x.restdb.io/rest/user-entries
	APIKey     string `mapstructure:"api_key"`
	Enabled    bool   `mapstructure:"enabled"`
	MaxRecords int    `mapstructure:"max_records"`
}

// SessionConfig holds the saved login
type SessionConfig struct {
	Username string `mapstructure:"username"`
}

// DeckConfig holds deck tuning
type DeckConfig struct {
	LowWaterMark int    `mapstructure:"low_water_mark"`
	DefaultKind  string `mapstructure:"default_kind"`
}

// SearchConfig holds search tuning
type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	CellWidth  float64 `mapstructure:"cell_width"`  // drag units per terminal column
	CellHeight float64 `mapstructure:"cell_height"` // drag units per terminal row
	WatchURL   string  `mapstructure:"watch_url"`   // title is appended as ?q=
	Browser    string  `mapstructure:"browser"`     // empty for system default
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// CacheConfig locates the local mirror. An empty dir keeps the mirror in memory.
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Providers: ProvidersConfig{
			OMDb: OMDbConfig{
				BaseURL:     "https://www.omdbapi.com/",
				DetailLimit: 3,
			},
			RAWG: RAWGConfig{
				BaseURL:  "https://api.rawg.io/api",
				PageSize: 10,
			},
		},
		Cloud: CloudConfig{
			Enabled:    true,
			MaxRecords: 50,
		},
		Deck: DeckConfig{
			LowWaterMark: 5,
			DefaultKind:  string(domain.DeckAll),
		},
		Search: SearchConfig{
			Debounce: 500 * time.Millisecond,
		},
		UI: UIConfig{
			CellWidth:  12,
			CellHeight: 25,
			WatchURL:   "https://cine-gemini.vercel.app/search",
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName, "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, "cache")
	}
}

// setDefaults registers every key so env overrides and Unmarshal see them
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range flatten(cfg) {
		v.SetDefault(key, value)
	}
}

// flatten maps a config to its dotted snake_case keys
func flatten(cfg *Config) map[string]any {
	return map[string]any{
		"providers.omdb.api_key":      cfg.Providers.OMDb.APIKey,
		"providers.omdb.base_url":     cfg.Providers.OMDb.BaseURL,
		"providers.omdb.detail_limit": cfg.Providers.OMDb.DetailLimit,
		"providers.rawg.api_key":      cfg.Providers.RAWG.APIKey,
		"providers.rawg.base_url":     cfg.Providers.RAWG.BaseURL,
		"providers.rawg.page_size":    cfg.Providers.RAWG.PageSize,
		"cloud.url":                   cfg.Cloud.URL,
		"cloud.api_key":               cfg.Cloud.APIKey,
		"cloud.enabled":               cfg.Cloud.Enabled,
		"cloud.max_records":           cfg.Cloud.MaxRecords,
		"session.username":            cfg.Session.Username,
		"deck.low_water_mark":         cfg.Deck.LowWaterMark,
		"deck.default_kind":           cfg.Deck.DefaultKind,
		"search.debounce":             cfg.Search.Debounce.String(),
		"ui.cell_width":               cfg.UI.CellWidth,
		"ui.cell_height":              cfg.UI.CellHeight,
		"ui.watch_url":                cfg.UI.WatchURL,
		"ui.browser":                  cfg.UI.Browser,
		"logging.file":                cfg.Logging.File,
		"logging.level":               cfg.Logging.Level,
		"logging.max_size_mb":         cfg.Logging.MaxSizeMB,
		"logging.max_backups":         cfg.Logging.MaxBackups,
		"logging.max_age_days":        cfg.Logging.MaxAgeDays,
		"cache.dir":                   cfg.Cache.Dir,
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfigFrom(viper.GetViper(), defaultConfigPath())
}

func loadConfigFrom(v *viper.Viper, dir string) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")

	// Environment variable overrides, e.g. SWIPETRACK_PROVIDERS_OMDB_API_KEY
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if _, err := domain.ParseDeckKind(cfg.Deck.DefaultKind); err != nil {
		return nil, fmt.Errorf("invalid deck.default_kind: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	return saveConfigTo(viper.GetViper(), defaultConfigPath(), cfg)
}

func saveConfigTo(v *viper.Viper, dir string, cfg *Config) error {
	for key, value := range flatten(cfg) {
		v.Set(key, value)
	}
	return writeConfig(v, dir)
}

func writeConfig(v *viper.Viper, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveUsername persists the logged-in username
func SaveUsername(username string) error {
	viper.Set("session.username", strings.TrimSpace(username))
	return writeConfig(viper.GetViper(), defaultConfigPath())
}

// ClearSession forgets the saved username while keeping other settings
func ClearSession() error {
	viper.Set("session.username", "")
	return writeConfig(viper.GetViper(), defaultConfigPath())
}

// HasSession returns true if a username is saved
func (c *Config) HasSession() bool {
	return strings.TrimSpace(c.Session.Username) != ""
}

// CloudEnabled returns true if the remote record store is usable
func (c *Config) CloudEnabled() bool {
	return c.Cloud.Enabled && c.Cloud.URL != "" && c.Cloud.APIKey != ""
}

// DeckKind returns the configured starting deck
func (c *Config) DeckKind() domain.DeckKind {
	kind, err := domain.ParseDeckKind(c.Deck.DefaultKind)
	if err != nil {
		return domain.DeckAll
	}
	return kind
}

// ClearCache removes the local mirror
func ClearCache(cfg *Config) error {
	if cfg.Cache.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Cache.Dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetCachePath returns the default cache directory path
func GetCachePath() string {
	return defaultCachePath()
}

// GetConfigPath returns the config file location
func GetConfigPath() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}
