package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/petems/shortcut-tray/internal/store"
	"github.com/spf13/viper"
)

const (
	appName   = "shortcut-tray"
	envPrefix = "SHORTCUT_TRAY"
)

type Config struct {
	LogLevel        string          `mapstructure:"log_level" json:"log_level"`
	CachePath       string          `mapstructure:"cache_path" json:"cache_path"`
	WatchCache      bool            `mapstructure:"watch_cache" json:"watch_cache"`
	WatchDebounce   time.Duration   `mapstructure:"watch_debounce" json:"-"`
	RegisterHotkeys bool            `mapstructure:"register_hotkeys" json:"register_hotkeys"`
	Clipboard       ClipboardConfig `mapstructure:"clipboard" json:"clipboard"`

	path string
}

type ClipboardConfig struct {
	HistorySize int `mapstructure:"history_size" json:"history_size"`
}

// Defaults returns the settings used when no config file exists.
func Defaults() Config {
	return Config{
		LogLevel:        "info",
		CachePath:       store.DefaultPath,
		WatchCache:      true,
		WatchDebounce:   500 * time.Millisecond,
		RegisterHotkeys: true,
		Clipboard: ClipboardConfig{
			HistorySize: 20,
		},
	}
}

// Load reads the config at path, or at the platform default when path is
// empty. A missing file yields the defaults. SHORTCUT_TRAY_* environment
// variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = configPath()
	}

	v := viper.New()
	setDefaults(v, Defaults())
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("cache_path", d.CachePath)
	v.SetDefault("watch_cache", d.WatchCache)
	v.SetDefault("watch_debounce", d.WatchDebounce.String())
	v.SetDefault("register_hotkeys", d.RegisterHotkeys)
	v.SetDefault("clipboard.history_size", d.Clipboard.HistorySize)
}

// Path returns the file this config was loaded from and saves to.
func (c *Config) Path() string {
	if c.path == "" {
		return configPath()
	}
	return c.path
}

// CacheFile returns the absolute location of the shortcut cache.
func (c *Config) CacheFile() (string, error) {
	return store.ResolvePath(c.CachePath)
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := c.Path()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	type alias Config
	data, err := json.MarshalIndent(struct {
		*alias
		WatchDebounce string `json:"watch_debounce"`
	}{
		alias:         (*alias)(c),
		WatchDebounce: c.WatchDebounce.String(),
	}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, appName, "config.json")
}
