package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/christopherklint97/plantbill/internal/billing"
)

type Config struct {
	Store         StoreConfig          `toml:"store"`
	Remote        RemoteConfig         `toml:"remote"`
	Billing       billing.StoredConfig `toml:"billing"`
	Holidays      HolidaysConfig       `toml:"holidays"`
	Report        ReportConfig         `toml:"report"`
	Log           LogConfig            `toml:"log"`
	Notifications NotifyConfig         `toml:"notifications"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type RemoteConfig struct {
	URL             string `toml:"url"`
	APIKey          string `toml:"api_key"`
	CacheTTLMinutes int    `toml:"cache_ttl_minutes"`
}

type HolidaysConfig struct {
	Source string   `toml:"source"` // ICS URL | file path
	Dates  []string `toml:"dates"`  // extra YYYY-MM-DD dates
}

type ReportConfig struct {
	Format  string `toml:"format"` // "text" | "json" | "xlsx"
	Workers int    `toml:"workers"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" | "json"
}

type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

func DefaultConfig() Config {
	return Config{
		Remote: RemoteConfig{
			CacheTTLMinutes: 10,
		},
		Report: ReportConfig{
			Format:  "text",
			Workers: 4,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Notifications: NotifyConfig{
			Enabled: false,
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "plantbill"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path (the default location when empty).
// A missing file yields the defaults. Values from a .env file in the
// working directory and the environment override the file.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if _, err := cfg.BillingConfig(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PLANTBILL_DB"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("PLANTBILL_REMOTE_URL"); v != "" {
		cfg.Remote.URL = v
	}
	if v := os.Getenv("PLANTBILL_API_KEY"); v != "" {
		cfg.Remote.APIKey = v
	}
	if v := os.Getenv("PLANTBILL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("PLANTBILL_HOLIDAYS"); v != "" {
		cfg.Holidays.Source = v
	}
}

// BillingConfig resolves the stored billing settings and validates them.
func (c *Config) BillingConfig() (billing.Config, error) {
	bc := c.Billing.Resolve()
	if err := bc.Validate(); err != nil {
		return billing.Config{}, err
	}
	return bc, nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Remote.CacheTTLMinutes) * time.Minute
}

// SaveBillingMethod sets the billing method of every calendar day type in
// the config file at path, keeping every other setting.
func SaveBillingMethod(path string, method billing.Method) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	cfg := make(map[string]any)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	b, ok := cfg["billing"].(map[string]any)
	if !ok {
		b = make(map[string]any)
	}
	for _, key := range []string{"weekday", "saturday", "sunday", "public_holiday"} {
		section, ok := b[key].(map[string]any)
		if !ok {
			section = make(map[string]any)
		}
		section["billing_method"] = string(method)
		b[key] = section
	}
	cfg["billing"] = b

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
