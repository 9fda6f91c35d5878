package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // embedded zoneinfo for ui.timezone

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// MinKDFIterations is the lowest PBKDF2 work factor accepted.
const MinKDFIterations = 200_000

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security"`
	Import   ImportConfig   `mapstructure:"import"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SecurityConfig controls key derivation and where passwords come from.
type SecurityConfig struct {
	KDFIterations     int    `mapstructure:"kdf_iterations"`
	PasswordEnv       string `mapstructure:"password_env"`
	MinPasswordLength int    `mapstructure:"min_password_length"`
}

// ImportConfig points at optional user-defined statement formats.
type ImportConfig struct {
	FormatsFile string `mapstructure:"formats_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Timezone       string `mapstructure:"timezone"`
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "finvault")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "finvault")
}

// DefaultPath is where the config file lives unless overridden.
func DefaultPath() string {
	if p := os.Getenv("FINVAULT_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configDir(), "config.toml")
}

func newViper() *viper.Viper {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "finvault", "finvault.db"))
	v.SetDefault("security.kdf_iterations", 210_000)
	v.SetDefault("security.password_env", "FINVAULT_PASSWORD")
	v.SetDefault("security.min_password_length", 6)
	v.SetDefault("import.formats_file", filepath.Join(configDir(), "formats.toml"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("ui.currency_symbol", "R$")
	v.SetDefault("ui.timezone", "America/Sao_Paulo")

	v.SetConfigType("toml")
	v.SetEnvPrefix("FINVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from path (or DefaultPath when empty) and env.
// Env var overrides use prefix FINVAULT_, e.g. FINVAULT_DATABASE_PATH. A
// missing config file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	v := newViper()
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, c.Validate()
}

// Validate checks values that would otherwise fail later and less clearly.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Security.KDFIterations < MinKDFIterations {
		errs = append(errs, fmt.Errorf("security.kdf_iterations must be at least %d, got %d", MinKDFIterations, c.Security.KDFIterations))
	}
	if c.Security.MinPasswordLength < 1 {
		errs = append(errs, fmt.Errorf("security.min_password_length must be positive"))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	if _, err := time.LoadLocation(c.UI.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("ui.timezone: %w", err))
	}
	return errors.Join(errs...)
}

// Location returns the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Save writes cfg to path, creating the config directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("security.kdf_iterations", cfg.Security.KDFIterations)
	v.Set("security.password_env", cfg.Security.PasswordEnv)
	v.Set("security.min_password_length", cfg.Security.MinPasswordLength)
	v.Set("import.formats_file", cfg.Import.FormatsFile)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
