package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/quizbook/internal/store"
)

var ErrInvalidConfig = errors.New("invalid config")

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Drivers lists every supported store driver.
var Drivers = []string{DriverSQLite, DriverFile, DriverRedis, DriverMemory}

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string `mapstructure:"env"`       // development or production
	BankPath string `mapstructure:"bank_path"` // question bank file, JSON or YAML
	Store    Store  `mapstructure:"store"`
	Log      Log    `mapstructure:"log"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// Store selects and configures the progress backend.
type Store struct {
	Driver        string `mapstructure:"driver"`
	DSN           string `mapstructure:"dsn"` // sqlite database path
	Dir           string `mapstructure:"dir"` // file backend directory
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// Log configures the zap logger.
type Log struct {
	Path  string `mapstructure:"path"` // file path, or "stderr"
	Level string `mapstructure:"level"`
}

// IsProduction reports whether the production environment is selected.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from .env, an optional YAML file and QUIZBOOK_*
// environment variables, in increasing priority.
//
// When path is empty the file is looked up as ./quizbook.yaml, then
// $XDG_CONFIG_HOME/quizbook/quizbook.yaml. A missing file is not an error
// unless path was given explicitly.
func Load(path string) (*Config, error) {
	// .env is optional; a missing file is fine.
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("quizbook")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	dataDir, err := store.DefaultDataDir()
	if err != nil {
		return nil, err
	}
	dsn := os.Getenv("QUIZBOOK_DB")
	if dsn == "" {
		dsn = filepath.Join(dataDir, "quizbook.db")
	}

	v.SetDefault("env", "development")
	v.SetDefault("bank_path", "data.json")
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.dsn", dsn)
	v.SetDefault("store.dir", filepath.Join(dataDir, "progress"))
	v.SetDefault("store.redis_addr", "")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("log.path", filepath.Join(dataDir, "quizbook.log"))
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("QUIZBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}

// Validate checks the values Load cannot check on its own.
func (c *Config) Validate() error {
	if c.BankPath == "" {
		return fmt.Errorf("%w: bank_path is empty", ErrInvalidConfig)
	}
	if !slices.Contains(Drivers, c.Store.Driver) {
		return fmt.Errorf("%w: unknown store driver %q (want one of %s)",
			ErrInvalidConfig, c.Store.Driver, strings.Join(Drivers, ", "))
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is empty", ErrInvalidConfig)
		}
	case DriverFile:
		if c.Store.Dir == "" {
			return fmt.Errorf("%w: store.dir is empty", ErrInvalidConfig)
		}
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("%w: store.redis_addr is required for the redis driver", ErrInvalidConfig)
		}
	}
	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("%w: env must be development or production, got %q", ErrInvalidConfig, c.Env)
	}
	return nil
}

// configDir returns $XDG_CONFIG_HOME/quizbook, falling back to ~/.config/quizbook.
func configDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "quizbook"), nil
}
