package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	// MemoryDSN selects a private in-memory sqlite database.
	MemoryDSN = ":memory:"
)

// Config is the resolved process configuration.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	DB              DBConfig
	Log             LogConfig
}

type DBConfig struct {
	Driver string
	DSN    string
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// SetDefaults registers the default for every key Load reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.dsn", "notes.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
}

// New returns a viper instance reading NOTES_* environment variables,
// e.g. NOTES_DB_DSN for db.dsn.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("notes")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// LoadDotEnv loads the given .env files (or ./.env) into the process
// environment. A missing file is reported but not fatal to the caller.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load resolves a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Addr:            v.GetString("addr"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		DB: DBConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("db.driver"))),
			DSN:    strings.TrimSpace(v.GetString("db.dsn")),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q (want %s or %s)", c.DB.Driver, DriverSQLite, DriverPostgres)
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db dsn must not be empty")
	}
	if c.Addr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
