package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultPath = "configs/config.yaml"

type Config struct {
	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Storage struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`
	Orders struct {
		AutoCompleteExpired bool `yaml:"auto_complete_expired"`
	} `yaml:"orders"`
	Reminders struct {
		Enabled         bool  `yaml:"enabled"`
		IntervalSeconds int64 `yaml:"interval_seconds"`
	} `yaml:"reminders"`
	Calendar struct {
		OpenEnded string `yaml:"open_ended"`
	} `yaml:"calendar"`
	Locale struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"locale"`
	Backup struct {
		Target string `yaml:"target"`
		Dir    string `yaml:"dir"`
		S3     struct {
			Bucket          string `yaml:"bucket"`
			Region          string `yaml:"region"`
			Endpoint        string `yaml:"endpoint"`
			Prefix          string `yaml:"prefix"`
			AccessKeyID     string `yaml:"access_key_id"`
			SecretAccessKey string `yaml:"secret_access_key"`
			PathStyle       bool   `yaml:"path_style"`
		} `yaml:"s3"`
	} `yaml:"backup"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func defaults() Config {
	var cfg Config
	cfg.Server.Addr = "127.0.0.1:8080"
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = "rental-ledger.db"
	cfg.Reminders.Enabled = true
	cfg.Reminders.IntervalSeconds = 10
	cfg.Calendar.OpenEnded = "exclude"
	cfg.Backup.Target = "file"
	cfg.Backup.Dir = "backups"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// Load reads path, $CONFIG_PATH or configs/config.yaml, in that order, over
// the built-in defaults. Only a missing default file is tolerated.
func Load(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultPath
		explicit = false
	}

	cfg := defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Storage.Driver != "memory" && c.Storage.DSN == "" {
		return errors.New("storage.dsn is required")
	}
	if c.Reminders.IntervalSeconds <= 0 {
		return errors.New("reminders.interval_seconds must be positive")
	}
	switch c.Backup.Target {
	case "file":
		if c.Backup.Dir == "" {
			return errors.New("backup.dir is required")
		}
	case "s3":
		if c.Backup.S3.Bucket == "" {
			return errors.New("backup.s3.bucket is required")
		}
	default:
		return fmt.Errorf("unknown backup.target %q", c.Backup.Target)
	}
	if _, err := c.TimeLocation(); err != nil {
		return err
	}
	return nil
}

// ReminderInterval is the monitor cadence.
func (c *Config) ReminderInterval() time.Duration {
	return time.Duration(c.Reminders.IntervalSeconds) * time.Second
}

// TimeLocation resolves locale.timezone; empty means the process zone.
func (c *Config) TimeLocation() (*time.Location, error) {
	if c.Locale.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Locale.Timezone)
	if err != nil {
		return nil, fmt.Errorf("locale.timezone: %w", err)
	}
	return loc, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RENTAL_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("RENTAL_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitCommaList(v)
	}
	if v := os.Getenv("RENTAL_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("RENTAL_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("RENTAL_AUTO_COMPLETE_EXPIRED"); v != "" {
		cfg.Orders.AutoCompleteExpired = boolOr(cfg.Orders.AutoCompleteExpired, v)
	}
	if v := os.Getenv("RENTAL_REMINDERS_ENABLED"); v != "" {
		cfg.Reminders.Enabled = boolOr(cfg.Reminders.Enabled, v)
	}
	if v := os.Getenv("RENTAL_REMINDER_INTERVAL_SECONDS"); v != "" {
		cfg.Reminders.IntervalSeconds = atoi64Or(cfg.Reminders.IntervalSeconds, v)
	}
	if v := os.Getenv("RENTAL_CALENDAR_OPEN_ENDED"); v != "" {
		cfg.Calendar.OpenEnded = v
	}
	if v := os.Getenv("RENTAL_TIMEZONE"); v != "" {
		cfg.Locale.Timezone = v
	}
	if v := os.Getenv("RENTAL_BACKUP_TARGET"); v != "" {
		cfg.Backup.Target = v
	}
	if v := os.Getenv("RENTAL_BACKUP_DIR"); v != "" {
		cfg.Backup.Dir = v
	}
	if v := os.Getenv("RENTAL_BACKUP_S3_BUCKET"); v != "" {
		cfg.Backup.S3.Bucket = v
	}
	if v := os.Getenv("RENTAL_BACKUP_S3_REGION"); v != "" {
		cfg.Backup.S3.Region = v
	}
	if v := os.Getenv("RENTAL_BACKUP_S3_ENDPOINT"); v != "" {
		cfg.Backup.S3.Endpoint = v
	}
	if v := os.Getenv("RENTAL_BACKUP_S3_PREFIX"); v != "" {
		cfg.Backup.S3.Prefix = v
	}
	if v := os.Getenv("RENTAL_BACKUP_S3_ACCESS_KEY_ID"); v != "" {
		cfg.Backup.S3.AccessKeyID = v
	}
	if v := os.Getenv("RENTAL_BACKUP_S3_SECRET_ACCESS_KEY"); v != "" {
		cfg.Backup.S3.SecretAccessKey = v
	}
	if v := os.Getenv("RENTAL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("RENTAL_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func splitCommaList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func atoi64Or(fallback int64, v string) int64 {
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func boolOr(fallback bool, v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
