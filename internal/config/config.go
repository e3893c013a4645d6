// Package config loads runtime configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process configuration for plantcored.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Storage struct {
		Driver      string `mapstructure:"driver"`
		SQLitePath  string `mapstructure:"sqlite_path"`
		PostgresDSN string `mapstructure:"postgres_dsn"`
	} `mapstructure:"storage"`

	Blob struct {
		Driver string `mapstructure:"driver"`
		FSRoot string `mapstructure:"fs_root"`
	} `mapstructure:"blob"`

	Workstation string `mapstructure:"workstation"`

	Operator struct {
		ID       string `mapstructure:"id"`
		Username string `mapstructure:"username"`
		FullName string `mapstructure:"full_name"`
		Role     string `mapstructure:"role"`
	} `mapstructure:"operator"`

	Monitor struct {
		EscalationInterval time.Duration `mapstructure:"escalation_interval"`
		ProgressInterval   time.Duration `mapstructure:"progress_interval"`
	} `mapstructure:"monitor"`
}

// Load reads configuration from the given file path, falling back to
// plantcore.yaml in the working directory when path is empty. Environment
// variables with the PLANTCORE_ prefix override file values, with dots
// replaced by underscores (PLANTCORE_STORAGE_DRIVER and so on). A missing
// config file is not an error; defaults and the environment apply.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("plantcore")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("PLANTCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "./plantcore.db")
	v.SetDefault("blob.driver", "fs")
	v.SetDefault("blob.fs_root", "./blobdata")
	v.SetDefault("workstation", "HMI-001")
	v.SetDefault("operator.id", "USR001")
	v.SetDefault("operator.username", "jsmith")
	v.SetDefault("operator.full_name", "John Smith")
	v.SetDefault("operator.role", "supervisor")
	v.SetDefault("monitor.escalation_interval", 30*time.Second)
	v.SetDefault("monitor.progress_interval", 3*time.Second)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && path == "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if path != "" {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Blob.Driver {
	case "fs", "s3", "memory":
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("storage.postgres_dsn required for postgres driver")
	}
	if c.Monitor.EscalationInterval <= 0 || c.Monitor.ProgressInterval <= 0 {
		return fmt.Errorf("monitor intervals must be positive")
	}
	return nil
}
