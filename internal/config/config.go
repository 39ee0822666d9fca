package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Rules   RulesConfig   `yaml:"rules" mapstructure:"rules"`
	Compare CompareConfig `yaml:"compare" mapstructure:"compare"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig describes where inspection records come from and how to read them.
type DataConfig struct {
	// Source is a local path or an http(s):// or ftp:// URL.
	Source string `yaml:"source" mapstructure:"source"`
	// Format is "csv" or "xlsx"; empty infers it from the source extension.
	Format      string `yaml:"format" mapstructure:"format"`
	Encoding    string `yaml:"encoding" mapstructure:"encoding"`
	Delimiter   string `yaml:"delimiter" mapstructure:"delimiter"`
	Sheet       string `yaml:"sheet" mapstructure:"sheet"`
	TrackColumn string `yaml:"track_column" mapstructure:"track_column"`
	JumboColumn string `yaml:"jumbo_column" mapstructure:"jumbo_column"`
}

// RulesConfig points at the grade/parameter rules file.
type RulesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// CompareConfig tunes the comparison engine.
type CompareConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// FetchConfig configures remote data sources.
type FetchConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// StoreConfig configures the inspection history backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	// DatabaseURL is a Postgres connection string, or a file path for sqlite.
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst          int      `yaml:"burst" mapstructure:"burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.source", "Dummy_PM7_Data_1000_Rows.csv")
	v.SetDefault("data.encoding", "utf-8")
	v.SetDefault("data.delimiter", ",")
	v.SetDefault("data.track_column", "Track")
	v.SetDefault("data.jumbo_column", "Jumbo_ID")
	v.SetDefault("rules.path", "")
	v.SetDefault("compare.concurrency", 4)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.user_agent", "inspect-cli/1.0")
	v.SetDefault("fetch.rate_per_sec", 5.0)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "inspect.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.burst", 40)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
// Modes: "data" (anything that reads inspection records), "serve", "store".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "data":
		if c.Data.Source == "" {
			errs = append(errs, "data.source is required")
		}
		switch strings.ToLower(c.Data.Format) {
		case "", "csv", "xlsx":
		default:
			errs = append(errs, fmt.Sprintf("data.format must be csv or xlsx, got %q", c.Data.Format))
		}
		if c.Data.TrackColumn == "" && c.Data.JumboColumn == "" {
			errs = append(errs, "data.track_column or data.jumbo_column is required")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
	case "store":
		switch c.Store.Driver {
		case "sqlite":
		case "postgres":
			if c.Store.DatabaseURL == "" {
				errs = append(errs, "store.database_url is required for postgres")
			}
		default:
			errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
		}
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
