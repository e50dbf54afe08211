package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/sigv4auth/database"
	sigv4http "github.com/sagarc03/sigv4auth/http"
	"github.com/sagarc03/sigv4auth/keybackend"
	"github.com/sagarc03/sigv4auth/tracing"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "SIGV4AUTH"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for sigv4auth.
type Config struct {
	Server   ServerConfig          `mapstructure:"server"`
	Database database.Config       `mapstructure:"database"`
	Keys     keybackend.KeysConfig `mapstructure:"keys"`
	CORS     sigv4http.CORSConfig  `mapstructure:"cors"`
	Metrics  MetricsConfig         `mapstructure:"metrics"`
	Log      LogConfig             `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxBodyBytes    int64 `mapstructure:"max_body_bytes" validate:"min=0"`
	ShutdownTimeout int   `mapstructure:"shutdown_timeout" validate:"min=1"`
	// LookupTimeout bounds a shared key store lookup, in seconds.
	LookupTimeout int `mapstructure:"lookup_timeout" validate:"min=1"`
}

// MetricsConfig controls Prometheus metrics and tracing instrumentation.
type MetricsConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Tracing tracing.Config `mapstructure:"tracing"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":   "database.type",
	"db-dsn":    "database.dsn",
	"db-table":  "database.table",
	"keys-file": "keys.file",
	"port":      "server.port",
	"log-level": "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5709)
	v.SetDefault("server.max_body_bytes", sigv4http.DefaultMaxBodyBytes)
	v.SetDefault("server.shutdown_timeout", 30) // seconds
	v.SetDefault("server.lookup_timeout", 5)    // seconds

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "sigv4auth.db")
	v.SetDefault("database.table", database.DefaultTable)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.tracing.enabled", false)
	v.SetDefault("metrics.tracing.endpoint", "")
	v.SetDefault("metrics.tracing.insecure", false)
	v.SetDefault("metrics.tracing.sample_ratio", 1.0)
	v.SetDefault("metrics.tracing.service_name", tracing.DefaultServiceName)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
