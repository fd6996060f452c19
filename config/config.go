package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/fsgate"
	"github.com/sagarc03/fsgate/database"
	fsgatehttp "github.com/sagarc03/fsgate/http"
	"github.com/sagarc03/fsgate/keybackend"
)

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

// Config is the root configuration struct for fsgate.
type Config struct {
	Server  ServerConfig          `mapstructure:"server"`
	Storage StorageConfig         `mapstructure:"storage"`
	Auth    AuthConfig            `mapstructure:"auth"`
	Journal JournalConfig         `mapstructure:"journal"`
	CORS    fsgatehttp.CORSConfig `mapstructure:"cors"`
	Log     LogConfig             `mapstructure:"log"`
	Env     string                `mapstructure:"env" validate:"required,oneof=dev prod"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize int64 `mapstructure:"max_upload_size" validate:"min=0"`
	MaxListDepth  int   `mapstructure:"max_list_depth" validate:"min=1"`
	ReadTimeout   int   `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout  int   `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout   int   `mapstructure:"idle_timeout" validate:"min=0"`
	AccessLog     bool  `mapstructure:"access_log"`
}

// Timeouts returns the read, write and idle timeouts as durations. Zero
// means no timeout.
func (s ServerConfig) Timeouts() (read, write, idle time.Duration) {
	return time.Duration(s.ReadTimeout) * time.Second,
		time.Duration(s.WriteTimeout) * time.Second,
		time.Duration(s.IdleTimeout) * time.Second
}

// StorageConfig holds file storage configuration.
type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AuthConfig holds the shared API key settings.
type AuthConfig struct {
	APIKey     string `mapstructure:"api_key"`
	APIKeyFile string `mapstructure:"api_key_file"`
}

// Keys converts the auth settings for keybackend.NewStore.
func (a AuthConfig) Keys() keybackend.KeysConfig {
	return keybackend.KeysConfig{Inline: a.APIKey, File: a.APIKeyFile}
}

// JournalConfig holds the operation journal settings.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Type    string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	DSN     string `mapstructure:"dsn" validate:"required"`
	Table   string `mapstructure:"table" validate:"required"`
}

// Database converts the journal settings for database.Connect.
func (j JournalConfig) Database() database.Config {
	return database.Config{
		Type:   j.Type,
		DSN:    j.DSN,
		Tables: fsgate.Tables{Events: j.Table},
	}
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":         "server.port",
	"storage-path": "storage.path",
	"data-dir":     "storage.path",
	"api-key":      "auth.api_key",
	"api-key-file": "auth.api_key_file",
	"journal":      "journal.enabled",
	"journal-type": "journal.type",
	"journal-dsn":  "journal.dsn",
	"log-level":    "log.level",
	"access-log":   "server.access_log",
}

// envAliases are short environment names accepted besides the FSGATE_ ones.
var envAliases = map[string]string{
	"auth.api_key": "API_KEY",
	"storage.path": "DATA_DIR",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
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
	v.SetDefault("server.port", 5708)
	v.SetDefault("server.max_upload_size", 0) // 0 means no limit
	v.SetDefault("server.max_list_depth", fsgate.DefaultMaxDepth)
	v.SetDefault("server.read_timeout", 0)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("server.access_log", false)

	v.SetDefault("storage.path", "./data")

	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.api_key_file", "")

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.type", "sqlite")
	v.SetDefault("journal.dsn", "fsgate.db")
	v.SetDefault("journal.table", "fsgate_journal")

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "apikey"})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("env", "dev")
}

// LoadDotEnv loads environment files with godotenv. Variables already set
// in the environment are kept. With no paths, ./.env is loaded if present.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
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

	// 3. Bind environment variables
	v.SetEnvPrefix("FSGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, alias := range envAliases {
		envName := "FSGATE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, envName, alias)
	}

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Journal.Database().Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: journal: %w", err)
	}

	return &cfg, nil
}
