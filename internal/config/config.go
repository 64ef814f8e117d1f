package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/James9446/patricia-james-sub001/internal/auth"
	"github.com/James9446/patricia-james-sub001/internal/database"
	"github.com/James9446/patricia-james-sub001/internal/jobs"
	"github.com/James9446/patricia-james-sub001/internal/logging"
	"github.com/James9446/patricia-james-sub001/internal/notify"
	"github.com/James9446/patricia-james-sub001/internal/server"
	"github.com/James9446/patricia-james-sub001/internal/storage"
)

// EventConfig describes the wedding shown on the pages.
type EventConfig struct {
	Couple   string `mapstructure:"couple"`
	Date     string `mapstructure:"date"`
	Venue    string `mapstructure:"venue"`
	RSVPBy   string `mapstructure:"rsvp_by"`
	Timezone string `mapstructure:"timezone"`
}

// Config represents the global configuration for the service.
type Config struct {
	DB      database.Config `mapstructure:"db"`
	Logger  logging.Config  `mapstructure:"logger"`
	HTTP    server.Config   `mapstructure:"http"`
	Auth    auth.Config     `mapstructure:"auth"`
	Storage storage.Config  `mapstructure:"storage"`
	Notify  notify.Config   `mapstructure:"notify"`
	Jobs    jobs.Config     `mapstructure:"jobs"`
	Event   EventConfig     `mapstructure:"event"`
}

// LoadConfig loads the configuration from a TOML file and the environment.
// Environment variables take precedence over the file. Nested keys use a
// double underscore (DB__DSN for db.dsn); common keys also have flat aliases
// such as DB_DSN and ADMIN_TOKEN. A .env file is loaded first if present.
func LoadConfig(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))
	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.driver", database.DriverSQLite)
	v.SetDefault("db.dsn", "data/wedding.db")
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.max_open_connections", 10)
	v.SetDefault("db.max_idle_connections", 5)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")

	v.SetDefault("http.address", "")
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.allowed_origins", []string{})
	v.SetDefault("http.max_upload_mb", 20)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)

	v.SetDefault("auth.session_ttl", 30*24*time.Hour)
	v.SetDefault("auth.cookie_name", "session_token")

	v.SetDefault("storage.backend", storage.BackendLocal)
	v.SetDefault("storage.local_dir", "data/uploads")
	v.SetDefault("storage.s3_use_ssl", true)

	v.SetDefault("jobs.session_cleanup_spec", "@hourly")

	v.SetDefault("event.couple", "Patricia & James")
}

// bindEnvVars binds flat environment variable aliases to config keys.
func bindEnvVars(v *viper.Viper) error {
	binds := map[string][]string{
		"db.driver":                    {"DB_DRIVER"},
		"db.dsn":                       {"DB_DSN", "DATABASE_URL"},
		"logger.level":                 {"LOG_LEVEL"},
		"logger.format":                {"LOG_FORMAT"},
		"http.port":                    {"PORT", "HTTP_PORT"},
		"http.address":                 {"HTTP_ADDRESS"},
		"auth.admin_token":             {"ADMIN_TOKEN"},
		"auth.secure_cookies":          {"SECURE_COOKIES"},
		"storage.backend":              {"STORAGE_BACKEND"},
		"storage.local_dir":            {"UPLOAD_DIR"},
		"storage.s3_endpoint":          {"S3_ENDPOINT"},
		"storage.s3_access_key":        {"S3_ACCESS_KEY"},
		"storage.s3_secret_access_key": {"S3_SECRET_ACCESS_KEY"},
		"storage.s3_bucket_name":       {"S3_BUCKET_NAME"},
		"notify.discord_webhook_id":    {"DISCORD_WEBHOOK_ID"},
		"notify.discord_webhook_token": {"DISCORD_WEBHOOK_TOKEN"},
	}
	for key, envs := range binds {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("config: db.driver must be %q or %q, got %q", database.DriverSQLite, database.DriverPostgres, c.DB.Driver)
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("config: db.dsn is required")
	}
	if c.Storage.Backend == storage.BackendS3 && c.Storage.S3BucketName == "" {
		return errors.New("config: storage.s3_bucket_name is required for the s3 backend")
	}
	if c.HTTP.MaxUploadMB <= 0 {
		return errors.New("config: http.max_upload_mb must be positive")
	}
	return nil
}
