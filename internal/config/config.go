package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	AMQP      AMQPConfig      `mapstructure:"amqp"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// Mode is "development" or "production"; production hides error details.
	Mode        string `mapstructure:"mode"`
	CORSOrigins string `mapstructure:"cors_origins"`
}

// IsProduction reports whether error details must stay out of responses.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Mode, "production")
}

// AllowedOrigins splits CORSOrigins on commas.
func (s ServerConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// URI and Name are used by the mongo driver only.
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
	// ConnectAttempts bounds the startup retry loop.
	ConnectAttempts int `mapstructure:"connect_attempts"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	// PublicBaseURL prefixes object keys in returned URLs. Empty means
	// <endpoint>/<bucket>.
	PublicBaseURL string `mapstructure:"public_base_url"`
	Folder        string `mapstructure:"folder"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	Expiration        time.Duration `mapstructure:"expiration"`
	RefreshSecret     string        `mapstructure:"refresh_secret"`
	RefreshExpiration time.Duration `mapstructure:"refresh_expiration"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

var (
	ErrMissingJWTSecret     = errors.New("jwt.secret is required")
	ErrMissingRefreshSecret = errors.New("jwt.refresh_secret is required")
)

// Every key is listed so AutomaticEnv can resolve it during Unmarshal.
var defaults = map[string]any{
	"server.address":            ":3000",
	"server.mode":               "development",
	"server.cors_origins":       "http://localhost:8080,http://localhost:5173,http://localhost:3000",
	"database.driver":           "postgres",
	"database.dsn":              "host=localhost user=postgres password=password dbname=mjnutrafit port=5432 sslmode=disable TimeZone=UTC",
	"database.uri":              "mongodb://localhost:27017",
	"database.name":             "mjnutrafit",
	"database.connect_attempts": 5,
	"s3.endpoint":               "",
	"s3.region":                 "us-east-1",
	"s3.access_key_id":          "",
	"s3.secret_access_key":      "",
	"s3.bucket_name":            "",
	"s3.public_base_url":        "",
	"s3.folder":                 "mjnutrafit/profile-pictures",
	"jwt.secret":                "",
	"jwt.expiration":            "24h",
	"jwt.refresh_secret":        "",
	"jwt.refresh_expiration":    "168h",
	"redis.addr":                "",
	"redis.password":            "",
	"redis.db":                  0,
	"ratelimit.requests":        20,
	"ratelimit.window":          "1m",
	"amqp.url":                  "",
	"amqp.exchange":             "mjnutrafit.events",
	"log.level":                 "info",
	"log.format":                "text",
	"log.file":                  "",
}

// LoadConfig reads configuration from <path>/config.yaml, a .env file and
// environment variables, in increasing order of precedence.
func LoadConfig(path string) (Config, error) {
	var config Config

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.refresh_secret -> JWT_REFRESH_SECRET
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to decode config: %w", err)
	}
	return config, config.Validate()
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	if c.JWT.RefreshSecret == "" {
		return ErrMissingRefreshSecret
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite", "mongo":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	return nil
}
