package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Log       LogConfig
	Generator GeneratorConfig
	Extract   ExtractConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings for the reference catalog.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds settings for the remote document blob source.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GeneratorProviderConfig holds settings for a single structured-generation
// provider.
type GeneratorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// GeneratorConfig holds structured-generation settings with an optional
// secondary fallback provider.
type GeneratorConfig struct {
	Primary   GeneratorProviderConfig `mapstructure:"primary"`
	Secondary GeneratorProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary provider config, or nil when no
// fallback is configured.
func (g *GeneratorConfig) SecondaryConfig() *GeneratorProviderConfig {
	if g.Secondary.Provider != "" {
		return &g.Secondary
	}
	return nil
}

// ExtractConfig holds extraction-stage settings.
type ExtractConfig struct {
	// ExemplarDir points at a directory of few-shot exemplar documents,
	// each paired with a sibling <name>.json of its expected items.
	// Empty disables few-shot prompting.
	ExemplarDir string `mapstructure:"exemplar_dir"`
}

// Load reads configuration from environment variables with the FACTURIO_
// prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FACTURIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults. Write timeout is generous: both pipeline stages make
	// blocking model round-trips inside the request.
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "facturio")
	v.SetDefault("db.password", "facturio_secret")
	v.SetDefault("db.name", "facturio_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "facturio-documents")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Generator defaults
	v.SetDefault("generator.primary.provider", "openai")
	v.SetDefault("generator.primary.api_key", "")
	v.SetDefault("generator.primary.default_model", "")
	v.SetDefault("generator.primary.timeout_secs", 120)
	v.SetDefault("generator.secondary.provider", "")
	v.SetDefault("generator.secondary.api_key", "")
	v.SetDefault("generator.secondary.default_model", "")
	v.SetDefault("generator.secondary.timeout_secs", 120)

	// Extraction defaults
	v.SetDefault("extract.exemplar_dir", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "FACTURIO_SERVER_PORT",
		"server.read_timeout":  "FACTURIO_SERVER_READ_TIMEOUT",
		"server.write_timeout": "FACTURIO_SERVER_WRITE_TIMEOUT",
		"server.environment":   "FACTURIO_SERVER_ENVIRONMENT",
		"db.host":              "FACTURIO_DB_HOST",
		"db.port":              "FACTURIO_DB_PORT",
		"db.user":              "FACTURIO_DB_USER",
		"db.password":          "FACTURIO_DB_PASSWORD",
		"db.name":              "FACTURIO_DB_NAME",
		"db.sslmode":           "FACTURIO_DB_SSLMODE",
		"db.max_open":          "FACTURIO_DB_MAX_OPEN",
		"db.max_idle":          "FACTURIO_DB_MAX_IDLE",
		"s3.region":            "FACTURIO_S3_REGION",
		"s3.bucket":            "FACTURIO_S3_BUCKET",
		"s3.endpoint":          "FACTURIO_S3_ENDPOINT",
		"s3.access_key":        "FACTURIO_S3_ACCESS_KEY",
		"s3.secret_key":        "FACTURIO_S3_SECRET_KEY",
		"log.level":            "FACTURIO_LOG_LEVEL",
		"log.format":           "FACTURIO_LOG_FORMAT",
		"generator.primary.provider":        "FACTURIO_GENERATOR_PRIMARY_PROVIDER",
		"generator.primary.api_key":         "FACTURIO_GENERATOR_PRIMARY_API_KEY",
		"generator.primary.default_model":   "FACTURIO_GENERATOR_PRIMARY_DEFAULT_MODEL",
		"generator.primary.timeout_secs":    "FACTURIO_GENERATOR_PRIMARY_TIMEOUT_SECS",
		"generator.secondary.provider":      "FACTURIO_GENERATOR_SECONDARY_PROVIDER",
		"generator.secondary.api_key":       "FACTURIO_GENERATOR_SECONDARY_API_KEY",
		"generator.secondary.default_model": "FACTURIO_GENERATOR_SECONDARY_DEFAULT_MODEL",
		"generator.secondary.timeout_secs":  "FACTURIO_GENERATOR_SECONDARY_TIMEOUT_SECS",
		"extract.exemplar_dir":              "FACTURIO_EXTRACT_EXEMPLAR_DIR",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FACTURIO_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FACTURIO_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Generator = GeneratorConfig{
		Primary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.primary.provider"),
			APIKey:       v.GetString("generator.primary.api_key"),
			DefaultModel: v.GetString("generator.primary.default_model"),
			TimeoutSecs:  v.GetInt("generator.primary.timeout_secs"),
		},
		Secondary: GeneratorProviderConfig{
			Provider:     v.GetString("generator.secondary.provider"),
			APIKey:       v.GetString("generator.secondary.api_key"),
			DefaultModel: v.GetString("generator.secondary.default_model"),
			TimeoutSecs:  v.GetInt("generator.secondary.timeout_secs"),
		},
	}
	cfg.Extract = ExtractConfig{
		ExemplarDir: v.GetString("extract.exemplar_dir"),
	}

	return cfg, nil
}
