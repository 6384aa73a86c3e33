package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	SES          SESConfig          `yaml:"ses"`
	Provisioning ProvisioningConfig `yaml:"provisioning"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	APIToken string `yaml:"api_token"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds the Postgres connection settings. An empty URL
// switches the server to in-memory stores, which is only useful for
// local development.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the cache/event-bus connection settings. An empty
// URL falls back to the in-process cache and disables event publishing.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// SESConfig holds AWS SES credential mail settings
type SESConfig struct {
	Region      string `yaml:"region"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	FromAddress string `yaml:"from_address"`
	FromName    string `yaml:"from_name"`
}

// ProvisioningConfig holds account provisioning behavior
type ProvisioningConfig struct {
	LoginURL        string `yaml:"login_url"`
	ErrorLogSize    int    `yaml:"error_log_size"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// Load reads and parses the configuration file. A missing file is not an
// error: the server can run entirely on defaults plus env overrides.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-west-2"
	}
	if cfg.SES.FromName == "" {
		cfg.SES.FromName = "Trader Portal"
	}
	if cfg.Provisioning.ErrorLogSize == 0 {
		cfg.Provisioning.ErrorLogSize = 100
	}
	if cfg.Provisioning.CacheTTLSeconds == 0 {
		cfg.Provisioning.CacheTTLSeconds = 300
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if token := os.Getenv("API_TOKEN"); token != "" {
		cfg.Server.APIToken = token
	}

	// Database override (critical for ECS deployment where config.yaml has local defaults)
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}

	if accessKey := os.Getenv("AWS_SES_ACCESS_KEY"); accessKey != "" {
		cfg.SES.AccessKey = accessKey
	}
	if secretKey := os.Getenv("AWS_SES_SECRET_KEY"); secretKey != "" {
		cfg.SES.SecretKey = secretKey
	}
	if region := os.Getenv("AWS_SES_REGION"); region != "" {
		cfg.SES.Region = region
	}
	if from := os.Getenv("SES_FROM_ADDRESS"); from != "" {
		cfg.SES.FromAddress = from
	}

	if loginURL := os.Getenv("PORTAL_LOGIN_URL"); loginURL != "" {
		cfg.Provisioning.LoginURL = loginURL
	}

	return cfg, nil
}
