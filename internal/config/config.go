package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the tracking service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Notify  NotifyConfig  `yaml:"notify"`
	Home    HomeConfig    `yaml:"home"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the tracking-event store backend.
// Driver is "memory" (default, process-scoped), "postgres" or "redis".
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
}

// NotifyConfig holds the optional SQS open-event publisher settings.
// Publishing is disabled when QueueURL is empty.
type NotifyConfig struct {
	QueueURL string `yaml:"queue_url"`
}

// HomeConfig controls the home page served at /.
// Stealth swaps the tracking-info page for a generic business-services page.
type HomeConfig struct {
	Stealth bool `yaml:"stealth"`
}

// Load reads configuration from a YAML file and applies defaults. A missing
// file is not an error: free-tier deploys run on env variables alone.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "memory"
	}

	return &cfg, nil
}

// LoadFromEnv loads the config file and overrides it with environment
// variables when present.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		cfg.Server.Host = host
	}
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Storage.DatabaseURL = dbURL
		if cfg.Storage.Driver == "memory" {
			cfg.Storage.Driver = "postgres"
		}
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Storage.RedisURL = redisURL
		if cfg.Storage.Driver == "memory" && os.Getenv("DATABASE_URL") == "" {
			cfg.Storage.Driver = "redis"
		}
	}
	if queueURL := os.Getenv("SQS_OPEN_QUEUE_URL"); queueURL != "" {
		cfg.Notify.QueueURL = queueURL
	}
	if stealth := os.Getenv("STEALTH_HOME"); stealth != "" {
		cfg.Home.Stealth = stealth == "true" || stealth == "1"
	}

	return cfg, nil
}
