package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env          string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer   `yaml:"http_server"`
	Database     `yaml:"database"`
	URLShortener `yaml:"url_shortener"`
	RateLimiter  `yaml:"rate_limiter"`
	Queues       `yaml:"queues"`
	Validator    `yaml:"validator"`
	GeoIP        `yaml:"geoip"`
}

// HTTPServer holds HTTP server specific configuration.
type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	// CreateRate is the per-IP throttle on the creation endpoint,
	// in ulule/limiter format ("20-M" = 20 requests per minute).
	CreateRate string `yaml:"create_rate" env:"HTTP_CREATE_RATE" env-default:"20-M"`
}

// Database holds PostgreSQL connection configuration.
type Database struct {
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string `yaml:"password" env:"DB_PASSWORD" env-default:"postgres"`
	DBName          string `yaml:"name" env:"DB_NAME" env-default:"linkguard"`
	SSLMode         string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
}

// URLShortener holds service-specific configuration.
type URLShortener struct {
	BaseURL string `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
	// RedirectionMode is the HTTP status used for redirects (301 or 307).
	RedirectionMode int `yaml:"redirection_mode" env:"REDIRECTION_MODE" env-default:"307"`
	// Read cache for the hot short URL lookup on the redirect path.
	CacheSize int           `yaml:"cache_size" env:"SHORTURL_CACHE_SIZE" env-default:"8192"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"SHORTURL_CACHE_TTL" env-default:"5m"`
}

// RateLimiter holds the per-hash redirection throttle configuration.
type RateLimiter struct {
	Limit     int64         `yaml:"limit" env:"RATE_LIMIT" env-default:"10"`
	TimeFrame time.Duration `yaml:"time_frame" env:"RATE_TIME_FRAME" env-default:"60s"`
}

// Queues holds the background event queue capacities.
type Queues struct {
	ValidationCapacity  int `yaml:"validation_capacity" env:"QUEUE_VALIDATION_CAPACITY" env-default:"10000"`
	GeoLocationCapacity int `yaml:"geolocation_capacity" env:"QUEUE_GEOLOCATION_CAPACITY" env-default:"10000"`
}

// Validator holds the URL validation collaborator configuration.
type Validator struct {
	RequestTimeout time.Duration `yaml:"request_timeout" env:"VALIDATOR_REQUEST_TIMEOUT" env-default:"5s"`
	// BlockedHosts lists hostnames considered unsafe redirect targets.
	BlockedHosts []string `yaml:"blocked_hosts" env:"VALIDATOR_BLOCKED_HOSTS" env-separator:","`
}

// GeoIP holds the IP geolocation collaborator configuration.
type GeoIP struct {
	Endpoint       string        `yaml:"endpoint" env:"GEOIP_ENDPOINT" env-default:"http://ip-api.com/json"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"GEOIP_REQUEST_TIMEOUT" env-default:"3s"`
	CacheTTL       time.Duration `yaml:"cache_ttl" env:"GEOIP_CACHE_TTL" env-default:"1h"`
	CacheSize      int           `yaml:"cache_size" env:"GEOIP_CACHE_SIZE" env-default:"4096"`
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	var cfg Config

	// Check if config file path is specified
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml" // default path
	}

	// Try to load config file
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		// If config file doesn't exist, use environment variables only
		log.Println("Config file not found, using environment variables only")
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
	}

	return &cfg
}
