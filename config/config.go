// Package config loads service configuration from the environment.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full configuration of the ingestion service.
type Config struct {
	Database Database
	Service  Service
}

// Database carries the connection settings for the job and link store.
type Database struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"jovie"`
	User     string `envconfig:"DB_USER" default:"jovie"`
	Password string `envconfig:"DB_PASS" default:""`
}

// Service carries the pipeline and API settings.
type Service struct {
	Address       string        `envconfig:"INGEST_ADDRESS" default:":8080"`
	Workers       int           `envconfig:"INGEST_WORKERS" default:"4"`
	PollInterval  time.Duration `envconfig:"INGEST_POLL_INTERVAL" default:"2s"`
	SweepInterval time.Duration `envconfig:"INGEST_SWEEP_INTERVAL" default:"1m"`
	StaleAfter    time.Duration `envconfig:"INGEST_STALE_AFTER" default:"10m"`
	JobTimeout    time.Duration `envconfig:"INGEST_JOB_TIMEOUT" default:"60s"`
	CacheTTL      time.Duration `envconfig:"INGEST_CACHE_TTL" default:"1h"`
	LogLevel      string        `envconfig:"INGEST_LOG_LEVEL" default:"info"`
}

// New loads configuration from the environment, applying defaults.
func New() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
