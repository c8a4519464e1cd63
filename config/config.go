package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration parameters taken from environment variables.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Import pipeline tuning. BatchSize bounds a single execute call,
	// BatchPauseMS is the throttle between consecutive batches of a run.
	BatchSize    int `envconfig:"BATCH_SIZE" default:"30"`
	BatchPauseMS int `envconfig:"BATCH_PAUSE_MS" default:"500"`

	// Runs stuck in "running" longer than this get failed over by the cron job.
	StaleRunMinutes int    `envconfig:"STALE_RUN_MINUTES" default:"60"`
	CronSchedule    string `envconfig:"CRON_SCHEDULE" default:"*/15 * * * *"`
}

// DSN returns the data source name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
