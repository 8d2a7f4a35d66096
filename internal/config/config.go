// Package config loads arithflow's runtime configuration from the
// environment, optionally seeded from a .env file, per SPEC_FULL.md §4.8.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config holds the environment-derived settings shared by arithflowd and
// arithworker.
type Config struct {
	// BrokerURL selects the Broker binding: empty (together with
	// ResultBackendURL) uses the in-memory broker, "amqp://..." dials
	// RabbitMQ.
	BrokerURL string
	// ResultBackendURL selects the ResultBackend binding: empty (together
	// with BrokerURL) uses the in-memory backend, "redis://..." dials Redis.
	ResultBackendURL string
	// HTTPAddr is the address arithflowd's HTTP server listens on.
	HTTPAddr string
	// RequestDeadline bounds how long a single /api/calculate request may
	// wait for its workflow to finish (spec §7 default 3s).
	RequestDeadline time.Duration
	// LogLevel is parsed by internal/logging into a logrus.Level.
	LogLevel string
}

// Load reads configuration from the environment. If a .env file is present
// in the working directory it is loaded first via godotenv; actual
// environment variables always take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("failed to load .env file")
	}

	deadline, err := time.ParseDuration(getenv("REQUEST_DEADLINE", "3s"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing REQUEST_DEADLINE")
	}

	return &Config{
		BrokerURL:        os.Getenv("BROKER_URL"),
		ResultBackendURL: os.Getenv("RESULT_BACKEND_URL"),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		RequestDeadline:  deadline,
		LogLevel:         getenv("LOG_LEVEL", "info"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
