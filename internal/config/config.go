// Package config loads agent configuration from the environment.
package config

import (
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hotspotd/internal/domain"
)

const (
	defaultDeviceID     = "default_device"
	defaultDevicePort   = "8728"
	defaultPollInterval = 30 * time.Second
	defaultDialTimeout  = 10 * time.Second
	defaultListenAddr   = ":5000"
)

// Config holds everything the agent needs to run.
type Config struct {
	DeviceAddress  string
	DeviceUsername string
	DevicePassword string
	DeviceTimeout  time.Duration

	ControlServerURL string
	ControlUsername  string
	ControlPassword  string

	ControlTokenURL     string
	ControlClientID     string
	ControlClientSecret string

	DeviceID     string
	PollInterval time.Duration
	ListenAddr   string

	DatabaseURL string
	LogLevel    string
}

// Load reads configuration from a .env file (if present) and the process
// environment. Missing required variables come back as a single ConfigError
// listing them all.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := &Config{
		DeviceAddress:  os.Getenv("DEVICE_ADDRESS"),
		DeviceUsername: os.Getenv("DEVICE_USERNAME"),
		DevicePassword: os.Getenv("DEVICE_PASSWORD"),
		DeviceTimeout:  envDuration("DEVICE_TIMEOUT", defaultDialTimeout),

		ControlServerURL: os.Getenv("CONTROL_SERVER_URL"),
		ControlUsername:  os.Getenv("CONTROL_USERNAME"),
		ControlPassword:  os.Getenv("CONTROL_PASSWORD"),

		ControlTokenURL:     os.Getenv("CONTROL_TOKEN_URL"),
		ControlClientID:     os.Getenv("CONTROL_CLIENT_ID"),
		ControlClientSecret: os.Getenv("CONTROL_CLIENT_SECRET"),

		DeviceID:     env("DEVICE_ID", defaultDeviceID),
		PollInterval: envDuration("POLL_INTERVAL", defaultPollInterval),
		ListenAddr:   env("LISTEN_ADDR", defaultListenAddr),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    env("LOG_LEVEL", "info"),
	}

	var missing []string
	for _, v := range []struct{ name, value string }{
		{"DEVICE_ADDRESS", cfg.DeviceAddress},
		{"DEVICE_USERNAME", cfg.DeviceUsername},
		{"DEVICE_PASSWORD", cfg.DevicePassword},
		{"CONTROL_SERVER_URL", cfg.ControlServerURL},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.ConfigError{Missing: missing}
	}

	if _, _, err := net.SplitHostPort(cfg.DeviceAddress); err != nil {
		cfg.DeviceAddress = net.JoinHostPort(cfg.DeviceAddress, defaultDevicePort)
	}

	return cfg, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envDuration accepts either a Go duration string ("45s") or a bare number
// of seconds ("30").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if !strings.ContainsAny(v, "nsmhu") {
		v += "s"
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
