// Package config resolves connection settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Environment variables read by FromEnv. Flags on the command line
// override these.
const (
	EnvHost     = "PGSCOPE_HOST"
	EnvPort     = "PGSCOPE_PORT"
	EnvUser     = "PGSCOPE_USER"
	EnvPassword = "PGSCOPE_PASSWORD"
	EnvDatabase = "PGSCOPE_DATABASE"
)

// Config holds the PostgreSQL connection parameters.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// Default returns the conventional local-development connection.
func Default() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Database: "postgres",
	}
}

// FromEnv returns Default overlaid with any PGSCOPE_* variables that are
// set. A malformed port is an error rather than a silent fallback.
func FromEnv() (*Config, error) {
	cfg := Default()

	if v := os.Getenv(EnvHost); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("parse %s: invalid port %q", EnvPort, v)
		}
		cfg.Port = port
	}
	if v := os.Getenv(EnvUser); v != "" {
		cfg.User = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		cfg.Database = v
	}

	return cfg, nil
}

// DSN renders the config as a postgres:// URL. The password is escaped
// by url.UserPassword, so credentials with reserved characters survive.
func (c *Config) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	return u.String()
}
