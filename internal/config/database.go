package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type Database struct {
	URL          string `env:"DATABASE_URL"`
	Username     string `env:"POSTGRES_USER"`
	Password     string `env:"POSTGRES_PASSWORD"`
	PasswordFile string `env:"POSTGRES_PASSWORD_FILE"`
	Host         string `env:"POSTGRES_HOST"`
	Port         uint16 `env:"POSTGRES_PORT" envDefault:"5432"`
	DBName       string `env:"POSTGRES_DB"`
	SSLMode      string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

// Enabled reports whether a results database has been configured at all.
func (c Database) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

func (c Database) loadPassword() (string, error) {
	if c.Password != "" || c.PasswordFile == "" {
		return c.Password, nil
	}
	data, err := os.ReadFile(c.PasswordFile)
	if err != nil {
		return "", fmt.Errorf("unable to read from password file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ConnString returns DATABASE_URL when set, and a URL assembled from the
// POSTGRES_* variables otherwise.
func (c Database) ConnString() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	if c.Host == "" || c.Username == "" || c.DBName == "" {
		return "", fmt.Errorf("no DATABASE_URL set and POSTGRES_HOST, POSTGRES_USER, POSTGRES_DB incomplete")
	}
	password, err := c.loadPassword()
	if err != nil {
		return "", fmt.Errorf("unable to load password: %w", err)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Username),
		url.QueryEscape(password),
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	), nil
}
