package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/database"
	"github.com/vancomm/minesweeper-engine/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if !cfg.Database.Enabled() {
		logger.Fatal("set DATABASE_URL or POSTGRES_* to run migrations")
	}
	url, err := cfg.Database.ConnString()
	if err != nil {
		logger.WithError(err).Fatal("invalid database config")
	}

	version, dirty, err := database.Migrate(url, database.Migrations)
	if err != nil {
		logger.WithError(err).Fatal("migration failed")
	}
	logger.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("migration successful")
}
