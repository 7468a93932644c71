// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package commands implements the yamdb command line.
package commands

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"yamdb/internal/config"
	"yamdb/internal/database"
)

// cfg is loaded once by the root command before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "yamdb",
	Short: "YaMDb - reviews of films, books and music",
	Long: `YaMDb serves a catalog of titles grouped by category and genre, with
user reviews, comments and a mean rating per title.

Configuration is read from config.yaml (or CONFIG_PATH) and environment
variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		setupLogger(cfg)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, createSuperuserCmd)
}

// setupLogger installs the default logger: text in development, JSON
// otherwise.
func setupLogger(c *config.Config) {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	var handler slog.Handler
	if c.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openDB connects to PostgreSQL and applies pending migrations.
func openDB() (*sql.DB, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
