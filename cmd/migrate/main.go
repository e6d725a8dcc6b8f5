package main

import (
	"errors"
	"fmt"
	"os"

	"bihar-bazaar/internal/config"
	"bihar-bazaar/internal/database"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var databaseURL string

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the storefront session database schema",
	Long: `Apply or roll back the embedded SQL migrations.

The database URL defaults to the DB_* environment variables.`,
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return database.Migrate(connString(), newLogger())
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		m, err := database.NewMigrator(connString())
		if err != nil {
			return err
		}
		defer func() { _, _ = m.Close() }()

		if err := m.Steps(-1); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				logger.Info().Msg("no migrations to roll back")
				return nil
			}
			return fmt.Errorf("migration down failed: %w", err)
		}

		logger.Info().Msg("migration rolled back successfully")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		m, err := database.NewMigrator(connString())
		if err != nil {
			return err
		}
		defer func() { _, _ = m.Close() }()

		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info().Msg("no migrations applied yet")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}

		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("current migration version")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"),
		"postgres connection URL (overrides DB_* variables)")
	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

func connString() string {
	if databaseURL != "" {
		return databaseURL
	}
	cfg := config.LoadDatabaseConfig()
	return cfg.ConnectionString()
}

func newLogger() zerolog.Logger {
	return config.NewLogger(config.LoggerConfig{
		Level:  "info",
		Format: "console",
	}).With().Str("component", "migrate").Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
