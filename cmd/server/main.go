// Command lab-records runs the lab record-keeping HTTP service.
//
// USAGE:
//
//	lab-records                     # same as "serve"
//	lab-records serve --config lab-records.toml
//	lab-records migrate up
//	lab-records migrate status
//
// Settings come from the optional TOML file, then PORT, DB_PATH, LOG_LEVEL
// and BCRYPT_COST from the environment.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/lab-records/internal/auth"
	"github.com/sakif/lab-records/internal/config"
	sqliteRepo "github.com/sakif/lab-records/internal/repository/sqlite"
	"github.com/sakif/lab-records/internal/server"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config and builds the logger every command uses.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("loading config: %w", err)
	}

	// Validate already checked the level.
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return cfg, logger, nil
}

// openDatabase creates the database directory if needed and opens the file.
// migrate selects sqlite.New (schema brought up to date) over sqlite.Open.
func openDatabase(path string, migrate bool) (*sqliteRepo.DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}
	if migrate {
		return sqliteRepo.New(path)
	}
	return sqliteRepo.Open(path)
}

var rootCmd = &cobra.Command{
	Use:          "lab-records",
	Short:        "Lab mouse and log entry records service",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg.Database.Path, true)
	if err != nil {
		logger.Error("failed to open database",
			slog.String("path", cfg.Database.Path),
			slog.String("error", err.Error()),
		)
		return err
	}
	defer db.Close()

	passwords := auth.NewPasswordService(cfg.Auth.BcryptCost)
	if passwords.Cost() != cfg.Auth.BcryptCost {
		logger.Warn("bcrypt cost out of range, using default",
			slog.Int("configured", cfg.Auth.BcryptCost),
			slog.Int("cost", passwords.Cost()),
		)
	}

	logger.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("database", cfg.Database.Path),
		slog.Bool("require_lab_protocol", cfg.Mice.RequireLabProtocol),
	)

	srv := server.New(server.Config{
		Port:               cfg.Server.Port,
		RequireLabProtocol: cfg.Mice.RequireLabProtocol,
	}, db, passwords, logger)

	// Start blocks until Ctrl+C or SIGTERM.
	if err := srv.Start(context.Background()); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openDatabase(cfg.Database.Path, false)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.MigrateUp(); err != nil {
			return fmt.Errorf("migrating %s: %w", cfg.Database.Path, err)
		}

		status, err := db.MigrationStatus()
		if err != nil {
			return err
		}
		logger.Info("database migrated",
			slog.String("path", cfg.Database.Path),
			slog.Uint64("version", uint64(status.Version)),
		)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openDatabase(cfg.Database.Path, false)
		if err != nil {
			return err
		}
		defer db.Close()

		status, err := db.MigrationStatus()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Database: %s\n", cfg.Database.Path)
		fmt.Fprintf(out, "Version:  %d (latest %d)\n", status.Version, status.Latest)
		if status.Dirty {
			fmt.Fprintln(out, "State:    dirty (a migration failed part-way)")
		} else if status.Pending() {
			fmt.Fprintln(out, "State:    pending migrations")
		} else {
			fmt.Fprintln(out, "State:    up to date")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}
