package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/temcen/tastematch/internal/app"
	"github.com/temcen/tastematch/internal/config"
	"github.com/temcen/tastematch/internal/database"
	"github.com/temcen/tastematch/internal/services"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "matchctl",
	Short:         "Operates the weekly music-taste matching",
	Long:          `Runs matching rounds, compares users and inspects taste profiles against the configured stores.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/app.yaml)")
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// session holds the connections a command needs; close releases them.
type session struct {
	cfg      *config.Config
	logger   *logrus.Logger
	db       *database.Database
	services *services.Services
}

func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg)

	db, err := database.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}

	svc, err := services.New(cfg, logger, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing services: %w", err)
	}

	return &session{cfg: cfg, logger: logger, db: db, services: svc}, nil
}

func (r *session) close() {
	if err := r.services.Close(); err != nil {
		r.logger.WithError(err).Warn("Error closing match publisher")
	}
	if err := r.db.Close(); err != nil {
		r.logger.WithError(err).Warn("Error closing database connections")
	}
}
