package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"todo/internal/config"
)

// app carries state shared by every subcommand once the root has run.
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "Todo is a task and category API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultConfigFileName, "path to TOML config file")
	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "path to sqlite database file (overrides config)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newServeCmd(a),
		newSeedCmd(a),
		newConfigCmd(a),
	)
	return cmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(os.Stderr, level, cfg.LogFormat)
	slog.SetDefault(a.logger)
	return nil
}
