package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crew-booking-backend/config"
	"crew-booking-backend/internal/db"
	"crew-booking-backend/internal/logger"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

var log = logger.New("crewd")

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "crewd",
		Short:         "Field crew booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default $CONFIG_PATH or ./config/config.yaml)")

	load := func() (*config.Config, error) {
		path := resolveConfigPath(configPath)
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
		}
		if err := logger.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
			return nil, err
		}
		log.Infof("configuration loaded successfully from %s", path)
		return cfg, nil
	}

	root.AddCommand(newServeCmd(load))
	root.AddCommand(newMigrateCmd(load))
	root.AddCommand(newVersionCmd())
	return root
}

func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "./config/config.yaml" // Default path for local development
}

func newMigrateCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			gormDB, err := db.Open(&cfg.Database)
			if err != nil {
				return err
			}
			if err := db.Migrate(gormDB, &cfg.Database); err != nil {
				return err
			}
			log.Infof("database schema is up to date")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "crewd %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
