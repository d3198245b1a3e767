package main

import (
	"github.com/spf13/cobra"

	"myfood/internal/config"
	"myfood/internal/logger"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:           "myfood",
	Short:         "Food delivery registries over HTTP",
	Long:          `myfood keeps customers, business owners, menus and orders, persisted as YAML snapshots.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./"+config.DefaultFile+")")
	rootCmd.AddCommand(serveCmd, resetCmd)
}

// setupLogger installs the configured slog logger for the command.
func setupLogger() (func() error, error) {
	return logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
