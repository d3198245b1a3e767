package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"myfood/internal/app"
	"myfood/internal/logger"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase every registry and its snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setupLogger()
		if err != nil {
			return fmt.Errorf("setup logger: %w", err)
		}
		defer func() { _ = cleanup() }()

		app.New(cfg.Storage, logger.L()).Reset(context.Background())
		fmt.Fprintf(cmd.OutOrStdout(), "registries in %q reset\n", cfg.Storage.Dir)
		return nil
	},
}
