package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/d60-Lab/pixelpals/config"
	"github.com/d60-Lab/pixelpals/pkg/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pixelpals",
	Short: "PixelPals pixel-art community gallery",
	Long: `PixelPals serves a community gallery of pixel-art images.

Entries are kept in memory and synchronised with a realtime store
(redis, sql or in-process memory). Built-in seed works are always shown,
even when the store is unreachable.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if err := logger.Init(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
