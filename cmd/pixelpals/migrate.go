package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d60-Lab/pixelpals/internal/repository"
	"github.com/d60-Lab/pixelpals/pkg/database"
	"github.com/d60-Lab/pixelpals/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the tables used by the sql realtime store",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.InitDB(cfg)
		if err != nil {
			return err
		}
		if err := repository.InitSchema(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("schema ready", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}
