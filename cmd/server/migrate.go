package main

import (
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the relational schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.InitPostgres(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			defer db.CloseDB()

			if err := repositories.Migrate(db.Postgres); err != nil {
				return err
			}
			a.log.Info("migrations completed", zap.Int("models", len(repositories.Models())))
			return nil
		},
	}
}

func newRepairCountersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repair-counters",
		Short: "Recompute every denormalized counter from the rows it summarises",
		Long: `Recompute user, post, story and chat counters by scanning the tables they
are derived from. Normal operation never needs this: counters change in the
same transaction as the rows they count. Use it after manual data fixes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.InitPostgres(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			defer db.CloseDB()

			updated, err := repositories.NewStore(db.Postgres).RepairCounters(cmd.Context())
			if err != nil {
				return err
			}
			for name, n := range updated {
				a.log.Info("counter repaired", zap.String("counter", name), zap.Int64("rows", n))
			}
			return nil
		},
	}
}
