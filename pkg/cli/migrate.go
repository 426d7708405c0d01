package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|reset|status]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "reset", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			// migrations are driven explicitly here
			a.cfg.Database.AutoMigrate = false
			db, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			mgr, err := db.Migrator()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			switch args[0] {
			case "up":
				return mgr.Up(ctx)
			case "down":
				return mgr.Down(ctx)
			case "reset":
				return mgr.Reset(ctx)
			case "status":
				status, err := mgr.Status(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), status)
			}
			return nil
		},
	}
}
