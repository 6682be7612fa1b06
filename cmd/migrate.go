package cmd

import (
	"notesvc/pkg/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the notes table if missing and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			logger.Sugar.Infof("Notes schema ready (%s)", a.cfg.DB.Driver)
			return nil
		},
	}
}
