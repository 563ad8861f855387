package cli

import (
	"github.com/spf13/cobra"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/database/postgres"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := getCLIContext(cmd)
			if err != nil {
				return err
			}
			return postgres.RunMigrations(cc.cfg.Database, cc.logger)
		},
	}
}
