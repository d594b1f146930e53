package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibbank/fraudml/internal/infrastructure/postgres"
	pkgpostgres "github.com/bibbank/fraudml/pkg/postgres"
)

var errDatabaseNotConfigured = errors.New("DATABASE_URL is not set")

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Apply or roll back the evaluation history schema",
		Long: `Apply (up, the default) or roll back (down) the evaluation_runs schema in the
database named by DATABASE_URL.

Examples:
  fraudctl migrate
  fraudctl migrate down`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(pkgpostgres.Up), string(pkgpostgres.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := pkgpostgres.Up
			if len(args) == 1 {
				direction = pkgpostgres.Direction(args[0])
			}
			if a.cfg.DatabaseURL == "" {
				return errDatabaseNotConfigured
			}

			if err := pkgpostgres.RunMigrations(a.cfg.DatabaseURL, postgres.Migrations, postgres.MigrationsDir, direction); err != nil {
				return err
			}

			a.logger.Info("migrations applied", "direction", direction)
			fmt.Fprintf(a.out(cmd), "Migrations %s complete\n", direction)
			return nil
		},
	}
}
