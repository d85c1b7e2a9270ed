package cli

import (
	"context"

	"github.com/roamly/roamly/internal/app"
	"github.com/roamly/roamly/internal/config"
	"github.com/roamly/roamly/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the frontend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), opts)
		},
	}
}

func serve(ctx context.Context, opts *Options) error {
	application, err := app.NewApplication(ctx, opts.Config)
	if err != nil {
		return err
	}
	return application.Run(ctx)
}

func newMigrateCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations for the configured SQL storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.Config
			switch cfg.Storage.Driver {
			case config.PostgresDriver:
				return database.Migrate(cfg.Database)
			case config.SQLiteDriver:
				db, err := database.OpenSQLite(cfg.Storage.SQLitePath)
				if err != nil {
					return err
				}
				return db.Close()
			default:
				log.Infof("storage driver %q has no schema, nothing to migrate", cfg.Storage.Driver)
				return nil
			}
		},
	}
}
