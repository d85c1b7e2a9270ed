// Package cli defines the roamly command line: the HTTP server plus a few
// maintenance commands working on the same storage.
package cli

import (
	"context"

	"github.com/roamly/roamly/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	defaultConfigPath = "./config/application.yaml"
	defaultEnvFile    = ".env"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	EnvFile    string
	LogLevel   string

	// Config is loaded before any subcommand runs.
	Config config.Application
}

// Execute builds the root command and runs it with args.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCommand(&Options{})
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func NewRootCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "roamly",
		Short:         "Roamly travel planner backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.LogLevel != "" {
				level, err := log.ParseLevel(opts.LogLevel)
				if err != nil {
					return err
				}
				log.SetLevel(level)
			}
			if err := config.LoadEnvFile(opts.EnvFile); err != nil {
				return err
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.Config = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath, "Path to the YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", defaultEnvFile, "Optional .env file with ROAMLY_* variables")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newStorageCommand(opts),
		newPlansCommand(opts),
	)
	return cmd
}
