package cli

import (
	"fmt"

	"github.com/roamly/roamly/internal/app"
	"github.com/roamly/roamly/internal/kvstore"
	"github.com/spf13/cobra"
)

func newStorageCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect the configured storage",
	}
	cmd.AddCommand(newStorageProbeCommand(opts))
	return cmd
}

func newStorageProbeCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that the storage accepts writes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			storage, closeStorage, err := app.OpenStorage(opts.Config)
			if err != nil {
				return err
			}
			defer closeStorage()

			if err := kvstore.Probe(cmd.Context(), storage); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s storage is available\n", opts.Config.Storage.Driver)
			return nil
		},
	}
}
