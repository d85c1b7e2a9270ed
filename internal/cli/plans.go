package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/roamly/roamly/internal/app"
	"github.com/roamly/roamly/internal/event_bus"
	"github.com/roamly/roamly/internal/utils"
	"github.com/roamly/roamly/pkg/trip_plan"
	"github.com/spf13/cobra"
)

func newPlansCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List or delete saved trip plans",
	}
	cmd.AddCommand(
		newPlansListCommand(opts),
		newPlansDeleteCommand(opts),
	)
	return cmd
}

// openPlans opens the configured storage for saved plans only. Nothing else is loaded,
// so commands that only read plans leave the storage untouched.
func openPlans(opts *Options) (trip_plan.Service, func(), error) {
	storage, closeStorage, err := app.OpenStorage(opts.Config)
	if err != nil {
		return nil, nil, err
	}
	// the CLI never finalizes plans, so there is no trip source
	service := trip_plan.NewTripPlanService(trip_plan.NewRepository(storage), nil, event_bus.NewEventBus(), utils.SystemClock{})
	return service, closeStorage, nil
}

func newPlansListCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved trip plans, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			plans, closeStorage, err := openPlans(opts)
			if err != nil {
				return err
			}
			defer closeStorage()

			list, err := plans.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPLACES\tDATES\tCREATED")
			for _, plan := range list {
				dates := plan.StartDate
				if plan.EndDate != "" {
					dates += ".." + plan.EndDate
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", plan.Id, plan.Name, len(plan.Places), dates, plan.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func newPlansDeleteCommand(opts *Options) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete <planId>",
		Short: "Delete one saved trip plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planId, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid plan id %q: %w", args[0], err)
			}
			plans, closeStorage, err := openPlans(opts)
			if err != nil {
				return err
			}
			defer closeStorage()

			if err := plans.Delete(cmd.Context(), planId, confirm); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted trip plan %d\n", planId)
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the deletion")
	return cmd
}
