package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// The sweeps are meant to be run from cron or another scheduler.
func newSweepCmd() *cobra.Command {
	sweep := &cobra.Command{Use: "sweep", Short: "Run one queue sweep"}

	sweep.AddCommand(&cobra.Command{
		Use:   "timeouts",
		Short: "Cancel reservations past their grace period",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.queue.CheckReservationTimeouts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled %d reservation(s)\n", n)
			return nil
		},
	})

	sweep.AddCommand(&cobra.Command{
		Use:   "assign",
		Short: "Seat waiting tokens at free tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.queue.AutoAssignTables(cmd.Context())
			if err != nil {
				return err
			}
			if n > 0 {
				if err := a.analytics.UpdateAnalytics(cmd.Context()); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "assigned %d token(s)\n", n)
			return nil
		},
	})
	return sweep
}

func newAnalyticsCmd() *cobra.Command {
	analytics := &cobra.Command{Use: "analytics", Short: "Analytics maintenance"}
	analytics.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Recompute the current hour's analytics row",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			return a.analytics.UpdateAnalytics(cmd.Context())
		},
	})
	return analytics
}
