package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/schedulestore-go/features/command/refreshcalendarstats"
)

func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Refresh the derived calendar stats",
	}

	cmd.AddCommand(newStatsRefreshCommand(rootOpts))
	cmd.AddCommand(newStatsReconcileCommand(rootOpts))

	return cmd
}

func newStatsRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "refresh [calendar...]",
		Short: "Recompute the stats of the given calendars, or of all with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return NewExitError(ExitCommandError, "either name calendars or pass --all")
			}

			return run(cmd.Context(), rootOpts, func(ctx context.Context, a *app) error {
				refresh, err := a.refreshHandler()
				if err != nil {
					return err
				}

				if all {
					report, err := refreshcalendarstats.NewReconciler(a.store, refresh).RefreshAll(ctx)
					if printErr := printReport(a.output(), report); printErr != nil {
						return printErr
					}

					if err != nil {
						return failed("refreshing calendars failed", err)
					}

					return nil
				}

				for _, name := range args {
					result, err := refresh.Handle(ctx, refreshcalendarstats.BuildCommand(name))
					if err != nil {
						return failed(fmt.Sprintf("refreshing %s failed", name), err)
					}

					if err = a.output().PrintResult("refreshed", result); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "refresh every live calendar")

	return cmd
}

func newStatsReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	var cronSpec string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Refresh all calendars on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, rootOpts, func(ctx context.Context, a *app) error {
				refresh, err := a.refreshHandler()
				if err != nil {
					return err
				}

				spec := cronSpec
				if spec == "" {
					spec = a.cfg.Reconcile.Cron
				}

				reconciler := refreshcalendarstats.NewReconciler(
					a.store,
					refresh,
					refreshcalendarstats.WithReconcileContextualLogger(a.ctxLogger),
				)

				if err = reconciler.Start(spec); err != nil {
					return WrapExitError(ExitCommandError, "starting the reconciler failed", err)
				}

				a.logger.Info("reconciler started", "cron", spec)
				<-ctx.Done()
				reconciler.Stop()
				a.logger.Info("reconciler stopped")

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", "", `cron spec, defaults to reconcile.cron of the config ("@every 10m")`)

	return cmd
}

func printReport(f OutputFormatter, report refreshcalendarstats.ReconcileReport) error {
	return f.Print(report, func(w io.Writer) {
		fmt.Fprintln(w, "CALENDARS\tUPDATED\tUNCHANGED\tFAILED")
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", report.Calendars, report.Updated, report.Unchanged, report.Failed)
	})
}
