package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vsinha/bomkit/pkg/application/app"
	"github.com/vsinha/bomkit/pkg/infrastructure/repositories/seed"
)

func newSyncCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reload every collection from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.app.Sync(cmd.Context()); err != nil {
				return err
			}
			st := rt.app.State()
			rt.printer.Message("🔄 %d parts, %d BOMs, %d inventory records, %d quotes, %d orders",
				len(st.Parts), len(st.BOMs), len(st.Inventory), len(st.Quotes), len(st.Orders))
			return nil
		},
	}
}

func newDashboardCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show counts, this month's order total and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.do(cmd, func(_ context.Context, a *app.App) error {
				return rt.printer.Dashboard(a.Dashboard.Summary())
			})
		},
	}
}

func newSeedCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Load parts, inventory, BOMs and quotes from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}
			result, err := rt.app.Seed(cmd.Context(), fixture)
			if err != nil {
				return err
			}
			return rt.printer.Seed(result)
		},
	}
}
