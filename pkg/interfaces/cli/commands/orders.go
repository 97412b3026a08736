package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/vsinha/bomkit/pkg/application/app"
	"github.com/vsinha/bomkit/pkg/domain/entities"
)

func newOrdersCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Plan and track purchase orders",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List purchase orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.do(cmd, func(_ context.Context, a *app.App) error {
				return rt.printer.Orders(a.Orders.List())
			})
		},
	}

	plan := &cobra.Command{
		Use:   "plan",
		Short: "Propose reorders for low and out-of-stock parts, grouped by supplier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.do(cmd, func(_ context.Context, a *app.App) error {
				p, err := a.Orders.Plan()
				if err != nil && !errors.Is(err, entities.ErrNothingToOrder) {
					return err
				}
				return rt.printer.OrderPlan(p)
			})
		},
	}

	confirm := &cobra.Command{
		Use:   "confirm",
		Short: "Create the proposed orders after confirmation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.do(cmd, func(ctx context.Context, a *app.App) error {
				created, err := a.Orders.CreateFromAlerts(ctx)
				if errors.Is(err, entities.ErrNothingToOrder) {
					rt.printer.Message("nothing to order")
					return nil
				}
				if len(created) > 0 {
					if perr := rt.printer.Orders(created); perr != nil && err == nil {
						err = perr
					}
				}
				return err
			})
		},
	}

	status := &cobra.Command{
		Use:   "status ORDER STATUS",
		Short: "Set an order's status: pending, ordered, delivered or cancelled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := entities.ParseOrderStatus(args[1])
			if err != nil {
				return err
			}
			return rt.do(cmd, func(ctx context.Context, a *app.App) error {
				order, err := findOrder(a.State(), args[0])
				if err != nil {
					return err
				}
				order, err = a.Orders.UpdateStatus(ctx, order.ID, next)
				if err != nil {
					return err
				}
				return rt.printer.Orders([]*entities.Order{order})
			})
		},
	}

	remove := &cobra.Command{
		Use:   "delete ORDER",
		Short: "Delete an order by id or number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.do(cmd, func(ctx context.Context, a *app.App) error {
				order, err := findOrder(a.State(), args[0])
				if err != nil {
					return err
				}
				return a.Orders.DeleteOrder(ctx, order.ID)
			})
		},
	}

	cmd.AddCommand(list, plan, confirm, status, remove,
		newExportCommand(rt, "orders", "Export orders as CSV or XLSX"))
	return cmd
}
