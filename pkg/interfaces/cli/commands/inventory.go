package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vsinha/bomkit/pkg/application/app"
	"github.com/vsinha/bomkit/pkg/application/services/importer"
	"github.com/vsinha/bomkit/pkg/application/services/inventory"
	"github.com/vsinha/bomkit/pkg/domain/entities"
)

func newInventoryCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Track stock levels",
	}

	var search, status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List inventory records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter *entities.StockStatus
			if status != "" {
				s, err := entities.ParseStockStatus(status)
				if err != nil {
					return err
				}
				filter = &s
			}
			return rt.do(cmd, func(_ context.Context, a *app.App) error {
				return rt.printer.Inventory(a.Inventory.Filter(search, filter))
			})
		},
	}
	list.Flags().StringVar(&search, "search", "", "match part number or name")
	list.Flags().StringVar(&status, "status", "", "normal, low or out")

	reconcile := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute stock statuses and store the ones that changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.do(cmd, func(ctx context.Context, a *app.App) error {
				written, err := a.Inventory.ReconcileStatuses(ctx)
				rt.printer.Message("🔄 %d statuses updated", written)
				return err
			})
		},
	}

	cmd.AddCommand(
		list,
		reconcile,
		newStockCommand(rt, "consume", "Remove stock for a part", func(a *app.App) stockFunc { return a.Inventory.Consume }),
		newStockCommand(rt, "replenish", "Add stock for a part", func(a *app.App) stockFunc { return a.Inventory.Replenish }),
		newImportCommand(rt, importer.Inventory, "Import inventory from a CSV file"),
		newExportCommand(rt, "inventory", "Export inventory as CSV or XLSX"),
	)
	return cmd
}

type stockFunc func(ctx context.Context, partID string, quantity int) (*entities.InventoryRecord, error)

func newStockCommand(rt *runtime, use, short string, pick func(a *app.App) stockFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " PART QUANTITY",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q: %w", args[1], entities.ErrValidation)
			}
			return rt.do(cmd, func(ctx context.Context, a *app.App) error {
				part, err := findPart(a.State(), args[0])
				if err != nil {
					return err
				}
				record, err := pick(a)(ctx, part.ID, quantity)
				if err != nil {
					return err
				}
				return rt.printer.Inventory([]inventory.Row{{Record: record, Part: part}})
			})
		},
	}
}
