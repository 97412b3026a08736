package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vsinha/bomkit/pkg/application/app"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/interfaces/cli/output"
)

func newBOMCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bom",
		Short: "Inspect bills of materials",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List BOMs with their items and costs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.do(cmd, func(_ context.Context, a *app.App) error {
				return rt.printer.BOMs(a.BOMs.Tree())
			})
		},
	}

	cost := &cobra.Command{
		Use:   "cost BOM",
		Short: "Show stored and current cost of a BOM by id or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.do(cmd, func(_ context.Context, a *app.App) error {
				bom, err := findBOM(a.State(), args[0])
				if err != nil {
					return err
				}
				current, err := a.BOMs.CurrentCost(bom.ID)
				if err != nil {
					return err
				}
				if rt.printer.Format() == output.JSON {
					return rt.printer.JSON(map[string]any{
						"id": bom.ID, "name": bom.Name, "storedCost": bom.TotalCost, "currentCost": current,
					})
				}
				rt.printer.Message("%s: stored %s, current %s", bom.Name,
					entities.FormatYen(bom.TotalCost), entities.FormatYen(current))
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:   "delete BOM",
		Short: "Delete a BOM by id or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.do(cmd, func(ctx context.Context, a *app.App) error {
				bom, err := findBOM(a.State(), args[0])
				if err != nil {
					return err
				}
				return a.BOMs.DeleteBOM(ctx, bom.ID)
			})
		},
	}

	cmd.AddCommand(list, cost, remove)
	return cmd
}
