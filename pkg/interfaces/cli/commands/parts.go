package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vsinha/bomkit/pkg/application/app"
	"github.com/vsinha/bomkit/pkg/application/services/importer"
	"github.com/vsinha/bomkit/pkg/domain/entities"
)

func newPartsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parts",
		Short: "Manage the part master",
	}

	var search, category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List parts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter *entities.Category
			if category != "" {
				c, err := entities.ParseCategory(category)
				if err != nil {
					return err
				}
				filter = &c
			}
			return rt.do(cmd, func(_ context.Context, a *app.App) error {
				return rt.printer.Parts(a.Parts.Filter(search, filter))
			})
		},
	}
	list.Flags().StringVar(&search, "search", "", "match part number or name")
	list.Flags().StringVar(&category, "category", "", "electronic, mechanical or material")

	remove := &cobra.Command{
		Use:   "delete PART",
		Short: "Delete a part by id or part number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.do(cmd, func(ctx context.Context, a *app.App) error {
				part, err := findPart(a.State(), args[0])
				if err != nil {
					return err
				}
				return a.Parts.DeletePart(ctx, part.ID)
			})
		},
	}

	cmd.AddCommand(
		list,
		remove,
		newImportCommand(rt, importer.Parts, "Import parts from a CSV file"),
		newExportCommand(rt, "parts", "Export parts as CSV or XLSX"),
	)
	return cmd
}
