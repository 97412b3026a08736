package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vsinha/bomkit/pkg/application/app"
	"github.com/vsinha/bomkit/pkg/application/services/quotes"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/interfaces/cli/output"
)

func newQuoteCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "quote",
		Aliases: []string{"quotes"},
		Short:   "Work with customer quotes",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.do(cmd, func(_ context.Context, a *app.App) error {
				return rt.printer.Quotes(a.Quotes.List())
			})
		},
	}

	status := &cobra.Command{
		Use:   "status QUOTE STATUS",
		Short: "Set a quote's status: draft, sent, accepted or rejected",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := entities.ParseQuoteStatus(args[1])
			if err != nil {
				return err
			}
			return rt.do(cmd, func(ctx context.Context, a *app.App) error {
				quote, err := findQuote(a.State(), args[0])
				if err != nil {
					return err
				}
				quote, err = a.Quotes.UpdateStatus(ctx, quote.ID, next)
				if err != nil {
					return err
				}
				return rt.printer.Quotes([]*entities.Quote{quote})
			})
		},
	}

	shortages := &cobra.Command{
		Use:   "shortages QUOTE",
		Short: "Check whether stock covers a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.do(cmd, func(_ context.Context, a *app.App) error {
				quote, err := findQuote(a.State(), args[0])
				if err != nil {
					return err
				}
				found := a.Quotes.CheckShortages(quote)
				if rt.printer.Format() == output.JSON {
					return rt.printer.JSON(found)
				}
				if len(found) == 0 {
					rt.printer.Message("✅ %s: stock is sufficient", quote.QuoteNumber)
					return nil
				}
				rt.printer.Message("%s", quotes.ShortageMessage(quote, found))
				return nil
			})
		},
	}

	var svgFile string
	schedule := &cobra.Command{
		Use:   "schedule QUOTE",
		Short: "Show the production schedule for a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.do(cmd, func(_ context.Context, a *app.App) error {
				quote, err := findQuote(a.State(), args[0])
				if err != nil {
					return err
				}
				view, err := a.Schedules.View(quote.ID)
				if err != nil {
					return err
				}
				if svgFile != "" {
					svg := output.NewGanttChart(view).GenerateSVG(view, a.Now())
					if err := writeFile(svgFile, func(w io.Writer) error {
						_, err := io.WriteString(w, svg)
						return err
					}); err != nil {
						return err
					}
				}
				return rt.printer.Schedule(view)
			})
		},
	}
	schedule.Flags().StringVar(&svgFile, "svg", "", "also write a Gantt chart to this SVG file")

	var dir string
	productionOrder := &cobra.Command{
		Use:   "production-order QUOTE",
		Short: "Write the production instruction sheet for a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.do(cmd, func(_ context.Context, a *app.App) error {
				quote, err := findQuote(a.State(), args[0])
				if err != nil {
					return err
				}
				doc, err := a.Schedules.ProductionOrderDocument(quote.ID)
				if err != nil {
					return err
				}
				if dir == "-" {
					_, err := io.WriteString(cmd.OutOrStdout(), doc.Content)
					return err
				}
				path := filepath.Join(dir, doc.FileName)
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
					return err
				}
				rt.printer.Message("💾 %s", path)
				return nil
			})
		},
	}
	productionOrder.Flags().StringVar(&dir, "dir", ".", "output directory, or - for stdout")

	remove := &cobra.Command{
		Use:   "delete QUOTE",
		Short: "Delete a quote by id or number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.do(cmd, func(ctx context.Context, a *app.App) error {
				quote, err := findQuote(a.State(), args[0])
				if err != nil {
					return err
				}
				return a.Quotes.DeleteQuote(ctx, quote.ID)
			})
		},
	}

	cmd.AddCommand(list, status, shortages, schedule, productionOrder, remove)
	return cmd
}
