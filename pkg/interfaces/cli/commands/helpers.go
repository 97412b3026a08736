package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vsinha/bomkit/pkg/application/app"
	"github.com/vsinha/bomkit/pkg/application/services/importer"
	"github.com/vsinha/bomkit/pkg/application/state"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/infrastructure/export"
	"github.com/vsinha/bomkit/pkg/infrastructure/repositories/csv"
)

func findPart(st *state.State, ref string) (*entities.Part, error) {
	if p, ok := st.Part(ref); ok {
		return p, nil
	}
	if p, ok := st.PartByNumber(ref); ok {
		return p, nil
	}
	return nil, fmt.Errorf("part %s: %w", ref, entities.ErrNotFound)
}

func findBOM(st *state.State, ref string) (*entities.BOM, error) {
	if b, ok := st.BOM(ref); ok {
		return b, nil
	}
	for _, b := range st.BOMs {
		if b.Name == ref {
			return b, nil
		}
	}
	return nil, fmt.Errorf("bom %s: %w", ref, entities.ErrNotFound)
}

func findQuote(st *state.State, ref string) (*entities.Quote, error) {
	if q, ok := st.Quote(ref); ok {
		return q, nil
	}
	for _, q := range st.Quotes {
		if q.QuoteNumber == ref {
			return q, nil
		}
	}
	return nil, fmt.Errorf("quote %s: %w", ref, entities.ErrNotFound)
}

func findOrder(st *state.State, ref string) (*entities.Order, error) {
	if o, ok := st.Order(ref); ok {
		return o, nil
	}
	for _, o := range st.Orders {
		if o.OrderNumber == ref {
			return o, nil
		}
	}
	return nil, fmt.Errorf("order %s: %w", ref, entities.ErrNotFound)
}

// importFlags configure the CSV reader of an import command.
type importFlags struct {
	delimiter string
	encoding  string
	noHeader  bool
}

func (f *importFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "comma", "field delimiter: comma, tab, semicolon or a single character")
	cmd.Flags().StringVar(&f.encoding, "encoding", "utf-8", "file encoding: utf-8 or shift_jis")
	cmd.Flags().BoolVar(&f.noHeader, "no-header", false, "the first row is data, not a header")
}

func (f *importFlags) loader() (*csv.Loader, error) {
	delimiter, err := csv.ParseDelimiter(f.delimiter)
	if err != nil {
		return nil, err
	}
	encoding, err := csv.ParseEncoding(f.encoding)
	if err != nil {
		return nil, err
	}
	return csv.NewLoader(csv.Options{Delimiter: delimiter, HasHeader: !f.noHeader, Encoding: encoding}), nil
}

func newImportCommand(rt *runtime, kind importer.Kind, short string) *cobra.Command {
	var flags importFlags
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := flags.loader()
			if err != nil {
				return err
			}
			rows, err := loader.LoadFile(args[0])
			if err != nil {
				return err
			}
			return rt.do(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Importer.Import(ctx, kind, rows)
				if err != nil {
					return err
				}
				return rt.printer.ImportResult(result)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newExportCommand(rt *runtime, kind, short string) *cobra.Command {
	var format, dest string
	cmd := &cobra.Command{
		Use:   "export",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			table, err := rt.app.ExportTable(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if dest == "-" {
				return table.Write(cmd.OutOrStdout(), f)
			}
			path := filepath.Join(dest, table.FileName(f, rt.app.Now()))
			if err := writeFile(path, func(w io.Writer) error { return table.Write(w, f) }); err != nil {
				return err
			}
			rt.printer.Message("💾 %s (%d rows)", path, len(table.Rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "as", "csv", "file format: csv or xlsx")
	cmd.Flags().StringVar(&dest, "dir", ".", "output directory, or - for stdout")
	return cmd
}

func writeFile(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
