package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vsinha/bomkit/pkg/application/app"
	"github.com/vsinha/bomkit/pkg/config"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	"github.com/vsinha/bomkit/pkg/interfaces/cli/output"
	"github.com/vsinha/bomkit/pkg/logging"
	"go.uber.org/zap"
)

// Exit codes returned by Execute.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInvalid      = 2
	ExitNotFound     = 3
	ExitPrecondition = 4
)

// Options configures the command tree. Nil fields use the process defaults.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// NewApp builds the application once configuration and logging are ready.
	NewApp func(ctx context.Context, opts app.Options) (*app.App, error)
}

// runtime carries the state shared by every command of one invocation.
type runtime struct {
	opts       Options
	configFile string
	format     string
	yes        bool

	cfg     *config.Config
	logger  *zap.Logger
	app     *app.App
	printer *output.Printer
}

// NewRootCommand builds the bomkit command tree.
func NewRootCommand(opts Options) *cobra.Command {
	root, _ := newRootCommand(opts)
	return root
}

func newRootCommand(opts Options) (*cobra.Command, *runtime) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.NewApp == nil {
		opts.NewApp = app.New
	}
	rt := &runtime{opts: opts}

	root := &cobra.Command{
		Use:   "bomkit",
		Short: "BOM, inventory, quoting and purchase-order management",
		Long: `bomkit keeps a part master, bills of materials, inventory levels, customer
quotes and purchase orders in a document store. It rolls up BOM costs, derives
stock status, proposes reorders grouped by supplier and generates production
schedules from a quote's BOM and delivery date.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rt.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return rt.teardown()
		},
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	flags := root.PersistentFlags()
	flags.StringVar(&rt.configFile, "config", "", "config file (default: bomkit.yaml in ., ./config or $HOME/.bomkit)")
	flags.StringVarP(&rt.format, "format", "o", "text", "output format: text or json")
	flags.BoolVarP(&rt.yes, "yes", "y", false, "answer yes to every confirmation")

	root.AddCommand(
		newServeCommand(rt),
		newSyncCommand(rt),
		newDashboardCommand(rt),
		newPartsCommand(rt),
		newInventoryCommand(rt),
		newBOMCommand(rt),
		newQuoteCommand(rt),
		newOrdersCommand(rt),
		newSeedCommand(rt),
	)
	return root, rt
}

func (rt *runtime) setup(cmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(rt.format)
	if err != nil {
		return err
	}
	rt.printer = output.NewPrinter(rt.opts.Out, format)

	if rt.cfg, err = config.Load(rt.configFile); err != nil {
		return err
	}
	if rt.logger, err = logging.New(rt.cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	var confirmer notify.Confirmer = notify.NewPromptConfirmer(rt.opts.In, rt.opts.Err)
	if rt.yes || cmd.Annotations[autoConfirmAnnotation] == "true" {
		confirmer = notify.AutoConfirm(true)
	}
	rt.app, err = rt.opts.NewApp(cmd.Context(), app.Options{
		Config:    rt.cfg,
		Logger:    rt.logger,
		Notifier:  notify.NewWriterNotifier(rt.opts.Err),
		Confirmer: confirmer,
	})
	return err
}

func (rt *runtime) teardown() error {
	var err error
	if rt.app != nil {
		err = rt.app.Close()
		rt.app = nil
	}
	if rt.logger != nil {
		_ = rt.logger.Sync()
		rt.logger = nil
	}
	return err
}

// do runs fn under the application lock.
func (rt *runtime) do(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	return rt.app.Do(cmd.Context(), func(ctx context.Context) error {
		return fn(ctx, rt.app)
	})
}

// Execute runs the command tree with args and maps the error to an exit code.
func Execute(ctx context.Context, opts Options, args []string) int {
	root, rt := newRootCommand(opts)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	if terr := rt.teardown(); err == nil {
		err = terr
	}
	if err == nil {
		return ExitOK
	}

	errOut := root.ErrOrStderr()
	switch {
	case errors.Is(err, entities.ErrCancelled):
		fmt.Fprintln(errOut, "cancelled")
		return ExitOK
	case errors.Is(err, entities.ErrValidation):
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return ExitInvalid
	case errors.Is(err, entities.ErrNotFound):
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return ExitNotFound
	case errors.Is(err, entities.ErrPrecondition):
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return ExitPrecondition
	default:
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return ExitFailure
	}
}
