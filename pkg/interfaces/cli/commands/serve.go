package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vsinha/bomkit/pkg/interfaces/httpapi"
)

// autoConfirmAnnotation marks commands whose caller has already confirmed,
// such as API requests.
const autoConfirmAnnotation = "bomkit/auto-confirm"

func newServeCommand(rt *runtime) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Serve the JSON API and run scheduled tasks",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{autoConfirmAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = rt.cfg.HTTP.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt.app.Start(ctx)
			router := httpapi.NewRouter(rt.app, rt.cfg.HTTP.Mode)
			return httpapi.Serve(ctx, addr, router, rt.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config http.addr)")
	return cmd
}
