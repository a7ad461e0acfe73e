package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/fetrias/techtrack/internal/api"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API for a browser front end",
		Long: `Serve the technology list over HTTP under /api until interrupted.

The listen address and allowed CORS origins come from the api section of
the config file (or TECHTRACK_API_ADDR / TECHTRACK_CORS_ORIGINS).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts.RootOptions, cmd, func(ctx context.Context, a *app) error {
				return runServe(ctx, opts, a)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions, a *app) error {
	addr := opts.Addr
	if addr == "" {
		addr = opts.Config.API.Addr
	}
	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := api.New(a.repo,
		api.WithClock(opts.Clock),
		api.WithLogger(opts.Logger),
		api.WithTraceIDs(opts.TraceIDs),
		api.WithCORSOrigins(opts.Config.API.CORSOrigins...),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return WrapExitError(ExitCommandError, "api server failed", err)
	}
	return nil
}
