package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kaboocam/kaboocam/internal/logging"
	"github.com/kaboocam/kaboocam/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser pages",
		Long: `Serve the board's browser pages on $PORT (default 3000).

Clean paths such as /login and /board map to their html pages; any other
path is read from the static directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{Level: cfg.LogLevel, JSON: true})
			if err != nil {
				return err
			}
			defer logger.Sync()

			srv, err := server.New(cfg.Server, logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
}
