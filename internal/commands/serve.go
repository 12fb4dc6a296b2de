package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carson-networks/ledger-server/api"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			a.logger.Info("ledger-server starting")

			extractor, err := newExtractor(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}

			rest := api.Rest{
				Logger:    a.logger,
				Port:      a.cfg.HTTPPort,
				DB:        a.storage,
				Service:   a.service,
				Extractor: extractor,
			}
			return rest.Serve(ctx)
		},
	}
}
