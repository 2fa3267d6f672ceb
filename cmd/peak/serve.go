package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/server"
)

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shell over HTTP and WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			srv, err := server.New(cfg, log)
			if err != nil {
				log.Error("Failed to create server", zap.Error(err))
				return err
			}
			if err := srv.Run(cmd.Context()); err != nil {
				log.Error("Server error", zap.Error(err))
				return err
			}
			log.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.port, "port", "", "server port (overrides SERVER_PORT)")
	cmd.Flags().StringVar(&opts.host, "host", "", "listen address (overrides SERVER_HOST)")
	return cmd
}
