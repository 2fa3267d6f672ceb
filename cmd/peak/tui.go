package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/session"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/server"
	"github.com/GriffinCanCode/PeakOS/backend/internal/tui"
)

func newTUICmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Drive the shell from this terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			// The screen belongs to the UI; logs go to a file.
			log, err := newLogger(cfg, opts.logFile)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			s, err := server.NewSession(cfg, log, nil)
			if err != nil {
				return err
			}
			loop := session.NewLoop(s, log)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			loopErr := make(chan error, 1)
			go func() { loopErr <- loop.Run(ctx) }()

			err = tui.Run(ctx, loop)
			cancel()
			if lerr := <-loopErr; lerr != nil && !errors.Is(lerr, context.Canceled) {
				log.Error("Session loop failed", zap.Error(lerr))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&opts.logFile, "log-file", filepath.Join(os.TempDir(), "peak.log"), "log destination while the UI owns the screen")
	return cmd
}
