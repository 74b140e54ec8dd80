package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/mortgage-calculator/internal/cache"
	"github.com/iwvelando/mortgage-calculator/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator web form and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if address != "" {
				a.conf.Server.Address = address
			}
			if err := a.conf.Check(); err != nil {
				return err
			}
			for _, warning := range a.conf.ValidateConfiguration() {
				a.logger.Warn("Configuration warning: "+warning,
					zap.String("op", "main.serve"),
				)
			}

			store, err := cache.New(a.conf.Cache, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := server.NewHandler(a.logger, a.conf, store, version)
			return server.Run(ctx, a.logger, a.conf.Server.Address, handler)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address override, e.g. :8080")
	return cmd
}
