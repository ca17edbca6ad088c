package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tripgrid/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a sync server over the local store",
		Long: `Serve accepts replication rounds from other tripgrid stores on
ws://<listen>/sync. The served store lives in the resolved data directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen == "" {
				listen = a.v.GetString(cfgKeyListen)
			}
			store, _, err := a.openStore(false)
			if err != nil {
				return err
			}
			defer store.Detach()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := server.ListenAndServe(ctx, listen, server.New(store)); err != nil {
				return sysError("serve: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, "+defaultListen+")")
	return cmd
}
