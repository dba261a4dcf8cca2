package cli

import (
	"github.com/spf13/cobra"

	"github.com/aristath/deadline/internal/api"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the executor over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			s, err := a.newSession(ctx, "serve")
			if err != nil {
				return err
			}
			defer s.close(ctx)

			return api.ListenAndServe(ctx, addr, api.NewServer(s.exec, a.logger), a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
