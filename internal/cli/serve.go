package cli

import (
	"github.com/spf13/cobra"

	"github.com/sakif/hikelog/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API until interrupted",
		Long: `Serve the hike log as a JSON API on localhost.

With auth.secret set, every /api request needs "Authorization: Bearer <token>";
create one with "hikelog token".`,
		Args: exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store(); err != nil {
				return err
			}
			srv, err := server.New(a.cfg, a.db, a.logger)
			if err != nil {
				return err
			}
			return srv.Start()
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on (overrides server.port)")
	return cmd
}
