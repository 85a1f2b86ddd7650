package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every hike and observation",
		Args:  exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := ask(cmd, yes, "", "Delete ALL hikes and observations? This cannot be undone.")
			if err != nil {
				return err
			}
			if !ok {
				return a.out.Done("Cancelled.", map[string]bool{"cancelled": true})
			}

			if err := a.store(); err != nil {
				return err
			}
			n, err := a.hikes.Reset(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.Done(fmt.Sprintf("Deleted %d hike(s).", n), map[string]int64{"deleted": n})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "reset without asking for confirmation")
	return cmd
}
