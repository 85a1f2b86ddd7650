package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/hikelog/internal/model"
	"github.com/sakif/hikelog/internal/service"
)

var observationFieldFlags = []string{"title", "time", "comment"}

func newObservationCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "obs",
		Aliases: []string{"observation"},
		Short:   "Record and manage observations made on a hike",
		Args:    cobra.ArbitraryArgs,
		RunE:    groupUsage,
	}
	cmd.AddCommand(newObservationAddCommand(a))
	cmd.AddCommand(newObservationListCommand(a))
	cmd.AddCommand(newObservationGetCommand(a))
	cmd.AddCommand(newObservationUpdateCommand(a))
	cmd.AddCommand(newObservationDeleteCommand(a))
	return cmd
}

func newObservationAddCommand(a *app) *cobra.Command {
	var in service.ObservationInput
	cmd := &cobra.Command{
		Use:     "add HIKE_ID",
		Short:   "Attach an observation to a hike",
		Example: `  hikelog obs add 3 --title "Golden eagle" --comment "circling above the saddle"`,
		Args:    exactArgs("HIKE_ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			hikeID, err := parseID(args[0], "hike")
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("time") {
				in.Time = model.FormatObservationTime(a.now())
			}
			if err := a.store(); err != nil {
				return err
			}
			obs, err := a.observations.Create(cmd.Context(), hikeID, in)
			if err != nil {
				return err
			}
			return a.out.Success(obs)
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "what was observed")
	cmd.Flags().StringVar(&in.Time, "time", "", "when, as "+model.ObservationTimeLayout+" (default now)")
	cmd.Flags().StringVar(&in.Comment, "comment", "", "comment (optional)")
	return cmd
}

func newObservationListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list HIKE_ID",
		Short: "List the observations of a hike by time",
		Args:  exactArgs("HIKE_ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			hikeID, err := parseID(args[0], "hike")
			if err != nil {
				return err
			}
			if err := a.store(); err != nil {
				return err
			}
			observations, err := a.observations.List(cmd.Context(), hikeID)
			if err != nil {
				return err
			}
			return a.out.Success(observations)
		},
	}
}

func newObservationGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one observation",
		Args:  exactArgs("ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "observation")
			if err != nil {
				return err
			}
			if err := a.store(); err != nil {
				return err
			}
			obs, err := a.observations.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.Success(obs)
		},
	}
}

func newObservationUpdateCommand(a *app) *cobra.Command {
	var title, at, comment string
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change an observation; unset flags keep their value",
		Args:  exactArgs("ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "observation")
			if err != nil {
				return err
			}
			if !anyChanged(cmd.Flags(), observationFieldFlags) {
				return errNoFields
			}
			if err := a.store(); err != nil {
				return err
			}
			current, err := a.observations.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			in := service.ObservationInput{Title: current.Title, Time: current.Time, Comment: current.Comment}
			fs := cmd.Flags()
			if fs.Changed("title") {
				in.Title = title
			}
			if fs.Changed("time") {
				in.Time = at
			}
			if fs.Changed("comment") {
				in.Comment = comment
			}

			obs, err := a.observations.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.out.Success(obs)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "what was observed")
	cmd.Flags().StringVar(&at, "time", "", "when, as "+model.ObservationTimeLayout)
	cmd.Flags().StringVar(&comment, "comment", "", "comment")
	return cmd
}

func newObservationDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one observation",
		Args:  exactArgs("ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "observation")
			if err != nil {
				return err
			}
			if err := a.store(); err != nil {
				return err
			}
			if err := a.observations.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return a.out.Done(fmt.Sprintf("Deleted observation %d.", id), map[string]int64{"deleted": id})
		},
	}
}
