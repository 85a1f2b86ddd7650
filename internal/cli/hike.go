package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sakif/hikelog/internal/apperror"
	"github.com/sakif/hikelog/internal/filter"
	"github.com/sakif/hikelog/internal/model"
	"github.com/sakif/hikelog/internal/service"
)

func newHikeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hike",
		Short: "Add, list, search, update and delete hikes",
		Args:  cobra.ArbitraryArgs,
		RunE:  groupUsage,
	}
	cmd.AddCommand(newHikeAddCommand(a))
	cmd.AddCommand(newHikeListCommand(a))
	cmd.AddCommand(newHikeGetCommand(a))
	cmd.AddCommand(newHikeUpdateCommand(a))
	cmd.AddCommand(newHikeDeleteCommand(a))
	cmd.AddCommand(newHikeSearchCommand(a))
	return cmd
}

// hikeFlags are the form fields of add and update. Numbers stay text so the
// service reports "distance must be a number" exactly as it does for HTTP.
type hikeFlags struct {
	name, location, date, difficulty string
	distance, duration, elevation    string
	groupSize, terrain, description  string
	parking                          bool
}

var hikeFieldFlags = []string{
	"name", "location", "date", "difficulty", "distance", "duration",
	"elevation", "parking", "group-size", "terrain", "description",
}

func (f *hikeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "hike name")
	fs.StringVar(&f.location, "location", "", "where the hike took place")
	fs.StringVar(&f.date, "date", "", "date of the hike, e.g. 03/10/2025")
	fs.StringVar(&f.difficulty, "difficulty", "", "Easy, Moderate, Hard or Expert (default Easy)")
	fs.StringVar(&f.distance, "distance", "", "distance in km")
	fs.StringVar(&f.duration, "duration", "", "duration in hours")
	fs.StringVar(&f.elevation, "elevation", "", "elevation gain in metres")
	fs.BoolVar(&f.parking, "parking", false, "parking available")
	fs.StringVar(&f.groupSize, "group-size", "", "number of people")
	fs.StringVar(&f.terrain, "terrain", "", "terrain (optional)")
	fs.StringVar(&f.description, "description", "", "description (optional)")
}

// apply copies every flag the user set onto in. Unset flags keep in's value,
// which for add is empty and for update is the stored hike.
func (f *hikeFlags) apply(fs *pflag.FlagSet, in service.HikeInput) service.HikeInput {
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("name", &in.Name, f.name)
	set("location", &in.Location, f.location)
	set("date", &in.Date, f.date)
	set("difficulty", &in.Difficulty, f.difficulty)
	set("distance", &in.Distance, f.distance)
	set("duration", &in.Duration, f.duration)
	set("elevation", &in.Elevation, f.elevation)
	set("group-size", &in.GroupSize, f.groupSize)
	set("terrain", &in.Terrain, f.terrain)
	set("description", &in.Description, f.description)
	if fs.Changed("parking") {
		in.Parking = f.parking
	}
	return in
}

// inputFromHike turns a stored hike back into form values.
func inputFromHike(h *model.Hike) service.HikeInput {
	return service.HikeInput{
		Name:        h.Name,
		Location:    h.Location,
		Date:        h.Date,
		Difficulty:  string(h.Difficulty),
		Distance:    strconv.FormatFloat(h.DistanceKm, 'f', -1, 64),
		Duration:    strconv.FormatFloat(h.DurationHours, 'f', -1, 64),
		Elevation:   strconv.Itoa(h.ElevationM),
		Parking:     h.Parking,
		GroupSize:   strconv.Itoa(h.GroupSize),
		Terrain:     h.Terrain,
		Description: h.Description,
	}
}

func newHikeAddCommand(a *app) *cobra.Command {
	var (
		flags hikeFlags
		yes   bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a new hike",
		Example: `  hikelog hike add --name "Ridge Walk" --location "Hill Park" --date 03/10/2025 \
    --distance 8.5 --duration 3 --elevation 400 --group-size 4 --difficulty Moderate --parking`,
		Args: exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := flags.apply(cmd.Flags(), service.HikeInput{})

			// Validate before prompting so the summary shows exactly what
			// will be stored.
			preview, err := in.Validate()
			if err != nil {
				return err
			}
			ok, err := ask(cmd, yes, preview.Summary(), "Save this hike?")
			if err != nil {
				return err
			}
			if !ok {
				return a.out.Done("Cancelled.", map[string]bool{"cancelled": true})
			}

			if err := a.store(); err != nil {
				return err
			}
			hike, err := a.hikes.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.out.Success(hike)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "save without asking for confirmation")
	return cmd
}

func newHikeListCommand(a *app) *cobra.Command {
	var (
		name     string
		criteria filter.Criteria
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hikes by date, optionally filtered",
		Long: `List hikes ordered by date.

--name keeps hikes whose name contains the text (case-insensitive).
--location, --max-distance and --date combine: location is a case-insensitive
substring, max-distance an upper bound in km (ignored if not a number) and
date an exact match. --name cannot be combined with the other filters.`,
		Args: exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			byName := cmd.Flags().Changed("name")
			if byName && !criteria.IsZero() {
				return NewExitError(ExitCommandError, "--name cannot be combined with --location, --max-distance or --date")
			}
			if err := a.store(); err != nil {
				return err
			}

			var (
				hikes []model.Hike
				err   error
			)
			switch {
			case byName:
				hikes, err = a.hikes.Search(cmd.Context(), name)
			case !criteria.IsZero():
				hikes, err = a.hikes.AdvancedSearch(cmd.Context(), criteria)
			default:
				hikes, err = a.hikes.List(cmd.Context())
			}
			if err != nil {
				return err
			}
			return a.out.Success(hikes)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "filter by name")
	cmd.Flags().StringVar(&criteria.Location, "location", "", "filter by location")
	cmd.Flags().StringVar(&criteria.MaxDistance, "max-distance", "", "maximum distance in km")
	cmd.Flags().StringVar(&criteria.Date, "date", "", "exact date")
	return cmd
}

func newHikeSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Find hikes whose name contains QUERY",
		Args:  exactArgs("QUERY"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store(); err != nil {
				return err
			}
			hikes, err := a.hikes.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.out.Success(hikes)
		},
	}
}

func newHikeGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one hike",
		Args:  exactArgs("ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "hike")
			if err != nil {
				return err
			}
			if err := a.store(); err != nil {
				return err
			}
			hike, err := a.hikes.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.Success(hike)
		},
	}
}

func newHikeUpdateCommand(a *app) *cobra.Command {
	var (
		flags hikeFlags
		yes   bool
	)
	cmd := &cobra.Command{
		Use:     "update ID",
		Short:   "Change fields of a hike; unset flags keep their value",
		Example: `  hikelog hike update 3 --distance 9.2 --difficulty Hard`,
		Args:    exactArgs("ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "hike")
			if err != nil {
				return err
			}
			if !anyChanged(cmd.Flags(), hikeFieldFlags) {
				return errNoFields
			}
			if err := a.store(); err != nil {
				return err
			}
			current, err := a.hikes.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			in := flags.apply(cmd.Flags(), inputFromHike(current))
			preview, err := in.Validate()
			if err != nil {
				return err
			}
			ok, err := ask(cmd, yes, preview.Summary(), "Save changes?")
			if err != nil {
				return err
			}
			if !ok {
				return a.out.Done("Cancelled.", map[string]bool{"cancelled": true})
			}

			hike, err := a.hikes.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.out.Success(hike)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "save without asking for confirmation")
	return cmd
}

func newHikeDeleteCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a hike and all of its observations",
		Args:  exactArgs("ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "hike")
			if err != nil {
				return err
			}
			if err := a.store(); err != nil {
				return err
			}
			hike, err := a.hikes.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			question := fmt.Sprintf("Delete hike %q and all of its observations?", hike.Name)
			ok, err := ask(cmd, yes, "", question)
			if err != nil {
				return err
			}
			if !ok {
				return a.out.Done("Cancelled.", map[string]bool{"cancelled": true})
			}

			if err := a.hikes.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return a.out.Done(fmt.Sprintf("Deleted hike %d.", id), map[string]int64{"deleted": id})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking for confirmation")
	return cmd
}

// errNoFields is returned by update commands given nothing to change.
var errNoFields = apperror.ValidationFailed("flags", "nothing to update: set at least one field flag")

func anyChanged(fs *pflag.FlagSet, names []string) bool {
	for _, name := range names {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}
