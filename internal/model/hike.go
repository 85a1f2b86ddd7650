// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. There is no inheritance:
// a Hike and an Observation are plain values linked by an ID field.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Difficulty is the fixed set of difficulty grades a hike can have.
//
// WHY A NAMED STRING TYPE?
// A `type Difficulty string` is still stored as TEXT in SQLite and still
// marshals to a plain JSON string, but the compiler stops us from passing an
// arbitrary string (say, a location) where a grade is expected.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "Easy"
	DifficultyModerate Difficulty = "Moderate"
	DifficultyHard     Difficulty = "Hard"
	DifficultyExpert   Difficulty = "Expert"
)

// Difficulties lists every grade in display order (easiest first).
var Difficulties = []Difficulty{
	DifficultyEasy,
	DifficultyModerate,
	DifficultyHard,
	DifficultyExpert,
}

// ParseDifficulty matches s against the known grades, ignoring case and
// surrounding whitespace. The canonical spelling is returned.
func ParseDifficulty(s string) (Difficulty, bool) {
	s = strings.TrimSpace(s)
	for _, d := range Difficulties {
		if strings.EqualFold(s, string(d)) {
			return d, true
		}
	}
	return "", false
}

// Hike is a single logged hiking trip.
//
// ID is generated by the store on insert and never changes afterwards.
// Terrain and Description are optional: an empty string means "not set"
// and is persisted as NULL.
type Hike struct {
	ID            int64      `json:"id"            yaml:"id"`
	Name          string     `json:"name"          yaml:"name"`
	Location      string     `json:"location"      yaml:"location"`
	Date          string     `json:"date"          yaml:"date"` // application format, e.g. "03/10/2025"
	Difficulty    Difficulty `json:"difficulty"    yaml:"difficulty"`
	DistanceKm    float64    `json:"distanceKm"    yaml:"distance_km"`
	DurationHours float64    `json:"durationHours" yaml:"duration_hours"`
	ElevationM    int        `json:"elevationM"    yaml:"elevation_m"`
	Parking       bool       `json:"parking"       yaml:"parking"`
	GroupSize     int        `json:"groupSize"     yaml:"group_size"`
	Terrain       string     `json:"terrain"       yaml:"terrain"`
	Description   string     `json:"description"   yaml:"description"`
}

// Summary renders the multi-line review text shown before a hike is saved,
// so the user can confirm exactly what will be written.
func (h Hike) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", h.Name)
	fmt.Fprintf(&b, "Location: %s\n", h.Location)
	fmt.Fprintf(&b, "Date: %s\n", h.Date)
	fmt.Fprintf(&b, "Distance: %s km\n", formatFloat(h.DistanceKm))
	fmt.Fprintf(&b, "Duration: %s h\n", formatFloat(h.DurationHours))
	fmt.Fprintf(&b, "Elevation: %d m\n", h.ElevationM)
	fmt.Fprintf(&b, "Difficulty: %s\n", h.Difficulty)
	fmt.Fprintf(&b, "Parking: %s\n", YesNo(h.Parking))
	fmt.Fprintf(&b, "Group size: %d\n", h.GroupSize)
	fmt.Fprintf(&b, "Terrain: %s", h.Terrain)
	return b.String()
}

// YesNo renders a boolean the way the hike screens display it.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// formatFloat prints 8.5 as "8.5" and 3 as "3.0", never in exponent form.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
