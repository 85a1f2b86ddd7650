package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sakif/hikelog/internal/apperror"
	"github.com/sakif/hikelog/internal/model"
)

// HikeInput is a hike form exactly as submitted: numbers arrive as text and
// are only trusted after Validate.
//
// WHY STRINGS?
// The presentation layer (HTTP form, CLI flags) hands us what the user typed.
// Parsing here, in one place, means "distance must be a number" is reported
// the same way no matter which adapter the value came through.
type HikeInput struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Difficulty  string `json:"difficulty"`
	Distance    string `json:"distance"`
	Duration    string `json:"duration"`
	Elevation   string `json:"elevation"`
	Parking     bool   `json:"parking"`
	GroupSize   string `json:"groupSize"`
	Terrain     string `json:"terrain"`
	Description string `json:"description"`
}

// Validate trims every field, checks required ones and parses the numbers.
// The first problem found is returned as an apperror.ValidationFailed naming
// the offending field; on success the returned Hike has no ID yet.
func (in HikeInput) Validate() (*model.Hike, error) {
	name := strings.TrimSpace(in.Name)
	location := strings.TrimSpace(in.Location)
	date := strings.TrimSpace(in.Date)

	required := []struct{ field, value string }{
		{"name", name},
		{"location", location},
		{"date", date},
		{"distance", strings.TrimSpace(in.Distance)},
		{"duration", strings.TrimSpace(in.Duration)},
		{"elevation", strings.TrimSpace(in.Elevation)},
		{"groupSize", strings.TrimSpace(in.GroupSize)},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, apperror.ValidationFailed(r.field, fmt.Sprintf("%s is required", r.field))
		}
	}

	difficulty := model.DifficultyEasy
	if d := strings.TrimSpace(in.Difficulty); d != "" {
		parsed, ok := model.ParseDifficulty(d)
		if !ok {
			return nil, apperror.ValidationFailed("difficulty",
				fmt.Sprintf("difficulty must be one of %s", difficultyList()))
		}
		difficulty = parsed
	}

	distance, err := parseNonNegativeFloat("distance", in.Distance)
	if err != nil {
		return nil, err
	}
	duration, err := parseNonNegativeFloat("duration", in.Duration)
	if err != nil {
		return nil, err
	}
	elevation, err := parseNonNegativeInt("elevation", in.Elevation)
	if err != nil {
		return nil, err
	}
	groupSize, err := parseNonNegativeInt("groupSize", in.GroupSize)
	if err != nil {
		return nil, err
	}

	return &model.Hike{
		Name:          name,
		Location:      location,
		Date:          date,
		Difficulty:    difficulty,
		DistanceKm:    distance,
		DurationHours: duration,
		ElevationM:    elevation,
		Parking:       in.Parking,
		GroupSize:     groupSize,
		Terrain:       strings.TrimSpace(in.Terrain),
		Description:   strings.TrimSpace(in.Description),
	}, nil
}

// ObservationInput is an observation form as submitted.
type ObservationInput struct {
	Title   string `json:"title"`
	Time    string `json:"time"`
	Comment string `json:"comment"`
}

// Validate trims the fields and requires a title and a time.
func (in ObservationInput) Validate() (*model.Observation, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "observation title is required")
	}
	at := strings.TrimSpace(in.Time)
	if at == "" {
		return nil, apperror.ValidationFailed("time", "observation time is required")
	}
	return &model.Observation{
		Title:   title,
		Time:    at,
		Comment: strings.TrimSpace(in.Comment),
	}, nil
}

func parseNonNegativeFloat(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperror.ValidationFailed(field, fmt.Sprintf("%s must be a number", field))
	}
	if v < 0 {
		return 0, apperror.ValidationFailed(field, fmt.Sprintf("%s must not be negative", field))
	}
	return v, nil
}

func parseNonNegativeInt(field, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperror.ValidationFailed(field, fmt.Sprintf("%s must be a whole number", field))
	}
	if v < 0 {
		return 0, apperror.ValidationFailed(field, fmt.Sprintf("%s must not be negative", field))
	}
	return v, nil
}

func difficultyList() string {
	names := make([]string, len(model.Difficulties))
	for i, d := range model.Difficulties {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}
