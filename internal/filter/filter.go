// Package filter narrows an in-memory hike listing.
//
// Nothing here touches the store: callers list once, then filter the cached
// slice as often as the user changes the search inputs. Every function
// returns a new slice and keeps the input order.
package filter

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sakif/hikelog/internal/model"
)

// Criteria is the advanced search form. Each field is the raw text the user
// typed; an empty (or whitespace-only) field switches that axis off.
type Criteria struct {
	Location    string `json:"location"`
	MaxDistance string `json:"maxDistance"`
	Date        string `json:"date"`
}

// IsZero reports whether no axis of c is active.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Location) == "" &&
		strings.TrimSpace(c.MaxDistance) == "" &&
		strings.TrimSpace(c.Date) == ""
}

// maxDistance parses the distance threshold. ok is false when the field is
// empty or not a number; either way the distance axis is disabled.
//
// TODO: surface an unparseable threshold as a validation error instead of
// silently matching every distance.
func (c Criteria) maxDistance() (limit float64, ok bool) {
	s := strings.TrimSpace(c.MaxDistance)
	if s == "" {
		return 0, false
	}
	limit, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return limit, true
}

// ByName keeps the hikes whose name contains query, ignoring case.
// A blank query keeps everything.
func ByName(hikes []model.Hike, query string) []model.Hike {
	fold := newFolder()
	q := fold(strings.TrimSpace(query))

	out := make([]model.Hike, 0, len(hikes))
	for _, h := range hikes {
		if q == "" || strings.Contains(fold(h.Name), q) {
			out = append(out, h)
		}
	}
	return out
}

// Apply keeps the hikes matching every active axis of c:
//
//   - Location: case-insensitive substring of Hike.Location
//   - MaxDistance: Hike.DistanceKm <= threshold (fail-open on bad input)
//   - Date: exact string equality with Hike.Date, no normalization
func Apply(hikes []model.Hike, c Criteria) []model.Hike {
	fold := newFolder()
	loc := fold(strings.TrimSpace(c.Location))
	date := strings.TrimSpace(c.Date)
	limit, useDistance := c.maxDistance()

	out := make([]model.Hike, 0, len(hikes))
	for _, h := range hikes {
		if loc != "" && !strings.Contains(fold(h.Location), loc) {
			continue
		}
		if useDistance && h.DistanceKm > limit {
			continue
		}
		if date != "" && h.Date != date {
			continue
		}
		out = append(out, h)
	}
	return out
}

// newFolder returns a case-folding function. A cases.Caser keeps state and
// must not be shared between goroutines, so each call gets its own.
func newFolder() func(string) string {
	caser := cases.Fold()
	return caser.String
}
