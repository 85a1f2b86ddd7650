package model

import "time"

// ObservationTimeLayout is the Go reference layout for observation times
// ("2025-03-10 14:30"). The store treats the value as opaque text and sorts
// it lexicographically, which this layout keeps chronological.
const ObservationTimeLayout = "2006-01-02 15:04"

// Observation is a timestamped field note attached to exactly one Hike.
//
// HikeID is a foreign key: the store refuses an Observation whose HikeID does
// not exist, and removes every Observation of a Hike when the Hike is deleted.
type Observation struct {
	ID      int64  `json:"id"      yaml:"id"`
	HikeID  int64  `json:"hikeId"  yaml:"hike_id"`
	Title   string `json:"title"   yaml:"title"`
	Time    string `json:"time"    yaml:"time"`
	Comment string `json:"comment" yaml:"comment"`
}

// FormatObservationTime formats t with ObservationTimeLayout.
func FormatObservationTime(t time.Time) string {
	return t.Format(ObservationTimeLayout)
}
