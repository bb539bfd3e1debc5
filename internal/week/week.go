// Package week owns the calendar-week identity rules and the shape of a
// week's time-tracking data. A week is identified by its Monday; Monday
// resolution is a pure function so the same date always maps to the same
// record key.
package week

import "time"

// DayNames lists the weekday names in payload order, Monday first.
var DayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Session is a single check-in/check-out pair within a day. Both fields
// are clock strings and may be empty when not yet recorded.
type Session struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

// DayEntry holds all sessions recorded for one weekday.
type DayEntry struct {
	Day      string    `json:"day"`
	Sessions []Session `json:"sessions"`
}

// Payload is a full week of entries, Monday through Sunday.
type Payload []DayEntry

// Monday returns the Monday of the week containing d, truncated to
// midnight UTC. Resolving the result again returns the same date.
func Monday(d time.Time) time.Time {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0 .. Sunday = 6
	return day.AddDate(0, 0, -offset)
}

// EmptyPayload returns a fresh default week: seven days, each with one
// blank session. A new slice is built on every call so callers can never
// mutate a shared template.
func EmptyPayload() Payload {
	p := make(Payload, 0, len(DayNames))
	for _, day := range DayNames {
		p = append(p, DayEntry{
			Day:      day,
			Sessions: []Session{{CheckIn: "", CheckOut: ""}},
		})
	}
	return p
}

// Validate checks that p has the canonical week shape: exactly seven
// entries named Monday through Sunday in order, each with at least one
// session. Session times are stored verbatim and not validated here.
func (p Payload) Validate() error {
	if len(p) != len(DayNames) {
		return &ShapeError{Reason: "week_data must contain exactly 7 day entries"}
	}
	for i, entry := range p {
		if entry.Day != DayNames[i] {
			return &ShapeError{Reason: "day " + entry.Day + " out of order, expected " + DayNames[i]}
		}
		if len(entry.Sessions) == 0 {
			return &ShapeError{Reason: entry.Day + " must have at least one session"}
		}
	}
	return nil
}

// ShapeError reports a payload that does not match the week shape.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "invalid week payload: " + e.Reason
}
