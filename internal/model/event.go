package model

import "time"

// Event represents a single calendar event as supplied by the event source.
// Events are immutable inputs; the pipeline never modifies them.
type Event struct {
	Title  string    `json:"title"`   // Raw event title
	Start  time.Time `json:"start"`   // Event start
	End    time.Time `json:"end"`     // Event end
	AllDay bool      `json:"all_day"` // All-day events are never billed
}

// SameDay reports whether the event starts and ends on the same calendar day.
// Multi-day events are filtered before classification.
func (e Event) SameDay() bool {
	sy, sm, sd := e.Start.Date()
	ey, em, ed := e.End.Date()
	return sy == ey && sm == em && sd == ed
}

// Billable reports whether the event is eligible for classification:
// timed (not all-day), same-day, and non-inverted.
func (e Event) Billable() bool {
	return !e.AllDay && e.SameDay() && !e.End.Before(e.Start)
}
