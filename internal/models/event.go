package models

import "time"

// Event statuses reported by the calendar provider.
const (
	StatusConfirmed = "confirmed"
	StatusTentative = "tentative"
	StatusCancelled = "cancelled"
)

// RawEvent is a calendar event as fetched from the provider.
// This is an internal representation, independent of any specific calendar provider.
// Empty strings and nil slices mean the provider omitted the field.
type RawEvent struct {
	UID              string     // Globally unique calendar identifier (iCalUID)
	Summary          string     // Title of the event
	Description      string     // Rich-text description
	Location         string     // Free-form location
	Status           string     // confirmed, tentative or cancelled
	OrganizerEmail   string     // Organizer's email
	Attendees        []Attendee // Attendee list; nil when the provider sent none
	Start            EventTime  // Start of the event
	End              EventTime  // End of the event
	Recurrence       []string   // Recurrence rules (RRULE, EXDATE, ...)
	RecurringEventID string     // Parent series for recurring instances
	EntryPoints      []EntryPoint
}

// EventTime holds either a precise timestamp or a date-only value.
type EventTime struct {
	DateTime string // RFC 3339 timestamp
	Date     string // yyyy-mm-dd for all-day events
}

// Value returns the precise timestamp when present, otherwise the date.
func (t EventTime) Value() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// Attendee is a single event attendee.
type Attendee struct {
	Email string
}

// EntryPoint is a conferencing entry point such as a video link.
type EntryPoint struct {
	Type string // video, phone, sip or more
	URI  string
}

// RecurrenceSignals records which indicators classified an event as recurring.
type RecurrenceSignals struct {
	RuleList          bool // the recurrence rule list was present
	SeriesID          bool // the recurring series identifier was present
	DescriptionMarker bool // the description mentions "recurring series"
}

// Any reports whether at least one signal fired.
func (s RecurrenceSignals) Any() bool {
	return s.RuleList || s.SeriesID || s.DescriptionMarker
}

// NormalizedEvent is a validated, enriched event ready for task creation.
// It is built once per run and never modified afterwards.
type NormalizedEvent struct {
	UID              string
	Title            string
	Attendees        []Attendee
	Start            time.Time
	End              time.Time
	Duration         time.Duration
	Description      string // raw rich-text description
	PlainDescription string // Description converted to plain text
	Location         string
	MeetingLink      string
	Status           string
	IsRecurring      bool
	Signals          RecurrenceSignals
	RecurrenceRules  []string
	RecurringSeries  string
	OrganizerEmail   string
}
