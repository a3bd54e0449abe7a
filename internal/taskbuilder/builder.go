// Package taskbuilder turns normalized calendar events into tracker tasks.
package taskbuilder

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"mtgsync/internal/models"
)

// Tags attached to every generated task.
const (
	TagMeeting          = "meeting"
	TagRecurringMeeting = "recurring-meeting"
	TagInternalMeeting  = "internal-meeting"
	TagClientMeeting    = "client-meeting"
)

const rulePrefix = "RRULE:"

var statusPriority = map[string]int{
	models.StatusConfirmed: models.PriorityHigh,
	models.StatusTentative: models.PriorityNormal,
	models.StatusCancelled: models.PriorityLow,
}

// Builder assembles task payloads for one set of internal domains.
type Builder struct {
	internalDomains []string
}

// New creates a Builder. An attendee is internal when their email contains
// one of internalDomains.
func New(internalDomains []string) *Builder {
	return &Builder{internalDomains: internalDomains}
}

// Build creates the task payload for a meeting. Assignees are the attendees
// that resolve to a tracker user in assignees, in attendee order.
func (b *Builder) Build(ev *models.NormalizedEvent, assignees models.AssigneeMap) models.Task {
	start := wallClockMillis(ev.Start)
	return models.Task{
		Name:         ev.Title,
		Description:  b.Description(ev),
		TimeEstimate: ev.Duration.Milliseconds(),
		StartDate:    start,
		DueDate:      start,
		Assignees:    AssigneeIDs(ev.Attendees, assignees),
		Priority:     Priority(ev.Status),
		Tags:         b.Tags(ev),
	}
}

// Description renders the task body.
func (b *Builder) Description(ev *models.NormalizedEvent) string {
	var sb strings.Builder
	sb.WriteString(ev.Title + "\n\n")

	if ev.PlainDescription != "" {
		sb.WriteString("Agenda:\n" + ev.PlainDescription + "\n\n")
	}
	if ev.Location != "" {
		sb.WriteString("Location: " + ev.Location + "\n")
	}
	if ev.MeetingLink != "" {
		sb.WriteString("Meeting Link: " + ev.MeetingLink + "\n")
	}
	sb.WriteString("Attendees: " + b.RenderAttendees(ev.Attendees) + "\n")

	if ev.IsRecurring {
		switch {
		case len(ev.RecurrenceRules) > 0:
			rules := make([]string, len(ev.RecurrenceRules))
			for i, rule := range ev.RecurrenceRules {
				rules[i] = strings.TrimPrefix(rule, rulePrefix)
			}
			sb.WriteString("Recurrence: " + strings.Join(rules, ", ") + "\n")
		case ev.RecurringSeries != "":
			sb.WriteString(fmt.Sprintf("Part of a recurring series (ID: %s)\n", ev.RecurringSeries))
		default:
			sb.WriteString("Part of a recurring series\n")
		}
	}
	return sb.String()
}

// RenderAttendees lists internal attendees by capitalized local part, then
// external attendees by full email, each group sorted.
func (b *Builder) RenderAttendees(attendees []models.Attendee) string {
	var internal, external []string
	for _, a := range attendees {
		if b.IsInternal(a.Email) {
			local, _, _ := strings.Cut(a.Email, "@")
			internal = append(internal, capitalize(local))
		} else {
			external = append(external, a.Email)
		}
	}
	sort.Strings(internal)
	sort.Strings(external)
	return strings.Join(append(internal, external...), ", ")
}

// Tags returns the task tags for a meeting.
func (b *Builder) Tags(ev *models.NormalizedEvent) []string {
	tags := []string{TagMeeting}
	if ev.IsRecurring {
		tags = append(tags, TagRecurringMeeting)
	}
	return append(tags, b.Classify(ev.Attendees))
}

// Classify reports whether a meeting is internal or involves clients.
func (b *Builder) Classify(attendees []models.Attendee) string {
	for _, a := range attendees {
		if !b.IsInternal(a.Email) {
			return TagClientMeeting
		}
	}
	return TagInternalMeeting
}

// IsInternal reports whether the email belongs to an internal domain.
func (b *Builder) IsInternal(email string) bool {
	for _, domain := range b.internalDomains {
		if strings.Contains(email, domain) {
			return true
		}
	}
	return false
}

// Priority maps an event status to a task priority.
// Unknown statuses get the highest priority.
func Priority(status string) int {
	if p, ok := statusPriority[status]; ok {
		return p
	}
	return models.PriorityHigh
}

// AssigneeIDs resolves attendees to tracker user ids, skipping unresolved ones.
func AssigneeIDs(attendees []models.Attendee, assignees models.AssigneeMap) []int64 {
	ids := []int64{}
	for _, a := range attendees {
		if id := assignees[a.Email]; id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// wallClockMillis reads the event's local wall-clock time as if it were UTC.
func wallClockMillis(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC).UnixMilli()
}

func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
