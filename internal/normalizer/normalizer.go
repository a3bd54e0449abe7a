package normalizer

import (
	"log/slog"
	"strings"
	"time"

	"mtgsync/internal/htmltext"
	"mtgsync/internal/logging"
	"mtgsync/internal/models"
)

const (
	dateTimeLayout  = time.RFC3339
	dateOnlyLayout  = "2006-01-02"
	seriesMarker    = "recurring series"
	videoEntryPoint = "video"
	moreEntryPoint  = "more"
)

// Stats counts what happened to the raw events of one run.
type Stats struct {
	Received         int
	MissingUID       int
	MissingTitle     int
	MissingAttendees int
	AllDay           int
	MalformedDates   int
	NegativeDuration int
	Duplicates       int
}

// Skipped returns the number of events that were dropped.
func (s Stats) Skipped() int {
	return s.MissingUID + s.MissingTitle + s.MissingAttendees + s.AllDay + s.MalformedDates + s.NegativeDuration
}

// EventSet holds normalized events keyed by UID in first-seen order.
type EventSet struct {
	order []string
	byUID map[string]*models.NormalizedEvent
}

func newEventSet() *EventSet {
	return &EventSet{byUID: make(map[string]*models.NormalizedEvent)}
}

// put stores the event, replacing an earlier one with the same UID in place.
// It reports whether an earlier event was replaced.
func (s *EventSet) put(ev *models.NormalizedEvent) bool {
	_, exists := s.byUID[ev.UID]
	if !exists {
		s.order = append(s.order, ev.UID)
	}
	s.byUID[ev.UID] = ev
	return exists
}

// Len returns the number of distinct events.
func (s *EventSet) Len() int {
	return len(s.order)
}

// Get returns the event with the given UID.
func (s *EventSet) Get(uid string) (*models.NormalizedEvent, bool) {
	ev, ok := s.byUID[uid]
	return ev, ok
}

// Events returns the events in first-seen order.
func (s *EventSet) Events() []*models.NormalizedEvent {
	events := make([]*models.NormalizedEvent, 0, len(s.order))
	for _, uid := range s.order {
		events = append(events, s.byUID[uid])
	}
	return events
}

// Normalizer validates, deduplicates and enriches raw calendar events.
type Normalizer struct {
	logger *slog.Logger
}

// New creates a new Normalizer.
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize turns raw events into a set of normalized events keyed by UID.
// Events that share a UID collapse into one; the one supplied last wins.
// Invalid events are dropped and counted, never returned as errors.
func (n *Normalizer) Normalize(raw []models.RawEvent) (*EventSet, Stats) {
	n.logger.Debug("Processing events", "count", len(raw))

	set := newEventSet()
	stats := Stats{Received: len(raw)}

	for i := range raw {
		ev, ok := n.normalizeOne(&raw[i], &stats)
		if !ok {
			continue
		}
		if set.put(ev) {
			stats.Duplicates++
			n.logger.Debug("Duplicate event replaced", "title", ev.Title, "uid", ev.UID)
		}
	}

	n.logger.Debug("Processed unique events", "count", set.Len(), "skipped", stats.Skipped(), "duplicates", stats.Duplicates)
	return set, stats
}

func (n *Normalizer) normalizeOne(raw *models.RawEvent, stats *Stats) (*models.NormalizedEvent, bool) {
	if raw.Summary == "" {
		n.logger.Debug("No summary, skipping event")
		stats.MissingTitle++
		return nil, false
	}
	if len(raw.Attendees) == 0 {
		n.logger.Debug("No attendees, skipping event", "title", raw.Summary)
		stats.MissingAttendees++
		return nil, false
	}
	if raw.UID == "" {
		n.logger.Warn("No unique identifier, skipping event", "title", raw.Summary)
		stats.MissingUID++
		return nil, false
	}

	startValue, endValue := raw.Start.Value(), raw.End.Value()
	start, errStart := time.Parse(dateTimeLayout, startValue)
	end, errEnd := time.Parse(dateTimeLayout, endValue)
	if errStart != nil || errEnd != nil {
		n.logger.Debug("Failed date format", "title", raw.Summary, "start", startValue, "end", endValue)
		if isDateOnly(startValue) && isDateOnly(endValue) {
			n.logger.Debug("No time on event, skipping event", "title", raw.Summary)
			stats.AllDay++
			return nil, false
		}
		n.logger.Error("Malformed event dates, skipping event",
			"title", raw.Summary, "start", startValue, "end", endValue,
			logging.Err(firstErr(errStart, errEnd)))
		stats.MalformedDates++
		return nil, false
	}

	duration := end.Sub(start)
	if duration < 0 {
		n.logger.Warn("Event ends before it starts, skipping event", "title", raw.Summary, "start", startValue, "end", endValue)
		stats.NegativeDuration++
		return nil, false
	}

	signals := DetectRecurrence(raw)
	if signals.Any() {
		n.logger.Debug("Recurring meeting detected", "title", raw.Summary,
			"recurrence_field", signals.RuleList,
			"recurring_event_id", raw.RecurringEventID,
			"description_text", signals.DescriptionMarker)
	}

	status := raw.Status
	if status == "" {
		status = models.StatusConfirmed
	}

	return &models.NormalizedEvent{
		UID:              raw.UID,
		Title:            raw.Summary,
		Attendees:        raw.Attendees,
		Start:            start,
		End:              end,
		Duration:         duration,
		Description:      raw.Description,
		PlainDescription: htmltext.Convert(raw.Description),
		Location:         raw.Location,
		MeetingLink:      MeetingLink(raw.EntryPoints),
		Status:           status,
		IsRecurring:      signals.Any(),
		Signals:          signals,
		RecurrenceRules:  raw.Recurrence,
		RecurringSeries:  raw.RecurringEventID,
		OrganizerEmail:   raw.OrganizerEmail,
	}, true
}

// DetectRecurrence evaluates every recurrence indicator of a raw event.
func DetectRecurrence(raw *models.RawEvent) models.RecurrenceSignals {
	return models.RecurrenceSignals{
		RuleList:          raw.Recurrence != nil,
		SeriesID:          raw.RecurringEventID != "",
		DescriptionMarker: strings.Contains(strings.ToLower(raw.Description), seriesMarker),
	}
}

// MeetingLink returns the URI of the first video or "more" entry point.
func MeetingLink(entryPoints []models.EntryPoint) string {
	for _, ep := range entryPoints {
		if ep.Type == videoEntryPoint || ep.Type == moreEntryPoint {
			return ep.URI
		}
	}
	return ""
}

func isDateOnly(value string) bool {
	_, err := time.Parse(dateOnlyLayout, value)
	return err == nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
