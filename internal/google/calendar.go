package google

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"mtgsync/internal/models"
)

const (
	primaryCalendar = "primary"
	maxResults      = 100
)

// serviceFactory builds a calendar service acting on behalf of a user.
type serviceFactory func(ctx context.Context, userEmail string) (*calendar.Service, error)

// CalendarClient fetches events from Google Calendar for users of a
// Workspace domain through a service account with domain-wide delegation.
type CalendarClient struct {
	logger     *slog.Logger
	newService serviceFactory
	now        func() time.Time
}

// NewClient creates a new Google Calendar client from a service account
// credentials file.
func NewClient(logger *slog.Logger, credentialsFile string) (*CalendarClient, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}
	// Parse once up front so a broken file fails the run before any user is queried.
	if _, err := google.JWTConfigFromJSON(b, calendar.CalendarReadonlyScope); err != nil {
		return nil, fmt.Errorf("unable to parse service account file: %w", err)
	}

	factory := func(ctx context.Context, userEmail string) (*calendar.Service, error) {
		conf, err := google.JWTConfigFromJSON(b, calendar.CalendarReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account file: %w", err)
		}
		conf.Subject = userEmail
		return calendar.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	}
	return newClient(logger, factory), nil
}

func newClient(logger *slog.Logger, factory serviceFactory) *CalendarClient {
	return &CalendarClient{
		logger:     logger,
		newService: factory,
		now:        time.Now,
	}
}

// GetUpcomingEvents fetches the user's primary calendar events starting
// within the next days days, expanded into single instances.
func (c *CalendarClient) GetUpcomingEvents(ctx context.Context, userEmail string, days int) ([]models.RawEvent, error) {
	c.logger.Debug("Fetching upcoming events", "user", userEmail, "days", days)

	service, err := c.newService(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service for %s: %w", userEmail, err)
	}

	now := c.now().UTC()
	tmin := now.Format(time.RFC3339)
	tmax := now.Add(time.Duration(days) * 24 * time.Hour).Format(time.RFC3339)

	events, err := service.Events.List(primaryCalendar).
		TimeMin(tmin).
		TimeMax(tmax).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events for %s: %w", userEmail, err)
	}

	c.logger.Debug("Fetched events from Google Calendar", "user", userEmail, "count", len(events.Items))
	return toRawEvents(events.Items), nil
}

// toRawEvents converts Google Calendar events to the internal RawEvent model.
func toRawEvents(items []*calendar.Event) []models.RawEvent {
	raw := make([]models.RawEvent, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		ev := models.RawEvent{
			UID:              item.ICalUID,
			Summary:          item.Summary,
			Description:      item.Description,
			Location:         item.Location,
			Status:           item.Status,
			Start:            toEventTime(item.Start),
			End:              toEventTime(item.End),
			Recurrence:       item.Recurrence,
			RecurringEventID: item.RecurringEventId,
		}
		if item.Organizer != nil {
			ev.OrganizerEmail = item.Organizer.Email
		}
		for _, a := range item.Attendees {
			if a != nil {
				ev.Attendees = append(ev.Attendees, models.Attendee{Email: a.Email})
			}
		}
		if item.ConferenceData != nil {
			for _, ep := range item.ConferenceData.EntryPoints {
				if ep != nil {
					ev.EntryPoints = append(ev.EntryPoints, models.EntryPoint{Type: ep.EntryPointType, URI: ep.Uri})
				}
			}
		}
		raw = append(raw, ev)
	}
	return raw
}

func toEventTime(t *calendar.EventDateTime) models.EventTime {
	if t == nil {
		return models.EventTime{}
	}
	return models.EventTime{DateTime: t.DateTime, Date: t.Date}
}
