package syncer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"mtgsync/internal/logging"
	"mtgsync/internal/models"
	"mtgsync/internal/normalizer"
	"mtgsync/internal/preview"
	"mtgsync/internal/taskbuilder"
)

// EventSource fetches upcoming calendar events for one user.
type EventSource interface {
	GetUpcomingEvents(ctx context.Context, userEmail string, days int) ([]models.RawEvent, error)
}

// Tracker is the task tracker that receives one task per meeting.
type Tracker interface {
	Members(ctx context.Context) ([]models.Member, error)
	CreateTask(ctx context.Context, task models.Task) (string, error)
}

// Options configure a Syncer.
type Options struct {
	UserEmails      []string
	InternalDomains []string
	SyncDays        int
	DryRun          bool
}

// Summary reports what one sync run did.
type Summary struct {
	RunID       string
	Users       int
	FailedUsers int
	Fetched     int
	Normalize   normalizer.Stats
	Processed   int
	Created     int // in a dry run, the tasks that would have been created
	Failed      int
	Recurring   int
	// Recurrence signals are counted independently; one meeting may add to several.
	ViaRuleList    int
	ViaSeriesID    int
	ViaDescription int
	DryRun         bool
	// Planned holds the tasks a dry run would have created.
	Planned []preview.Planned
}

// Syncer orchestrates the synchronization from the calendar to the tracker.
type Syncer struct {
	logger   *slog.Logger
	source   EventSource
	tracker  Tracker
	builder  *taskbuilder.Builder
	opts     Options
	newRunID func() string
}

// NewSyncer creates a new Syncer.
func NewSyncer(logger *slog.Logger, source EventSource, tracker Tracker, opts Options) *Syncer {
	return &Syncer{
		logger:   logger,
		source:   source,
		tracker:  tracker,
		builder:  taskbuilder.New(opts.InternalDomains),
		opts:     opts,
		newRunID: uuid.NewString,
	}
}

// Sync performs one full synchronization run. Failures of single users or
// tasks are logged and counted; only a cancelled context aborts the run.
func (s *Syncer) Sync(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: s.newRunID(), Users: len(s.opts.UserEmails), DryRun: s.opts.DryRun}
	logger := s.logger.With(logging.RunID(summary.RunID))
	logger.Info("Starting sync run.", "users", summary.Users, "days", s.opts.SyncDays, "dry_run", s.opts.DryRun)

	logger.Info("Fetching calendar events.")
	raw := s.fetchAllEvents(ctx, logger, summary)
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("sync run aborted: %w", err)
	}

	logger.Info("Processing events.", "count", len(raw))
	events, stats := normalizer.New(logger).Normalize(raw)
	summary.Normalize = stats

	logger.Info("Fetching tracker members.")
	assignees := s.assigneeMap(ctx, logger)
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("sync run aborted: %w", err)
	}

	logger.Info("Creating tasks.", "count", events.Len())
	for _, ev := range events.Events() {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("sync run aborted: %w", err)
		}
		s.syncEvent(ctx, logger, ev, assignees, summary)
	}

	logger.Info("Sync completed.",
		"created", summary.Created,
		"failed", summary.Failed,
		"processed", summary.Processed,
		"skipped", stats.Skipped(),
		"duplicates", stats.Duplicates)
	logger.Info("Recurring meetings detected.",
		"count", summary.Recurring,
		"via_recurrence_field", summary.ViaRuleList,
		"via_recurring_event_id", summary.ViaSeriesID,
		"via_description_text", summary.ViaDescription)
	return summary, nil
}

// AssigneeMap fetches the tracker members once and maps the configured
// users to their tracker ids. A failed fetch leaves every user unresolved.
func (s *Syncer) AssigneeMap(ctx context.Context) models.AssigneeMap {
	return s.assigneeMap(ctx, s.logger)
}

func (s *Syncer) assigneeMap(ctx context.Context, logger *slog.Logger) models.AssigneeMap {
	members, err := s.tracker.Members(ctx)
	if err != nil {
		logger.Error("Could not fetch tracker members, tasks will be unassigned", logging.Err(err))
	}
	assignees := models.NewAssigneeMap(s.opts.UserEmails, members)
	for email, id := range assignees {
		if id == 0 {
			logger.Warn("No tracker user for email", logging.Email(email))
		}
	}
	return assignees
}

// fetchAllEvents retrieves events for every configured user in order.
func (s *Syncer) fetchAllEvents(ctx context.Context, logger *slog.Logger, summary *Summary) []models.RawEvent {
	var all []models.RawEvent
	for _, email := range s.opts.UserEmails {
		events, err := s.source.GetUpcomingEvents(ctx, email, s.opts.SyncDays)
		if err != nil {
			logger.Error("Could not fetch calendar events for user", logging.Email(email), logging.Err(err))
			summary.FailedUsers++
			continue
		}
		all = append(all, events...)
	}
	summary.Fetched = len(all)
	logger.Debug("Total events retrieved", "count", len(all))
	return all
}

// syncEvent builds and submits the task for a single meeting.
func (s *Syncer) syncEvent(ctx context.Context, logger *slog.Logger, ev *models.NormalizedEvent, assignees models.AssigneeMap, summary *Summary) {
	summary.Processed++
	if ev.IsRecurring {
		summary.Recurring++
		if ev.Signals.RuleList {
			summary.ViaRuleList++
		}
		if ev.Signals.SeriesID {
			summary.ViaSeriesID++
		}
		if ev.Signals.DescriptionMarker {
			summary.ViaDescription++
		}
	}

	task := s.builder.Build(ev, assignees)
	logger.Debug("Creating task",
		"title", task.Name,
		"attendees", s.builder.RenderAttendees(ev.Attendees),
		"tags", task.Tags,
		"recurring", ev.IsRecurring,
		"recurrence_field", ev.Signals.RuleList,
		"recurring_event_id", ev.Signals.SeriesID,
		"description_text", ev.Signals.DescriptionMarker)

	if s.opts.DryRun {
		logger.Info("[DRY RUN] Would create task", "title", task.Name, "start", ev.Start, "assignees", task.Assignees)
		summary.Planned = append(summary.Planned, preview.Planned{Event: ev, Task: task})
		summary.Created++
		return
	}

	id, err := s.tracker.CreateTask(ctx, task)
	if err != nil {
		logger.Error("Failed to create task", "title", task.Name, logging.Err(err))
		summary.Failed++
		return
	}
	logger.Debug("Task created", "title", task.Name, "id", id)
	summary.Created++
}
