package taskbuilder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mtgsync/internal/models"
)

var internalDomains = []string{"mycompany.com"}

func attendees(emails ...string) []models.Attendee {
	out := make([]models.Attendee, len(emails))
	for i, e := range emails {
		out[i] = models.Attendee{Email: e}
	}
	return out
}

func budgetReview() *models.NormalizedEvent {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	return &models.NormalizedEvent{
		UID:              "budget@google.com",
		Title:            "Budget Review",
		Attendees:        attendees("alice@mycompany.com", "vendor@external.com"),
		Start:            start,
		End:              start.Add(time.Hour),
		Duration:         time.Hour,
		Description:      "<p>Discuss <b>Q3</b> budget</p>",
		PlainDescription: "Discuss Q3 budget",
		Status:           models.StatusConfirmed,
	}
}

func TestBuild_BudgetReview(t *testing.T) {
	ev := budgetReview()
	assignees := models.AssigneeMap{"alice@mycompany.com": 101, "bob@mycompany.com": 0}

	task := New(internalDomains).Build(ev, assignees)

	wantStart := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, "Budget Review", task.Name)
	assert.Equal(t, []string{"meeting", "client-meeting"}, task.Tags)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	assert.Contains(t, task.Description, "Agenda:\nDiscuss Q3 budget")
	assert.Equal(t, "Budget Review\n\nAgenda:\nDiscuss Q3 budget\n\nAttendees: Alice, vendor@external.com\n", task.Description)
	assert.Equal(t, int64(3600000), task.TimeEstimate)
	assert.Equal(t, wantStart, task.StartDate)
	assert.Equal(t, wantStart, task.DueDate)
	assert.Equal(t, []int64{101}, task.Assignees)
}

func TestBuild_RecurringWithRules(t *testing.T) {
	ev := budgetReview()
	ev.Attendees = attendees("alice@mycompany.com", "bob@mycompany.com")
	ev.IsRecurring = true
	ev.Signals = models.RecurrenceSignals{RuleList: true}
	ev.RecurrenceRules = []string{"RRULE:FREQ=WEEKLY"}

	task := New(internalDomains).Build(ev, nil)

	assert.Contains(t, task.Description, "Recurrence: FREQ=WEEKLY\n")
	assert.Equal(t, []string{"meeting", "recurring-meeting", "internal-meeting"}, task.Tags)
	assert.Empty(t, task.Assignees)
}

func TestDescription_RecurrenceLine(t *testing.T) {
	tests := []struct {
		name   string
		rules  []string
		series string
		want   string
	}{
		{name: "multiple rules", rules: []string{"RRULE:FREQ=WEEKLY;BYDAY=MO", "EXDATE:20250317T100000Z"}, want: "Recurrence: FREQ=WEEKLY;BYDAY=MO, EXDATE:20250317T100000Z\n"},
		{name: "rules win over series", rules: []string{"RRULE:FREQ=DAILY"}, series: "abc", want: "Recurrence: FREQ=DAILY\n"},
		{name: "series id", series: "abc123", want: "Part of a recurring series (ID: abc123)\n"},
		{name: "generic", want: "Part of a recurring series\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := budgetReview()
			ev.IsRecurring = true
			ev.RecurrenceRules = tt.rules
			ev.RecurringSeries = tt.series

			desc := New(internalDomains).Description(ev)
			assert.Contains(t, desc, "Attendees: Alice, vendor@external.com\n"+tt.want)
		})
	}
}

func TestDescription_OptionalSections(t *testing.T) {
	ev := budgetReview()
	ev.PlainDescription = ""
	ev.Location = "HQ, Room 4"
	ev.MeetingLink = "https://meet.example.com/xyz"

	desc := New(internalDomains).Description(ev)

	assert.Equal(t, "Budget Review\n\nLocation: HQ, Room 4\nMeeting Link: https://meet.example.com/xyz\nAttendees: Alice, vendor@external.com\n", desc)
	assert.NotContains(t, desc, "Agenda:")
	assert.NotContains(t, desc, "recurring")
}

func TestRenderAttendees(t *testing.T) {
	b := New(internalDomains)

	got := b.RenderAttendees(attendees("zed@ext.com", "anna@mycompany.com", "bob@mycompany.com"))
	assert.Equal(t, "Anna, Bob, zed@ext.com", got)

	got = b.RenderAttendees(attendees("b@ext.com", "CAROL.SMITH@mycompany.com", "a@ext.com"))
	assert.Equal(t, "Carol.smith, a@ext.com, b@ext.com", got)
}

func TestClassify(t *testing.T) {
	b := New([]string{"mycompany.com", "sister.io"})

	assert.Equal(t, TagInternalMeeting, b.Classify(attendees("a@mycompany.com", "b@sister.io")))
	assert.Equal(t, TagClientMeeting, b.Classify(attendees("a@mycompany.com", "c@client.org")))
	assert.Equal(t, TagClientMeeting, New(nil).Classify(attendees("a@mycompany.com")))
}

func TestPriority(t *testing.T) {
	assert.Equal(t, models.PriorityHigh, Priority(models.StatusConfirmed))
	assert.Equal(t, models.PriorityNormal, Priority(models.StatusTentative))
	assert.Equal(t, models.PriorityLow, Priority(models.StatusCancelled))
	assert.Equal(t, models.PriorityHigh, Priority("unknown"))
}

func TestAssigneeIDs_KeepsAttendeeOrder(t *testing.T) {
	assignees := models.AssigneeMap{
		"alice@mycompany.com": 1,
		"bob@mycompany.com":   2,
		"carol@mycompany.com": 0,
	}

	ids := AssigneeIDs(attendees("bob@mycompany.com", "carol@mycompany.com", "x@ext.com", "alice@mycompany.com"), assignees)

	assert.Equal(t, []int64{2, 1}, ids)
}

func TestBuild_StartUsesWallClock(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ev := budgetReview()
	ev.Start = time.Date(2025, 3, 10, 9, 30, 0, 0, loc)

	task := New(internalDomains).Build(ev, nil)

	assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC).UnixMilli(), task.StartDate)
}
