// Package preview renders the meetings a dry run would turn into tasks as
// an iCalendar file, so the result can be reviewed in any calendar app.
package preview

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-ical"

	"mtgsync/internal/models"
)

const productID = "-//mtgsync//EN"

// Planned pairs a normalized event with the task built from it.
type Planned struct {
	Event *models.NormalizedEvent
	Task  models.Task
}

// Encode writes the planned meetings to w as a VCALENDAR.
func Encode(w io.Writer, planned []Planned, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, p := range planned {
		cal.Children = append(cal.Children, toICal(p, now))
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode preview to iCal format: %w", err)
	}
	return nil
}

// WriteFile writes the planned meetings to an .ics file at path.
func WriteFile(path string, planned []Planned, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create preview file: %w", err)
	}
	if err := Encode(f, planned, now); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// toICal converts a planned task to an ical.Component (VEvent).
func toICal(p Planned, now time.Time) *ical.Component {
	ev := p.Event
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, ev.UID)
	ve.Props.SetText(ical.PropSummary, p.Task.Name)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	// Offsets parsed from RFC 3339 have no zone name, so write UTC.
	ve.Props.SetDateTime(ical.PropDateTimeStart, ev.Start.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, ev.End.UTC())
	ve.Props.SetText(ical.PropDescription, p.Task.Description)
	ve.Props.SetText(ical.PropStatus, icalStatus(ev.Status))

	if ev.Location != "" {
		ve.Props.SetText(ical.PropLocation, ev.Location)
	}
	if ev.OrganizerEmail != "" {
		ve.Props.Add(calAddress(ical.PropOrganizer, ev.OrganizerEmail))
	}
	for _, a := range ev.Attendees {
		ve.Props.Add(calAddress(ical.PropAttendee, a.Email))
	}
	for _, tag := range p.Task.Tags {
		prop := ical.NewProp(ical.PropCategories)
		prop.SetText(tag)
		ve.Props.Add(prop)
	}

	priority := ical.NewProp(ical.PropPriority)
	priority.Value = strconv.Itoa(icalPriority(p.Task.Priority))
	ve.Props.Set(priority)
	return ve
}

// calAddress builds a CAL-ADDRESS property such as ATTENDEE:mailto:x@y.
func calAddress(name, email string) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Value = "mailto:" + email
	return prop
}

// icalPriority maps a tracker priority onto the RFC 5545 1 (high) to 9 (low) scale.
func icalPriority(priority int) int {
	switch priority {
	case models.PriorityHigh:
		return 1
	case models.PriorityNormal:
		return 5
	default:
		return 9
	}
}

func icalStatus(status string) string {
	switch status {
	case models.StatusTentative:
		return "TENTATIVE"
	case models.StatusCancelled:
		return "CANCELLED"
	default:
		return "CONFIRMED"
	}
}
