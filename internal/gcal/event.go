package gcal

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/altheia/backend/internal/models"
)

const (
	// logIDProperty is the private extended property tying a calendar
	// event back to exactly one symptom log.
	logIDProperty = "altheia_log_id"

	// sourceProperty marks events created by this app, distinguishing
	// them from events the user created by hand.
	sourceProperty = "source"
	sourceValue    = "altheia_app"

	dateLayout = "2006-01-02"
)

// BuildEvent converts a symptom log into a Google Calendar event payload.
// The result is an all-day event on the log's date, colored by overall
// severity and tagged with the log id. Pure: no I/O, deterministic for
// any log with a parseable date.
func BuildEvent(log models.SymptomLog) *calendar.Event {
	severity := ClassifySeverity(log.Symptoms)

	parts := []string{"Symptoms:"}
	for _, s := range log.Symptoms {
		parts = append(parts, fmt.Sprintf("- %s: %d/5", s.Name, s.Severity))
	}
	if log.OverallNotes != "" {
		parts = append(parts, fmt.Sprintf("\nNotes: %s", log.OverallNotes))
	}

	date := normalizeDate(log.Date)

	return &calendar.Event{
		Summary:     fmt.Sprintf("Symptom Log: %s", capitalize(string(severity))),
		Description: strings.Join(parts, "\n"),
		Start:       &calendar.EventDateTime{Date: date},
		End:         &calendar.EventDateTime{Date: date},
		ColorId:     colorID(severity),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				logIDProperty:  log.ID,
				sourceProperty: sourceValue,
			},
		},
	}
}

// normalizeDate returns the YYYY-MM-DD form of v. Accepts a pre-formatted
// date string or a time.Time; anything else falls back to the current UTC
// date.
func normalizeDate(v any) string {
	switch d := v.(type) {
	case string:
		if _, err := time.Parse(dateLayout, d); err == nil {
			return d
		}
	case time.Time:
		return d.UTC().Format(dateLayout)
	}
	return time.Now().UTC().Format(dateLayout)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// EventLogID extracts the correlation tag from an event payload.
func EventLogID(ev *calendar.Event) string {
	if ev == nil || ev.ExtendedProperties == nil {
		return ""
	}
	return ev.ExtendedProperties.Private[logIDProperty]
}
