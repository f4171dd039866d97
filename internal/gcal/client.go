// Package gcal implements the Google Calendar side of symptom log
// syncing: credential resolution from stored refresh tokens, event
// formatting, and a thin gateway over the calendar API.
package gcal

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
)

const (
	// calendarSummary is the fixed name of the per-user app calendar.
	calendarSummary     = "Altheia Health"
	calendarDescription = "Symptom logs from Altheia health tracking app"
	calendarTimeZone    = "UTC"
)

// Calendar is the gateway surface the sync orchestrator needs. All
// operations are keyed by the provisioned calendar id except
// EnsureCalendar, which provisions it.
type Calendar interface {
	// FindEventByLogID returns the id of the event tagged with logID,
	// or "" when no such event exists. Lookup failures are treated as
	// not found so a transient list error never blocks a create.
	FindEventByLogID(ctx context.Context, calendarID, logID string) (string, error)
	// InsertEvent creates an event and returns its server-assigned id.
	InsertEvent(ctx context.Context, calendarID string, ev *calendar.Event) (string, error)
	// UpdateEvent replaces the event's payload and returns its id.
	UpdateEvent(ctx context.Context, calendarID, eventID string, ev *calendar.Event) (string, error)
	// DeleteEvent removes an event. An already-deleted event is success.
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	// EnsureCalendar returns the id of the app calendar, creating it if
	// absent. Idempotent.
	EnsureCalendar(ctx context.Context) (string, error)
}

// Client is the concrete Calendar backed by the Google Calendar API.
type Client struct {
	svc    *calendar.Service
	logger *zap.Logger
}

// NewClient wraps an authenticated calendar service.
func NewClient(svc *calendar.Service, logger *zap.Logger) *Client {
	return &Client{svc: svc, logger: logger}
}

// FindEventByLogID looks up an event by its private correlation tag.
// Any API error is logged and reported as not found: a failed lookup
// must not block the subsequent create, and a duplicate created under a
// transient lookup failure is corrected on the next sync.
func (c *Client) FindEventByLogID(ctx context.Context, calendarID, logID string) (string, error) {
	events, err := c.svc.Events.List(calendarID).
		PrivateExtendedProperty(logIDProperty + "=" + logID).
		Context(ctx).
		Do()
	if err != nil {
		c.logger.Warn("event lookup failed, treating as not found",
			zap.String("logID", logID), zap.Error(err))
		return "", nil
	}

	if len(events.Items) == 0 {
		return "", nil
	}
	return events.Items[0].Id, nil
}

// InsertEvent creates a new calendar event.
func (c *Client) InsertEvent(ctx context.Context, calendarID string, ev *calendar.Event) (string, error) {
	created, err := c.svc.Events.Insert(calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", remoteErr("insert event", err)
	}
	c.logger.Info("created calendar event", zap.String("eventID", created.Id))
	return created.Id, nil
}

// UpdateEvent replaces an existing event's payload.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, ev *calendar.Event) (string, error) {
	updated, err := c.svc.Events.Update(calendarID, eventID, ev).Context(ctx).Do()
	if err != nil {
		return "", remoteErr("update event", err)
	}
	c.logger.Info("updated calendar event", zap.String("eventID", updated.Id))
	return updated.Id, nil
}

// DeleteEvent removes an event. A 404/410 response means the event is
// already gone, which is not an error.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		if isGone(err) {
			c.logger.Warn("event already deleted", zap.String("eventID", eventID))
			return nil
		}
		return remoteErr("delete event", err)
	}
	c.logger.Info("deleted calendar event", zap.String("eventID", eventID))
	return nil
}

// EnsureCalendar returns the id of the "Altheia Health" calendar,
// creating it when the user does not have one yet. Repeated calls
// converge to the same id.
func (c *Client) EnsureCalendar(ctx context.Context) (string, error) {
	list, err := c.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", remoteErr("list calendars", err)
	}
	for _, item := range list.Items {
		if item.Summary == calendarSummary {
			c.logger.Info("found existing calendar", zap.String("calendarID", item.Id))
			return item.Id, nil
		}
	}

	created, err := c.svc.Calendars.Insert(&calendar.Calendar{
		Summary:     calendarSummary,
		Description: calendarDescription,
		TimeZone:    calendarTimeZone,
	}).Context(ctx).Do()
	if err != nil {
		return "", remoteErr("insert calendar", err)
	}
	c.logger.Info("created calendar", zap.String("calendarID", created.Id))
	return created.Id, nil
}
