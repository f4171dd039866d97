package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/altheia/backend/internal/models"
)

// ErrInvalidLog is returned when a submitted log fails validation.
var ErrInvalidLog = errors.New("invalid symptom log")

// LogRepository defines the persistence operations for symptom logs.
type LogRepository interface {
	// UpsertByDate creates or replaces the user's log for a date and
	// returns the stored record. At most one log exists per user per day.
	UpsertByDate(ctx context.Context, log models.SymptomLog) (*models.SymptomLog, error)
	// ListRange returns logs in [start, end] (inclusive, both optional),
	// newest first, capped at limit when no range is given.
	ListRange(ctx context.Context, userID, startDate, endDate string, limit int) ([]models.SymptomLog, error)
	// DeleteByDate removes the log for a date; reports whether one existed.
	DeleteByDate(ctx context.Context, userID, date string) (bool, error)
}

// defaultListLimit caps unbounded log listings to avoid over-fetching.
const defaultListLimit = 30

// LogService implements symptom log CRUD.
type LogService struct {
	repo LogRepository
}

// NewLogService constructs a LogService.
func NewLogService(repo LogRepository) *LogService {
	return &LogService{repo: repo}
}

// LogInput carries the fields accepted when writing a daily log.
type LogInput struct {
	Date         string               `json:"date"`
	Symptoms     []models.SymptomItem `json:"symptoms"`
	OverallNotes string               `json:"overall_notes"`
}

// validate checks date format and symptom entries.
func (in LogInput) validate() error {
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidLog)
	}
	for _, s := range in.Symptoms {
		if s.Name == "" {
			return fmt.Errorf("%w: symptom name must not be empty", ErrInvalidLog)
		}
		if s.Severity < 1 || s.Severity > 5 {
			return fmt.Errorf("%w: severity must be between 1 and 5", ErrInvalidLog)
		}
	}
	return nil
}

// Upsert creates or updates the user's log for the given date.
func (s *LogService) Upsert(ctx context.Context, userID string, in LogInput) (*models.SymptomLog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.repo.UpsertByDate(ctx, models.SymptomLog{
		UserID:       userID,
		Date:         in.Date,
		Symptoms:     in.Symptoms,
		OverallNotes: in.OverallNotes,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// List returns the user's logs, optionally restricted to a date range.
// Without a range, only the most recent logs are returned.
func (s *LogService) List(ctx context.Context, userID, startDate, endDate string) ([]models.SymptomLog, error) {
	for _, d := range []string{startDate, endDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, fmt.Errorf("%w: date filter must be YYYY-MM-DD", ErrInvalidLog)
		}
	}

	limit := 0
	if startDate == "" && endDate == "" {
		limit = defaultListLimit
	}
	return s.repo.ListRange(ctx, userID, startDate, endDate, limit)
}

// DeleteByDate removes the log for a date.
func (s *LogService) DeleteByDate(ctx context.Context, userID, date string) error {
	deleted, err := s.repo.DeleteByDate(ctx, userID, date)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrLogNotFound
	}
	return nil
}
