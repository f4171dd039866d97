package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/altheia/backend/internal/models"
)

// PostgresLogRepository implements symptom log persistence against a
// PostgreSQL database. Symptom entries are stored as a JSONB column.
type PostgresLogRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresLogRepository creates a repository using the given database
// connection.
func NewPostgresLogRepository(db *sql.DB) *PostgresLogRepository {
	return &PostgresLogRepository{DB: db}
}

const logColumns = `id, user_id, date, symptoms, overall_notes, created_at, updated_at`

// scanLog scans one symptom log row, decoding the JSONB symptoms column.
func scanLog(scan func(dest ...any) error) (*models.SymptomLog, error) {
	var (
		log      models.SymptomLog
		symptoms []byte
		notes    sql.NullString
	)
	if err := scan(&log.ID, &log.UserID, &log.Date, &symptoms, &notes,
		&log.CreatedAt, &log.UpdatedAt); err != nil {
		return nil, err
	}
	if len(symptoms) > 0 {
		if err := json.Unmarshal(symptoms, &log.Symptoms); err != nil {
			return nil, fmt.Errorf("decode symptoms: %w", err)
		}
	}
	log.OverallNotes = notes.String
	return &log, nil
}

// UpsertByDate atomically creates or replaces the user's log for a date
// and returns the stored record. The unique (user_id, date) index
// enforces one log per user per day.
func (r *PostgresLogRepository) UpsertByDate(ctx context.Context, log models.SymptomLog) (*models.SymptomLog, error) {
	symptoms, err := json.Marshal(log.Symptoms)
	if err != nil {
		return nil, fmt.Errorf("encode symptoms: %w", err)
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO symptom_logs (id, user_id, date, symptoms, overall_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id, date) DO UPDATE SET
			symptoms = EXCLUDED.symptoms,
			overall_notes = EXCLUDED.overall_notes,
			updated_at = EXCLUDED.updated_at
		RETURNING `+logColumns,
		log.ID, log.UserID, log.Date, symptoms, log.OverallNotes, log.UpdatedAt)

	stored, err := scanLog(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("UpsertByDate: %w", err)
	}
	return stored, nil
}

// FindByID fetches a single log by id scoped to its owner. Returns
// sql.ErrNoRows when absent.
func (r *PostgresLogRepository) FindByID(ctx context.Context, userID, logID string) (*models.SymptomLog, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM symptom_logs WHERE user_id = $1 AND id = $2`,
		userID, logID)
	log, err := scanLog(row.Scan)
	if err != nil {
		return nil, err
	}
	return log, nil
}

// FindAllByOwner returns every log the user owns, oldest first.
func (r *PostgresLogRepository) FindAllByOwner(ctx context.Context, userID string) ([]models.SymptomLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+logColumns+` FROM symptom_logs WHERE user_id = $1 ORDER BY date ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("FindAllByOwner: %w", err)
	}
	defer rows.Close()
	return collectLogs(rows)
}

// ListRange returns logs within the inclusive date range, newest first.
// When no range is given, limit caps the result.
func (r *PostgresLogRepository) ListRange(ctx context.Context, userID, startDate, endDate string, limit int) ([]models.SymptomLog, error) {
	query := `SELECT ` + logColumns + ` FROM symptom_logs WHERE user_id = $1`
	args := []any{userID}

	if startDate != "" {
		args = append(args, startDate)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if endDate != "" {
		args = append(args, endDate)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListRange: %w", err)
	}
	defer rows.Close()
	return collectLogs(rows)
}

// DeleteByDate removes the user's log for a date; reports whether one
// existed.
func (r *PostgresLogRepository) DeleteByDate(ctx context.Context, userID, date string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM symptom_logs WHERE user_id = $1 AND date = $2`, userID, date)
	if err != nil {
		return false, fmt.Errorf("DeleteByDate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("DeleteByDate: %w", err)
	}
	return affected > 0, nil
}

func collectLogs(rows *sql.Rows) ([]models.SymptomLog, error) {
	var logs []models.SymptomLog
	for rows.Next() {
		log, err := scanLog(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		logs = append(logs, *log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return logs, nil
}
