package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/altheia/backend/internal/models"
)

func setupLogMock(t *testing.T) (*PostgresLogRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresLogRepository(db)
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

func logRow(id, date string) []driver.Value {
	now := time.Now()
	return []driver.Value{id, "u1", date, []byte(`[{"name":"Fatigue","severity":3}]`), "ok", now, now}
}

func logColumnsList() []string {
	return []string{"id", "user_id", "date", "symptoms", "overall_notes", "created_at", "updated_at"}
}

func TestUpsertByDate(t *testing.T) {
	repo, mock, cleanup := setupLogMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(logColumnsList()).AddRow(logRow("log-1", "2026-03-15")...)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO symptom_logs`)).
		WillReturnRows(rows)

	stored, err := repo.UpsertByDate(context.Background(), models.SymptomLog{
		UserID:   "u1",
		Date:     "2026-03-15",
		Symptoms: []models.SymptomItem{{Name: "Fatigue", Severity: 3}},
	})
	if err != nil {
		t.Fatalf("UpsertByDate: %v", err)
	}
	if stored.ID != "log-1" || stored.Date != "2026-03-15" {
		t.Errorf("stored = %+v; want log-1 on 2026-03-15", stored)
	}
	if len(stored.Symptoms) != 1 || stored.Symptoms[0].Name != "Fatigue" {
		t.Errorf("symptoms = %+v; want decoded Fatigue entry", stored.Symptoms)
	}
}

func TestFindByID(t *testing.T) {
	repo, mock, cleanup := setupLogMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(logColumnsList()).AddRow(logRow("log-1", "2026-03-15")...)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM symptom_logs WHERE user_id = $1 AND id = $2`)).
		WithArgs("u1", "log-1").
		WillReturnRows(rows)

	log, err := repo.FindByID(context.Background(), "u1", "log-1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if log.ID != "log-1" {
		t.Errorf("ID = %q; want log-1", log.ID)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupLogMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM symptom_logs WHERE user_id = $1 AND id = $2`)).
		WithArgs("u1", "missing").
		WillReturnRows(sqlmock.NewRows(logColumnsList()))

	_, err := repo.FindByID(context.Background(), "u1", "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("FindByID error = %v; want sql.ErrNoRows", err)
	}
}

func TestFindAllByOwner(t *testing.T) {
	repo, mock, cleanup := setupLogMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(logColumnsList()).
		AddRow(logRow("log-1", "2026-03-14")...).
		AddRow(logRow("log-2", "2026-03-15")...)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM symptom_logs WHERE user_id = $1 ORDER BY date ASC`)).
		WithArgs("u1").
		WillReturnRows(rows)

	logs, err := repo.FindAllByOwner(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FindAllByOwner: %v", err)
	}
	if len(logs) != 2 || logs[0].ID != "log-1" || logs[1].ID != "log-2" {
		t.Errorf("logs = %+v; want log-1 then log-2", logs)
	}
}

func TestListRange_WithLimit(t *testing.T) {
	repo, mock, cleanup := setupLogMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY date DESC LIMIT $2`)).
		WithArgs("u1", 30).
		WillReturnRows(sqlmock.NewRows(logColumnsList()))

	if _, err := repo.ListRange(context.Background(), "u1", "", "", 30); err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListRange_WithDates(t *testing.T) {
	repo, mock, cleanup := setupLogMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`AND date >= $2 AND date <= $3 ORDER BY date DESC`)).
		WithArgs("u1", "2026-01-01", "2026-03-31").
		WillReturnRows(sqlmock.NewRows(logColumnsList()))

	if _, err := repo.ListRange(context.Background(), "u1", "2026-01-01", "2026-03-31", 0); err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteByDate(t *testing.T) {
	repo, mock, cleanup := setupLogMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM symptom_logs WHERE user_id = $1 AND date = $2`)).
		WithArgs("u1", "2026-03-15").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.DeleteByDate(context.Background(), "u1", "2026-03-15")
	if err != nil {
		t.Fatalf("DeleteByDate: %v", err)
	}
	if !deleted {
		t.Error("expected deleted = true")
	}
}

func TestDeleteByDate_Missing(t *testing.T) {
	repo, mock, cleanup := setupLogMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM symptom_logs`)).
		WithArgs("u1", "2026-03-16").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.DeleteByDate(context.Background(), "u1", "2026-03-16")
	if err != nil {
		t.Fatalf("DeleteByDate: %v", err)
	}
	if deleted {
		t.Error("expected deleted = false for missing row")
	}
}
