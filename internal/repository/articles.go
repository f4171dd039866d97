package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/altheia/backend/internal/models"
)

// PostgresArticleRepository implements article persistence against a
// PostgreSQL database.
type PostgresArticleRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresArticleRepository creates a repository using the given
// database connection.
func NewPostgresArticleRepository(db *sql.DB) *PostgresArticleRepository {
	return &PostgresArticleRepository{DB: db}
}

// UpsertByURL inserts an article or refreshes an existing one keyed by
// URL. An existing image is kept when the refresh carries none.
func (r *PostgresArticleRepository) UpsertByURL(ctx context.Context, a models.Article) (bool, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	var created bool
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO articles (id, title, url, summary, category, image_url, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			category = EXCLUDED.category,
			image_url = COALESCE(NULLIF(EXCLUDED.image_url, ''), articles.image_url),
			published_at = EXCLUDED.published_at
		RETURNING (xmax = 0)
	`, a.ID, a.Title, a.URL, a.Summary, a.Category, a.ImageURL, a.PublishedAt).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("UpsertByURL: %w", err)
	}
	return created, nil
}

// List returns articles newest first, optionally filtered by category.
func (r *PostgresArticleRepository) List(ctx context.Context, category string) ([]models.Article, error) {
	query := `SELECT id, title, url, summary, category, image_url, published_at
		FROM articles`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY published_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var (
			a        models.Article
			imageURL sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.Summary, &a.Category,
			&imageURL, &a.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		a.ImageURL = imageURL.String
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return articles, nil
}

// DeleteOlderThan removes articles published before the cutoff and
// returns the number removed.
func (r *PostgresArticleRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM articles WHERE published_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: %w", err)
	}
	return res.RowsAffected()
}
