package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/altheia/backend/internal/models"
)

// ArticleRepository defines the persistence operations for articles.
type ArticleRepository interface {
	// UpsertByURL inserts an article or refreshes an existing one with
	// the same URL; reports whether a new row was created.
	UpsertByURL(ctx context.Context, article models.Article) (bool, error)
	// List returns articles newest first, optionally filtered by category.
	List(ctx context.Context, category string) ([]models.Article, error)
}

// FeedSource fetches articles from the configured external feed.
type FeedSource interface {
	Fetch(ctx context.Context) ([]models.Article, error)
}

// ArticleService aggregates health articles from an RSS feed into the
// local store.
type ArticleService struct {
	repo   ArticleRepository
	source FeedSource
	logger *zap.Logger
}

// NewArticleService constructs an ArticleService.
func NewArticleService(repo ArticleRepository, source FeedSource, logger *zap.Logger) *ArticleService {
	return &ArticleService{repo: repo, source: source, logger: logger}
}

// List returns stored articles, optionally filtered by category.
func (s *ArticleService) List(ctx context.Context, category string) ([]models.Article, error) {
	return s.repo.List(ctx, category)
}

// Refresh fetches the feed and upserts every entry, returning the number
// of new articles. A single bad entry does not abort the rest.
func (s *ArticleService) Refresh(ctx context.Context) (int, error) {
	articles, err := s.source.Fetch(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, a := range articles {
		created, err := s.repo.UpsertByURL(ctx, a)
		if err != nil {
			s.logger.Error("failed to store article", zap.String("url", a.URL), zap.Error(err))
			continue
		}
		if created {
			added++
		}
	}

	s.logger.Info("article refresh finished",
		zap.Int("fetched", len(articles)), zap.Int("added", added))
	return added, nil
}
