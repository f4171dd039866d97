package http

import (
	"context"
	"net/http"

	"github.com/altheia/backend/internal/models"
)

// ArticleService defines the article operations required by the HTTP
// handlers.
type ArticleService interface {
	List(ctx context.Context, category string) ([]models.Article, error)
	Refresh(ctx context.Context) (int, error)
}

// ArticleHandler serves aggregated health articles.
type ArticleHandler struct {
	ArticleService ArticleService
}

// List handles GET /api/articles with an optional category filter.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.ArticleService.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}

// Refresh handles POST /api/articles/refresh, triggering an immediate
// feed fetch.
func (h *ArticleHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	added, err := h.ArticleService.Refresh(r.Context())
	if err != nil {
		http.Error(w, "failed to refresh articles", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"added": added,
	})
}
