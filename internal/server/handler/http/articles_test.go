package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/altheia/backend/internal/models"
	handler "github.com/altheia/backend/internal/server/handler/http"
)

type fakeArticleService struct {
	receivedCategory string
	articles         []models.Article
	added            int
	err              error
}

func (f *fakeArticleService) List(_ context.Context, category string) ([]models.Article, error) {
	f.receivedCategory = category
	return f.articles, f.err
}

func (f *fakeArticleService) Refresh(_ context.Context) (int, error) {
	return f.added, f.err
}

func TestArticleListHandler(t *testing.T) {
	svc := &fakeArticleService{
		articles: []models.Article{
			{ID: "a1", Title: "Sleep and menopause", URL: "https://example.com/a1", Category: "Symptoms"},
		},
	}
	h := &handler.ArticleHandler{ArticleService: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/articles?category=Symptoms", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if svc.receivedCategory != "Symptoms" {
		t.Errorf("category = %q; want %q", svc.receivedCategory, "Symptoms")
	}

	var got []models.Article
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a1" {
		t.Errorf("articles = %+v; want one article with id a1", got)
	}
}

func TestArticleListHandler_EmptyIsArray(t *testing.T) {
	h := &handler.ArticleHandler{ArticleService: &fakeArticleService{}}

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "[]\n" {
		t.Errorf("body = %q; want %q", rec.Body.String(), "[]\n")
	}
}

func TestArticleListHandler_Error(t *testing.T) {
	h := &handler.ArticleHandler{ArticleService: &fakeArticleService{err: errors.New("db down")}}

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestArticleRefreshHandler(t *testing.T) {
	h := &handler.ArticleHandler{ArticleService: &fakeArticleService{added: 4}}

	req := httptest.NewRequest(http.MethodPost, "/api/articles/refresh", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["added"] != float64(4) {
		t.Errorf("added = %v; want %v", body["added"], 4)
	}
}

func TestArticleRefreshHandler_FetchFailure(t *testing.T) {
	h := &handler.ArticleHandler{ArticleService: &fakeArticleService{err: errors.New("feed unreachable")}}

	req := httptest.NewRequest(http.MethodPost, "/api/articles/refresh", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusBadGateway)
	}
}
