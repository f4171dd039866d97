package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>Menopause News</title>
    <item>
      <title>New diet study on menopause symptoms</title>
      <link>https://news.example/diet-study</link>
      <description>Researchers link food choices to symptom relief.</description>
      <pubDate>Mon, 10 Aug 2026 09:00:00 GMT</pubDate>
      <media:thumbnail url="https://news.example/img/diet.jpg"/>
    </item>
    <item>
      <title>Understanding hormone therapy</title>
      <link>https://news.example/hormone-therapy</link>
      <description>A primer on treatment options.</description>
    </item>
    <item>
      <title>No link here</title>
      <description>This entry has no URL and must be skipped.</description>
    </item>
  </channel>
</rss>`

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	f := NewFetcher(server.URL, 0, zap.NewNop())
	defer f.Close()

	articles, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2, "the linkless entry must be dropped")

	first := articles[0]
	assert.Equal(t, "New diet study on menopause symptoms", first.Title)
	assert.Equal(t, "https://news.example/diet-study", first.URL)
	assert.Equal(t, "Nutrition", first.Category)
	assert.Equal(t, "https://news.example/img/diet.jpg", first.ImageURL)
	assert.Equal(t, 2026, first.PublishedAt.Year())

	second := articles[1]
	assert.Equal(t, "Essential", second.Category)
	assert.Empty(t, second.ImageURL)
	assert.False(t, second.PublishedAt.IsZero(), "missing pubDate falls back to now")
}

func TestFetch_RetriesServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	f := NewFetcher(server.URL, 1, zap.NewNop())
	defer f.Close()

	articles, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	assert.Equal(t, 2, calls)
}

func TestFetch_BadFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not xml"))
	}))
	defer server.Close()

	f := NewFetcher(server.URL, 0, zap.NewNop())
	defer f.Close()

	_, err := f.Fetch(context.Background())
	assert.Error(t, err)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name           string
		title, summary string
		want           string
	}{
		{"nutrition keyword in title", "Vitamin D and bone health", "", "Nutrition"},
		{"symptom keyword in summary", "New research", "hot flash frequency drops", "Symptoms"},
		{"nutrition wins over symptoms", "Diet changes ease sleep problems", "", "Nutrition"},
		{"case insensitive", "INSOMNIA and menopause", "", "Symptoms"},
		{"no keyword", "Community support groups", "finding your people", "Essential"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.title, tt.summary))
		})
	}
}
