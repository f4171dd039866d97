// Package feed fetches and categorizes health articles from an RSS feed.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/altheia/backend/internal/models"
)

// Fetcher downloads the configured RSS feed and maps its entries to
// articles.
type Fetcher struct {
	httpClient       *resty.Client
	parser           *gofeed.Parser
	feedURL          string
	maxRetryAttempts uint
	logger           *zap.Logger
}

// NewFetcher creates a Fetcher for the given feed URL.
func NewFetcher(feedURL string, retryAttempts uint, logger *zap.Logger) *Fetcher {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "altheia-backend/1.0")

	return &Fetcher{
		httpClient:       client,
		parser:           gofeed.NewParser(),
		feedURL:          feedURL,
		maxRetryAttempts: retryAttempts,
		logger:           logger,
	}
}

// Close releases the underlying HTTP client.
func (f *Fetcher) Close() error {
	return f.httpClient.Close()
}

// Fetch downloads and parses the feed, returning one article per entry.
// Transient download failures are retried with backoff.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.Article, error) {
	var body string
	err := retry.Do(
		func() error {
			resp, err := f.httpClient.R().SetContext(ctx).Get(f.feedURL)
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("feed response error %d", resp.StatusCode())
			}
			body = resp.String()
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.maxRetryAttempts+1),
		retry.Delay(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	parsed, err := f.parser.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	articles := make([]models.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}

		publishedAt := time.Now().UTC()
		if item.PublishedParsed != nil {
			publishedAt = item.PublishedParsed.UTC()
		}

		articles = append(articles, models.Article{
			Title:       item.Title,
			URL:         item.Link,
			Summary:     item.Description,
			Category:    Categorize(item.Title, item.Description),
			ImageURL:    imageURL(item),
			PublishedAt: publishedAt,
		})
	}

	f.logger.Info("fetched feed", zap.String("url", f.feedURL), zap.Int("items", len(articles)))
	return articles, nil
}

// imageURL picks a preview image from the entry's media extensions, if
// the feed provides one.
func imageURL(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	for _, key := range []string{"content", "thumbnail"} {
		for _, ext := range item.Extensions["media"][key] {
			if url := ext.Attrs["url"]; url != "" {
				return url
			}
		}
	}
	return ""
}

var (
	nutritionKeywords = []string{
		"diet", "food", "nutrition", "eat", "vitamin", "supplement",
		"tea", "coffee", "sugar", "protein", "carb", "fat",
	}
	symptomKeywords = []string{
		"symptom", "pain", "flash", "sweat", "sleep", "insomnia",
		"mood", "anxiety", "depression", "fog", "weight", "ache",
	}
)

// Categorize assigns a category from keyword matches in the title and
// summary; anything unmatched is "Essential".
func Categorize(title, summary string) string {
	text := strings.ToLower(title + " " + summary)
	for _, k := range nutritionKeywords {
		if strings.Contains(text, k) {
			return "Nutrition"
		}
	}
	for _, k := range symptomKeywords {
		if strings.Contains(text, k) {
			return "Symptoms"
		}
	}
	return "Essential"
}
