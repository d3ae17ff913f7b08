package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"pressgram/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

const (
	fetchTimeout = 10 * time.Second

	// Some of the sites refuse requests without a browser user agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

type Fetcher struct {
	client *http.Client
	log    *slog.Logger
}

func NewFetcher(log *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
		log:    log,
	}
}

// Parse fetches the site's listing page and extracts headline
// candidates. Ingestion must never abort because one site is
// unreachable or changed its markup, so every failure degrades to an
// empty result with a warn log; the next scheduled run is the retry.
func (f *Fetcher) Parse(ctx context.Context, site Site) []domain.Headline {
	doc, err := f.document(ctx, site.PageURL)
	if err != nil {
		f.log.WarnContext(ctx, "Failed to fetch source page",
			"error", err,
			"source", site.SourceName,
			"pageURL", site.PageURL)

		return nil
	}

	headlines := site.Extract(doc, site.BaseURL)
	if len(headlines) == 0 {
		f.log.WarnContext(ctx, "No headlines extracted, selectors may be stale",
			"source", site.SourceName,
			"pageURL", site.PageURL)
	}

	return headlines
}

func (f *Fetcher) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.log.WarnContext(ctx, "Failed to close response body",
				"error", closeErr,
				"pageURL", pageURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	return doc, nil
}
