package scraper

import (
	"strings"

	"pressgram/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// Site binds a seeded source name to its listing page and extraction
// rule. Each rule is a fixed contract with that site's markup; when the
// markup drifts, extraction degrades to zero results for that site.
type Site struct {
	SourceName string
	PageURL    string
	BaseURL    string
	Extract    func(doc *goquery.Document, baseURL string) []domain.Headline
}

func Sites() []Site {
	return []Site{
		{
			SourceName: "Bloomberg",
			PageURL:    "https://www.bloomberg.com/markets",
			BaseURL:    "https://www.bloomberg.com",
			Extract:    extractBloomberg,
		},
		{
			SourceName: "Коммерсантъ",
			PageURL:    "https://www.kommersant.ru/",
			BaseURL:    "https://www.kommersant.ru",
			Extract:    extractKommersant,
		},
		{
			SourceName: "Reuters",
			PageURL:    "https://www.reuters.com/",
			BaseURL:    "https://www.reuters.com",
			Extract:    extractReuters,
		},
		{
			SourceName: "ТАСС",
			PageURL:    "https://tass.ru/",
			BaseURL:    "https://tass.ru",
			Extract:    extractTass,
		},
	}
}

func extractBloomberg(doc *goquery.Document, baseURL string) []domain.Headline {
	var headlines []domain.Headline

	doc.Find("article.story-list-story").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a.story-list-story__info__headline").First()

		href, _ := link.Attr("href")
		headlines = appendHeadline(headlines, link.Text(), href, baseURL)
	})

	return headlines
}

func extractKommersant(doc *goquery.Document, baseURL string) []domain.Headline {
	var headlines []domain.Headline

	doc.Find(".uho__link").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		headlines = appendHeadline(headlines, s.Text(), href, baseURL)
	})

	return headlines
}

func extractReuters(doc *goquery.Document, baseURL string) []domain.Headline {
	var headlines []domain.Headline

	doc.Find("article.story").Each(func(_ int, s *goquery.Selection) {
		link := s.Find(`a[data-testid="Heading"]`).First()

		href, _ := link.Attr("href")
		headlines = appendHeadline(headlines, link.Text(), href, baseURL)
	})

	return headlines
}

func extractTass(doc *goquery.Document, baseURL string) []domain.Headline {
	var headlines []domain.Headline

	doc.Find(".news-card__title").Each(func(_ int, s *goquery.Selection) {
		// The title element sits inside the card link.
		href, _ := s.Closest("a").Attr("href")
		headlines = appendHeadline(headlines, s.Text(), href, baseURL)
	})

	return headlines
}

func appendHeadline(
	headlines []domain.Headline,
	title string,
	href string,
	baseURL string,
) []domain.Headline {
	title = strings.TrimSpace(title)
	href = strings.TrimSpace(href)
	if title == "" || href == "" {
		return headlines
	}

	if !strings.HasPrefix(href, "http") {
		href = baseURL + href
	}

	return append(headlines, domain.Headline{Title: title, URL: href})
}
