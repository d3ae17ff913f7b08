package domain

import "time"

type User struct {
	ID         int64
	TelegramID int64
	Username   string
	FullName   string
}

// UserSettings keys on the internal user ID, not the Telegram ID.
// DefaultSourceID == nil means "all sources".
type UserSettings struct {
	UserID          int64
	ItemsPerPage    int64
	DefaultSourceID *int64
}

type Source struct {
	ID      int64
	Name    string
	BaseURL string
}

// Headline is a scraped (title, URL) candidate before persistence.
type Headline struct {
	Title string
	URL   string
}

type Article struct {
	ID          int64
	SourceID    int64
	Title       string
	URL         string
	PublishedAt time.Time
	SourceName  string
}
