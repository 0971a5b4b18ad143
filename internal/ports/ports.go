package ports

import (
	"context"
	"time"

	"pricetracker/internal/domain"
)

// StateStore is the local key-value state the extension kept in
// chrome.storage.local: the tracked-product cache, user preferences, the
// per-product history cache, and the current-user identifier. Use cases
// receive it explicitly; nothing reads ambient global storage.
type StateStore interface {
	SaveProducts(ctx context.Context, products []domain.TrackedProduct) error
	LoadProducts(ctx context.Context) ([]domain.TrackedProduct, error)
	SavePreferences(ctx context.Context, prefs domain.NotificationPreferences) error
	LoadPreferences(ctx context.Context) (domain.NotificationPreferences, error)
	SaveHistory(ctx context.Context, productURL string, entries []domain.PriceHistoryEntry) error
	LoadHistory(ctx context.Context, productURL string) ([]domain.PriceHistoryEntry, error)
	UserID(ctx context.Context) (string, error)
}

// AlertLog persists fired alerts so a sweep never re-notifies a product
// whose price simply stayed below its threshold.
type AlertLog interface {
	AlreadyAlerted(ctx context.Context, productURLs []string) (map[string]bool, error)
	SaveAlert(ctx context.Context, alert domain.Alert) error
	ClearAlert(ctx context.Context, productURL string) error
}

// Notifier delivers a price alert to the user's local channel.
type Notifier interface {
	NotifyAlert(ctx context.Context, product domain.TrackedProduct) error
}

// Scraper extracts product data from a marketplace page, standing in for
// the extension's content script.
type Scraper interface {
	Supports(pageURL string) bool
	Scrape(ctx context.Context, pageURL string) (domain.ScrapedProduct, error)
}

// Scheduler controls when the background sweep executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
