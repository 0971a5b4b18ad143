package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"pricetracker/internal/api"
	"pricetracker/internal/domain"
	"pricetracker/internal/normalize"
	"pricetracker/internal/ports"
)

// ScraperResolver picks the scraper responsible for a page url.
type ScraperResolver interface {
	Resolve(pageURL string) (ports.Scraper, error)
}

// TrackerDeps wires the driven adapters into the user-facing operations.
type TrackerDeps struct {
	Client   *api.Client
	Store    ports.StateStore
	Scrapers ScraperResolver
	AlertLog ports.AlertLog
	Logger   *slog.Logger
}

// Tracker owns the in-memory tracked-product list and exposes the
// operations the popup UI offered: list, track, untrack, alert threshold,
// history, statistics, and notification preferences. A mutex guards the
// list because the background sweep and a user action may both touch it.
// Every remote failure leaves the previously loaded state untouched.
type Tracker struct {
	client   *api.Client
	store    ports.StateStore
	scrapers ScraperResolver
	alertLog ports.AlertLog
	logger   *slog.Logger

	mu       sync.Mutex
	products []domain.TrackedProduct
}

// NewTracker constructs the service.
func NewTracker(deps TrackerDeps) *Tracker {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		client:   deps.Client,
		store:    deps.Store,
		scrapers: deps.Scrapers,
		alertLog: deps.AlertLog,
		logger:   logger,
	}
}

// Products returns a copy of the current list; callers own the copy.
func (t *Tracker) Products() []domain.TrackedProduct {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.TrackedProduct, len(t.products))
	copy(out, t.products)
	return out
}

// Refresh re-fetches the full tracked list from the backend, normalizes it,
// and persists it to the local cache. On failure the previous list stays.
func (t *Tracker) Refresh(ctx context.Context) ([]domain.TrackedProduct, error) {
	userID, err := t.userID(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := t.client.ListProducts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := normalize.Products(raw)

	t.mu.Lock()
	t.products = products
	t.mu.Unlock()

	if err := t.store.SaveProducts(ctx, products); err != nil {
		t.logger.Warn("cache tracked products", "error", err)
	}

	return t.Products(), nil
}

// Track scrapes the product page, submits it to the backend, and appends
// the normalized result to the list. Scraped data fills whatever the
// backend response omits.
func (t *Tracker) Track(ctx context.Context, pageURL string, threshold float64) (domain.TrackedProduct, error) {
	sc, err := t.scrapers.Resolve(pageURL)
	if err != nil {
		return domain.TrackedProduct{}, err
	}

	scraped, err := sc.Scrape(ctx, pageURL)
	if err != nil {
		return domain.TrackedProduct{}, fmt.Errorf("scrape product: %w", err)
	}

	if threshold <= 0 {
		threshold = scraped.CurrentPrice
	}

	raw, err := t.client.AddProduct(ctx, scraped.URL, threshold)
	if err != nil {
		return domain.TrackedProduct{}, fmt.Errorf("add product: %w", err)
	}

	product := mergeScraped(normalizeOne(raw, scraped.URL), scraped)
	product.Threshold = threshold

	t.mu.Lock()
	t.products = upsertLocal(t.products, product)
	products := make([]domain.TrackedProduct, len(t.products))
	copy(products, t.products)
	t.mu.Unlock()

	if err := t.store.SaveProducts(ctx, products); err != nil {
		t.logger.Warn("cache tracked products", "error", err)
	}

	return product, nil
}

// Untrack removes a product. The url-based delete is preferred whenever the
// url is known; the opaque id is only used as a last resort.
func (t *Tracker) Untrack(ctx context.Context, idOrURL string) error {
	product, found := t.find(idOrURL)

	var err error
	switch {
	case found && product.URL != "":
		_, err = t.client.RemoveProductByURL(ctx, product.URL)
	case found:
		_, err = t.client.RemoveProduct(ctx, product.ID)
	default:
		// Unknown locally; take the caller's key at face value.
		_, err = t.client.RemoveProductByURL(ctx, idOrURL)
	}
	if err != nil {
		return fmt.Errorf("remove product: %w", err)
	}

	t.mu.Lock()
	t.products = deleteLocal(t.products, idOrURL)
	products := make([]domain.TrackedProduct, len(t.products))
	copy(products, t.products)
	t.mu.Unlock()

	if err := t.store.SaveProducts(ctx, products); err != nil {
		t.logger.Warn("cache tracked products", "error", err)
	}
	if t.alertLog != nil && found && product.URL != "" {
		if err := t.alertLog.ClearAlert(ctx, product.URL); err != nil {
			t.logger.Warn("clear alert record", "url", product.URL, "error", err)
		}
	}

	return nil
}

// SetAlert updates a product's alert threshold by re-submitting the create
// operation with the same url: the backend upserts by url, so no separate
// update endpoint exists or is called.
func (t *Tracker) SetAlert(ctx context.Context, productURL string, threshold float64) error {
	if _, err := t.client.UpdateThreshold(ctx, productURL, threshold); err != nil {
		return fmt.Errorf("update threshold: %w", err)
	}

	t.mu.Lock()
	for i := range t.products {
		if t.products[i].URL == productURL {
			t.products[i].Threshold = threshold
		}
	}
	products := make([]domain.TrackedProduct, len(t.products))
	copy(products, t.products)
	t.mu.Unlock()

	if err := t.store.SaveProducts(ctx, products); err != nil {
		t.logger.Warn("cache tracked products", "error", err)
	}
	if t.alertLog != nil {
		// A new threshold re-arms the alert.
		if err := t.alertLog.ClearAlert(ctx, productURL); err != nil {
			t.logger.Warn("clear alert record", "url", productURL, "error", err)
		}
	}

	return nil
}

// History fetches and normalizes price samples for a product url, caching
// the result locally for offline rendering.
func (t *Tracker) History(ctx context.Context, productURL string, limit int) ([]domain.PriceHistoryEntry, error) {
	raw, err := t.client.PriceHistory(ctx, productURL, limit)
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}

	entries := normalize.History(raw)
	if err := t.store.SaveHistory(ctx, productURL, entries); err != nil {
		t.logger.Warn("cache price history", "url", productURL, "error", err)
	}
	return entries, nil
}

// Stats resolves statistics for a product: the backend's numbers when it
// has them, a local computation over the history otherwise. Consumers see
// one shape either way.
func (t *Tracker) Stats(ctx context.Context, productURL string) (domain.PriceStatistics, []domain.PriceHistoryEntry, error) {
	entries, err := t.History(ctx, productURL, 0)
	if err != nil {
		return domain.PriceStatistics{}, nil, err
	}

	userID, err := t.userID(ctx)
	if err != nil {
		return domain.PriceStatistics{}, nil, err
	}

	raw, err := t.client.PriceStats(ctx, productURL, userID)
	if err != nil {
		// The stats endpoint is the flakiest across backend versions;
		// history alone is enough to answer.
		t.logger.Debug("stats endpoint unavailable, computing locally", "url", productURL, "error", err)
		raw = nil
	}

	return normalize.Stats(raw, entries), entries, nil
}

// Preferences loads notification channels, preferring the backend copy and
// falling back to the local cache when the call fails.
func (t *Tracker) Preferences(ctx context.Context) (domain.NotificationPreferences, error) {
	raw, err := t.client.NotificationPreferences(ctx)
	if err != nil {
		t.logger.Debug("preferences fetch failed, using cached copy", "error", err)
		return t.store.LoadPreferences(ctx)
	}

	prefs := normalizePreferences(raw)
	if prefs.Empty() {
		return t.store.LoadPreferences(ctx)
	}
	return prefs, nil
}

// SavePreferences validates and persists notification channels, remote
// first, then the local mirror. Invalid input never reaches the network.
func (t *Tracker) SavePreferences(ctx context.Context, prefs domain.NotificationPreferences) error {
	if _, err := t.client.UpdateNotificationPreferences(ctx, prefs); err != nil {
		return err
	}
	if err := t.store.SavePreferences(ctx, prefs); err != nil {
		t.logger.Warn("cache preferences", "error", err)
	}
	return nil
}

func (t *Tracker) userID(ctx context.Context) (string, error) {
	id, err := t.store.UserID(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve user id: %w", err)
	}
	return id, nil
}

func (t *Tracker) find(idOrURL string) (domain.TrackedProduct, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.products {
		if p.ID == idOrURL || p.URL == idOrURL {
			return p, true
		}
	}
	return domain.TrackedProduct{}, false
}

// normalizeOne pulls a single product out of a response that may be the
// record itself or a one-element wrapper.
func normalizeOne(raw any, fallbackURL string) domain.TrackedProduct {
	if record, ok := raw.(map[string]any); ok {
		product := normalize.Product(record)
		if product.URL == "" {
			product.URL = fallbackURL
			if product.ID == "" {
				product.ID = fallbackURL
			}
		}
		return product
	}
	if products := normalize.Products(raw); len(products) > 0 {
		return products[0]
	}
	return domain.TrackedProduct{ID: fallbackURL, URL: fallbackURL, Title: "Unknown Product"}
}

// mergeScraped fills the backend record's gaps with what the page said.
func mergeScraped(product domain.TrackedProduct, scraped domain.ScrapedProduct) domain.TrackedProduct {
	if product.Title == "" || product.Title == "Unknown Product" {
		if scraped.Title != "" {
			product.Title = scraped.Title
		}
	}
	if product.CurrentPrice == 0 {
		product.CurrentPrice = scraped.CurrentPrice
	}
	if product.OriginalPrice == 0 {
		product.OriginalPrice = product.CurrentPrice
	}
	if product.Image == "" {
		product.Image = scraped.Image
	}
	return product
}

func upsertLocal(products []domain.TrackedProduct, product domain.TrackedProduct) []domain.TrackedProduct {
	for i := range products {
		if products[i].URL == product.URL {
			products[i] = product
			return products
		}
	}
	return append(products, product)
}

func deleteLocal(products []domain.TrackedProduct, idOrURL string) []domain.TrackedProduct {
	kept := products[:0]
	for _, p := range products {
		if p.ID == idOrURL || p.URL == idOrURL {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func normalizePreferences(raw any) domain.NotificationPreferences {
	record, ok := raw.(map[string]any)
	if !ok {
		return domain.NotificationPreferences{}
	}
	prefs := domain.NotificationPreferences{}
	if v, ok := record["email"].(string); ok {
		prefs.Email = v
	}
	if v, ok := record["phone_number"].(string); ok {
		prefs.PhoneNumber = v
	} else if v, ok := record["phoneNumber"].(string); ok {
		prefs.PhoneNumber = v
	}
	return prefs
}
