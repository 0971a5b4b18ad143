package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"pricetracker/internal/api"
	"pricetracker/internal/domain"
	"pricetracker/internal/ports"
)

// memStore is an in-memory ports.StateStore for tests.
type memStore struct {
	mu       sync.Mutex
	products []domain.TrackedProduct
	prefs    domain.NotificationPreferences
	history  map[string][]domain.PriceHistoryEntry
	userID   string
}

func newMemStore() *memStore {
	return &memStore{history: map[string][]domain.PriceHistoryEntry{}, userID: "test-user"}
}

func (m *memStore) SaveProducts(_ context.Context, products []domain.TrackedProduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
	return nil
}

func (m *memStore) LoadProducts(_ context.Context) ([]domain.TrackedProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products, nil
}

func (m *memStore) SavePreferences(_ context.Context, prefs domain.NotificationPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = prefs
	return nil
}

func (m *memStore) LoadPreferences(_ context.Context) (domain.NotificationPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

func (m *memStore) SaveHistory(_ context.Context, url string, entries []domain.PriceHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[url] = entries
	return nil
}

func (m *memStore) LoadHistory(_ context.Context, url string) ([]domain.PriceHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[url], nil
}

func (m *memStore) UserID(_ context.Context) (string, error) {
	return m.userID, nil
}

// stubScraper returns a fixed scrape result for any url.
type stubScraper struct {
	product domain.ScrapedProduct
}

func (s stubScraper) Supports(string) bool { return true }

func (s stubScraper) Scrape(_ context.Context, pageURL string) (domain.ScrapedProduct, error) {
	p := s.product
	p.URL = pageURL
	return p, nil
}

type stubResolver struct{ scraper ports.Scraper }

func (r stubResolver) Resolve(string) (ports.Scraper, error) { return r.scraper, nil }

func newTracker(t *testing.T, handler http.HandlerFunc) (*Tracker, *memStore, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := newMemStore()
	tracker := NewTracker(TrackerDeps{
		Client:   api.NewClient(server.URL, server.Client()),
		Store:    store,
		Scrapers: stubResolver{scraper: stubScraper{product: domain.ScrapedProduct{Title: "Kettle", CurrentPrice: 999, Image: "img"}}},
	})
	return tracker, store, server
}

func TestRefreshNormalizesAndCaches(t *testing.T) {
	t.Parallel()

	tracker, store, _ := newTracker(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("user_id") != "test-user" {
			t.Errorf("missing user scope: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"products":[{"url":"u1","title":"Kettle","current_price":450,"threshold":400}]}`))
	})

	products, err := tracker.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if len(products) != 1 || products[0].CurrentPrice != 450 {
		t.Fatalf("unexpected products: %+v", products)
	}
	cached, _ := store.LoadProducts(context.Background())
	if len(cached) != 1 || cached[0].URL != "u1" {
		t.Fatalf("products not cached: %+v", cached)
	}
}

func TestRefreshFailureKeepsPriorState(t *testing.T) {
	t.Parallel()

	healthy := true
	tracker, _, _ := newTracker(t, func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"backend down"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"url":"u1","title":"Kettle","current_price":450}]`))
	})

	if _, err := tracker.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}

	healthy = false
	if _, err := tracker.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh to fail")
	}

	products := tracker.Products()
	if len(products) != 1 || products[0].URL != "u1" {
		t.Fatalf("failed refresh must not clobber state, got %+v", products)
	}
}

func TestUntrackPrefersURLDelete(t *testing.T) {
	t.Parallel()

	var deletes []string
	tracker, _, _ := newTracker(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"id":"p1","url":"https://amazon.in/dp/B01","title":"Kettle","current_price":450}]`))
		case http.MethodDelete:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if u, ok := body["url"].(string); ok {
				deletes = append(deletes, "url:"+u)
			} else {
				deletes = append(deletes, "id:"+r.URL.Path)
			}
			_, _ = w.Write([]byte(`{}`))
		}
	})

	if _, err := tracker.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// Both id and url are known; the url-based call must win.
	if err := tracker.Untrack(context.Background(), "p1"); err != nil {
		t.Fatalf("Untrack: %v", err)
	}

	if len(deletes) != 1 || deletes[0] != "url:https://amazon.in/dp/B01" {
		t.Fatalf("expected url-based delete, got %v", deletes)
	}
	if len(tracker.Products()) != 0 {
		t.Fatalf("product not pruned locally: %+v", tracker.Products())
	}
}

func TestSetAlertUpserts(t *testing.T) {
	t.Parallel()

	var posts []map[string]any
	tracker, _, _ := newTracker(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"url":"u1","title":"Kettle","current_price":450,"threshold":400}]`))
		case http.MethodPost:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			posts = append(posts, body)
			_, _ = w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected method %s for alert update", r.Method)
		}
	})

	if _, err := tracker.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := tracker.SetAlert(context.Background(), "u1", 300); err != nil {
		t.Fatalf("SetAlert: %v", err)
	}

	if len(posts) != 1 || posts[0]["url"] != "u1" || posts[0]["threshold"] != 300.0 {
		t.Fatalf("expected create-with-url upsert, got %v", posts)
	}
	if got := tracker.Products()[0].Threshold; got != 300 {
		t.Fatalf("local threshold not updated: %v", got)
	}
}

func TestTrackMergesScrapedData(t *testing.T) {
	t.Parallel()

	tracker, _, server := newTracker(t, func(w http.ResponseWriter, r *http.Request) {
		// Backend answers the upsert with a bare id only.
		_, _ = w.Write([]byte(`{"id":"p9"}`))
	})
	_ = server

	product, err := tracker.Track(context.Background(), "https://amazon.in/dp/B09", 0)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}

	if product.Title != "Kettle" {
		t.Fatalf("scraped title not merged: %+v", product)
	}
	if product.CurrentPrice != 999 || product.OriginalPrice != 999 {
		t.Fatalf("scraped price not merged: %+v", product)
	}
	if product.Threshold != 999 {
		t.Fatalf("threshold should default to scraped price, got %v", product.Threshold)
	}
	if len(tracker.Products()) != 1 {
		t.Fatalf("product not appended: %+v", tracker.Products())
	}
}

func TestStatsFallsBackToLocalComputation(t *testing.T) {
	t.Parallel()

	tracker, _, _ := newTracker(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/history/by-url":
			_, _ = w.Write([]byte(`{"entries":[{"price":100,"timestamp":"2025-01-01T00:00:00Z"},{"price":80},{"price":120}]}`))
		case "/history/stats/by-url":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"no stats"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	stats, entries, err := tracker.Stats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("unexpected history: %+v", entries)
	}
	if stats.Lowest != 80 || stats.Highest != 120 || stats.Average != 100 || stats.ChangePercent != 20 {
		t.Fatalf("unexpected computed stats: %+v", stats)
	}
}

func TestSavePreferencesValidatesLocally(t *testing.T) {
	t.Parallel()

	requests := 0
	tracker, store, _ := newTracker(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{}`))
	})

	err := tracker.SavePreferences(context.Background(), domain.NotificationPreferences{})
	if !api.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if requests != 0 {
		t.Fatal("invalid preferences reached the network")
	}

	prefs := domain.NotificationPreferences{Email: "user@example.com"}
	if err := tracker.SavePreferences(context.Background(), prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	if stored, _ := store.LoadPreferences(context.Background()); stored != prefs {
		t.Fatalf("preferences not mirrored locally: %+v", stored)
	}
}
