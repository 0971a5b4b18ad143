package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pricetracker/internal/config"
	"pricetracker/internal/domain"
	"pricetracker/internal/ports"
)

// Storage keys mirror what the browser build kept in local storage.
const (
	keyTrackedProducts = "trackedProducts"
	keyUserPreferences = "userPreferences"
	keyPriceHistory    = "priceHistory:" // + product url
	keyUserID          = "userId"
)

// RedisStore implements ports.StateStore over a Redis instance: the
// tracked-product cache, user preferences, per-product history cache, and
// the current-user identifier.
type RedisStore struct {
	client *redis.Client
}

var _ ports.StateStore = (*RedisStore)(nil)

// NewRedisStore connects and pings; a store that cannot reach Redis is not
// worth returning.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// SaveProducts replaces the cached tracked-product list.
func (s *RedisStore) SaveProducts(ctx context.Context, products []domain.TrackedProduct) error {
	return s.setJSON(ctx, keyTrackedProducts, products)
}

// LoadProducts returns the cached list; a missing key is an empty list.
func (s *RedisStore) LoadProducts(ctx context.Context) ([]domain.TrackedProduct, error) {
	var products []domain.TrackedProduct
	if err := s.getJSON(ctx, keyTrackedProducts, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SavePreferences persists the notification channels.
func (s *RedisStore) SavePreferences(ctx context.Context, prefs domain.NotificationPreferences) error {
	return s.setJSON(ctx, keyUserPreferences, prefs)
}

// LoadPreferences returns stored channels; a missing key is the zero value.
func (s *RedisStore) LoadPreferences(ctx context.Context) (domain.NotificationPreferences, error) {
	var prefs domain.NotificationPreferences
	if err := s.getJSON(ctx, keyUserPreferences, &prefs); err != nil {
		return domain.NotificationPreferences{}, err
	}
	return prefs, nil
}

// SaveHistory caches normalized history entries for one product url.
func (s *RedisStore) SaveHistory(ctx context.Context, productURL string, entries []domain.PriceHistoryEntry) error {
	return s.setJSON(ctx, keyPriceHistory+productURL, entries)
}

// LoadHistory returns the cached history for one product url, if any.
func (s *RedisStore) LoadHistory(ctx context.Context, productURL string) ([]domain.PriceHistoryEntry, error) {
	var entries []domain.PriceHistoryEntry
	if err := s.getJSON(ctx, keyPriceHistory+productURL, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// UserID returns the stable current-user identifier, minting one on first
// use so every installation gets its own backend scope.
func (s *RedisStore) UserID(ctx context.Context) (string, error) {
	id, err := s.client.Get(ctx, keyUserID).Result()
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("load user id: %w", err)
	}

	id = uuid.NewString()
	if err := s.client.Set(ctx, keyUserID, id, 0).Err(); err != nil {
		return "", fmt.Errorf("store user id: %w", err)
	}
	return id, nil
}

func (s *RedisStore) setJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) getJSON(ctx context.Context, key string, value any) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, value); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
