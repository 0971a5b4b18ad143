// Package normalize absorbs the response-shape variance of the tracking
// backend. Several backend generations are still in the wild: fields arrive
// in snake_case or camelCase, lists arrive bare or under a wrapper key, and
// statistics may be missing entirely. Everything downstream sees only the
// canonical domain entities.
package normalize

import (
	"strconv"

	"pricetracker/internal/domain"
)

const defaultTitle = "Unknown Product"

// Products accepts either a bare list or an object with a "products" field
// and returns canonical tracked products. Unrecognized elements are skipped.
func Products(raw any) []domain.TrackedProduct {
	items := unwrapList(raw, "products")
	products := make([]domain.TrackedProduct, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		products = append(products, Product(record))
	}
	return products
}

// Product maps one raw record to the canonical shape. Each field resolves
// through an ordered fallback chain: snake_case name first, camelCase
// alternate second, default last. Prices come out as numbers no matter how
// the backend spelled them.
func Product(record map[string]any) domain.TrackedProduct {
	current := pickNumber(record, 0, "current_price", "currentPrice")
	p := domain.TrackedProduct{
		URL:           pickString(record, "", "url"),
		Title:         pickString(record, defaultTitle, "title"),
		CurrentPrice:  current,
		OriginalPrice: pickNumber(record, current, "original_price", "originalPrice"),
		Image:         pickString(record, "", "image", "image_url", "imageUrl"),
		Threshold:     pickNumber(record, 0, "threshold", "alert_price", "alertPrice"),
	}
	p.ID = pickString(record, p.URL, "id", "product_id", "productId")
	return p
}

// History accepts a bare list or an object exposing the list under
// "entries", "history", or "data" — checked in that order, first match wins.
func History(raw any) []domain.PriceHistoryEntry {
	items := unwrapList(raw, "entries", "history", "data")
	entries := make([]domain.PriceHistoryEntry, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entries = append(entries, domain.PriceHistoryEntry{
			Price:     pickNumber(record, 0, "price", "current_price", "currentPrice"),
			Timestamp: Timestamp(pickString(record, "", "timestamp", "date", "created_at", "time")),
		})
	}
	return entries
}

// unwrapList returns raw itself when it already is a list, otherwise the
// first wrapper key that holds one.
func unwrapList(raw any, keys ...string) []any {
	if items, ok := raw.([]any); ok {
		return items
	}
	record, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range keys {
		if items, ok := record[key].([]any); ok {
			return items
		}
	}
	return nil
}

// pickNumber resolves the first key present to a float64. JSON numbers and
// numeric strings both count; anything else falls through to the next key.
func pickNumber(record map[string]any, fallback float64, keys ...string) float64 {
	for _, key := range keys {
		value, ok := record[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return fallback
}

// pickString resolves the first key holding a non-empty string.
func pickString(record map[string]any, fallback string, keys ...string) string {
	for _, key := range keys {
		if v, ok := record[key].(string); ok && v != "" {
			return v
		}
	}
	return fallback
}
