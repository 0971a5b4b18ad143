package domain

import "time"

// TrackedProduct is the canonical shape of a product under price
// surveillance, independent of whatever the backend happened to return.
type TrackedProduct struct {
	ID            string  `json:"id"`
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	CurrentPrice  float64 `json:"currentPrice"`
	OriginalPrice float64 `json:"originalPrice"`
	Image         string  `json:"image,omitempty"`
	Threshold     float64 `json:"threshold,omitempty"`
}

// AlertDue reports whether the alert condition holds: a threshold is set
// and the current price is at or below it.
func (p TrackedProduct) AlertDue() bool {
	return p.Threshold > 0 && p.CurrentPrice <= p.Threshold
}

// Key returns the identifier callers should use to address the product.
// The url is the stable natural key across backend versions; the id only
// matters when the backend never told us the url.
func (p TrackedProduct) Key() string {
	if p.URL != "" {
		return p.URL
	}
	return p.ID
}

// PriceHistoryEntry is one observed price sample. A zero Timestamp is the
// explicit "unknown" sentinel: it sorts earliest for chart ordering and is
// rendered via TimestampLabel, never as a fabricated date.
type PriceHistoryEntry struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// TimestampKnown reports whether the sample carries a real observation time.
func (e PriceHistoryEntry) TimestampKnown() bool {
	return !e.Timestamp.IsZero()
}

// TimestampLabel renders the observation time for display.
func (e PriceHistoryEntry) TimestampLabel() string {
	if e.Timestamp.IsZero() {
		return "Unknown"
	}
	return e.Timestamp.Format("2006-01-02 15:04:05")
}

// PriceStatistics aggregates a history window. Whether the numbers came from
// the backend or were computed locally is invisible to consumers.
type PriceStatistics struct {
	Lowest         float64 `json:"lowest"`
	Highest        float64 `json:"highest"`
	Average        float64 `json:"average"`
	FirstPrice     float64 `json:"firstPrice"`
	CurrentPrice   float64 `json:"currentPrice"`
	ChangeAbsolute float64 `json:"changeAbsolute"`
	ChangePercent  float64 `json:"changePercent"`
	TotalEntries   int     `json:"totalEntries"`
}

// ScrapedProduct is what a marketplace page yields before the backend has
// assigned anything.
type ScrapedProduct struct {
	URL          string
	ASIN         string
	Title        string
	CurrentPrice float64
	Image        string
}
