package scraper

import (
	"fmt"

	"pricetracker/internal/ports"
)

// Registry resolves the scraper responsible for a given page url. New
// marketplaces register here and nowhere else.
type Registry struct {
	scrapers []ports.Scraper
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a scraper; resolution checks in registration order.
func (r *Registry) Register(s ports.Scraper) {
	r.scrapers = append(r.scrapers, s)
}

// Resolve returns the first scraper claiming the url, or an error when no
// marketplace matches.
func (r *Registry) Resolve(pageURL string) (ports.Scraper, error) {
	for _, s := range r.scrapers {
		if s.Supports(pageURL) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no scraper supports %s", pageURL)
}
