package api

import "strings"

// Catalog maps logical backend operations to URLs under one base. Nothing
// outside this type concatenates paths onto the base URL.
type Catalog struct {
	base string
}

// NewCatalog trims a trailing slash so path joins stay predictable.
func NewCatalog(baseURL string) Catalog {
	return Catalog{base: strings.TrimSuffix(baseURL, "/")}
}

func (c Catalog) Products() string { return c.base + "/products" }

func (c Catalog) Product(id string) string { return c.base + "/products/" + id }

func (c Catalog) ProductCheck() string { return c.base + "/products/check" }

func (c Catalog) UpdateAll() string { return c.base + "/products/update-all" }

func (c Catalog) HistoryByURL() string { return c.base + "/history/by-url" }

func (c Catalog) StatsByURL() string { return c.base + "/history/stats/by-url" }

// ProductStats is the nested statistics route older backends expose.
func (c Catalog) ProductStats(id string) string { return c.base + "/history/" + id + "/stats" }

func (c Catalog) Notifications() string { return c.base + "/notifications" }

func (c Catalog) Notify() string { return c.base + "/notify" }

func (c Catalog) TrackCheck() string { return c.base + "/track/check" }

func (c Catalog) History() string { return c.base + "/history" }

func (c Catalog) HistoryEntry(id string) string { return c.base + "/history/" + id }
