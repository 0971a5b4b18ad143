package api

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"pricetracker/internal/domain"
)

var (
	emailExpr = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneExpr = regexp.MustCompile(`^\+?[\d\s\-()]{7,}$`)
)

// Client is a thin typed wrapper over the tracking backend: one method per
// operation, each shaping its payload, delegating to Transport, and handing
// the decoded result back untouched. Response normalization is the
// normalize package's job, not the client's.
type Client struct {
	transport *Transport
	endpoints Catalog
}

// NewClient wires a transport against the configured base URL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		transport: NewTransport(httpClient),
		endpoints: NewCatalog(baseURL),
	}
}

// AddProduct starts tracking a product, or updates its threshold when the
// url is already tracked: the backend treats create-with-existing-url as an
// upsert keyed by url.
func (c *Client) AddProduct(ctx context.Context, productURL string, threshold float64) (any, error) {
	payload := map[string]any{"url": productURL}
	if threshold > 0 {
		payload["threshold"] = threshold
	}
	return c.transport.Send(ctx, http.MethodPost, c.endpoints.Products(), payload, nil)
}

// UpdateThreshold changes a product's alert price by re-submitting the
// create operation with the same url; there is no separate update endpoint.
func (c *Client) UpdateThreshold(ctx context.Context, productURL string, threshold float64) (any, error) {
	return c.AddProduct(ctx, productURL, threshold)
}

// ListProducts fetches tracked products, optionally scoped to a user.
func (c *Client) ListProducts(ctx context.Context, userID string) (any, error) {
	query := url.Values{}
	if userID != "" {
		query.Set("user_id", userID)
	}
	return c.transport.Send(ctx, http.MethodGet, c.endpoints.Products(), nil, query)
}

// RemoveProduct deletes a tracked product by its backend id.
func (c *Client) RemoveProduct(ctx context.Context, id string) (any, error) {
	return c.transport.Send(ctx, http.MethodDelete, c.endpoints.Product(id), nil, nil)
}

// RemoveProductByURL deletes a tracked product by its canonical url. Prefer
// this over RemoveProduct whenever the url is known: ids have not been
// stable across backend versions, urls have.
func (c *Client) RemoveProductByURL(ctx context.Context, productURL string) (any, error) {
	payload := map[string]any{"url": productURL}
	return c.transport.Send(ctx, http.MethodDelete, c.endpoints.Products(), payload, nil)
}

// CheckProduct triggers an on-demand price check for one product.
func (c *Client) CheckProduct(ctx context.Context, productURL string) (any, error) {
	payload := map[string]any{"url": productURL}
	return c.transport.Send(ctx, http.MethodPost, c.endpoints.ProductCheck(), payload, nil)
}

// UpdateAllProducts asks the backend to refresh every tracked product.
func (c *Client) UpdateAllProducts(ctx context.Context) (any, error) {
	return c.transport.Send(ctx, http.MethodPost, c.endpoints.UpdateAll(), map[string]any{}, nil)
}

// PriceHistory fetches observed price samples for a product url. A limit
// of zero means "backend default".
func (c *Client) PriceHistory(ctx context.Context, productURL string, limit int) (any, error) {
	query := url.Values{}
	query.Set("url", productURL)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return c.transport.Send(ctx, http.MethodGet, c.endpoints.HistoryByURL(), nil, query)
}

// PriceStats fetches backend-computed statistics for a product url. The
// backend may omit statistics entirely; normalize.Stats recomputes them from
// history in that case.
func (c *Client) PriceStats(ctx context.Context, productURL, userID string) (any, error) {
	query := url.Values{}
	query.Set("url", productURL)
	if userID != "" {
		query.Set("user_id", userID)
	}
	return c.transport.Send(ctx, http.MethodGet, c.endpoints.StatsByURL(), nil, query)
}

// NotificationPreferences fetches the stored contact channels.
func (c *Client) NotificationPreferences(ctx context.Context) (any, error) {
	return c.transport.Send(ctx, http.MethodGet, c.endpoints.Notifications(), nil, nil)
}

// UpdateNotificationPreferences persists contact channels after local
// validation; an invalid payload never reaches the network.
func (c *Client) UpdateNotificationPreferences(ctx context.Context, prefs domain.NotificationPreferences) (any, error) {
	if err := ValidatePreferences(prefs); err != nil {
		return nil, err
	}
	payload := map[string]any{
		"email":        prefs.Email,
		"phone_number": prefs.PhoneNumber,
	}
	return c.transport.Send(ctx, http.MethodPut, c.endpoints.Notifications(), payload, nil)
}

// SendNotification asks the backend to deliver an ad-hoc notification.
func (c *Client) SendNotification(ctx context.Context, payload map[string]any) (any, error) {
	return c.transport.Send(ctx, http.MethodPost, c.endpoints.Notify(), payload, nil)
}

// CheckAndAlert triggers the backend's check-and-alert sweep.
func (c *Client) CheckAndAlert(ctx context.Context) (any, error) {
	return c.transport.Send(ctx, http.MethodPost, c.endpoints.TrackCheck(), map[string]any{}, nil)
}

// AllHistory fetches the aggregate history across all products.
func (c *Client) AllHistory(ctx context.Context) (any, error) {
	return c.transport.Send(ctx, http.MethodGet, c.endpoints.History(), nil, nil)
}

// DeleteHistoryEntry removes one history entry by id.
func (c *Client) DeleteHistoryEntry(ctx context.Context, id string) (any, error) {
	return c.transport.Send(ctx, http.MethodDelete, c.endpoints.HistoryEntry(id), nil, nil)
}

// ValidatePreferences enforces the local rules for contact channels: at
// least one channel set, and each set channel well-formed.
func ValidatePreferences(prefs domain.NotificationPreferences) error {
	if prefs.Empty() {
		return &ValidationError{Message: "at least one of email or phone number is required"}
	}
	if prefs.Email != "" && !emailExpr.MatchString(prefs.Email) {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if prefs.PhoneNumber != "" {
		compact := strings.ReplaceAll(prefs.PhoneNumber, " ", "")
		if !phoneExpr.MatchString(compact) {
			return &ValidationError{Field: "phone_number", Message: "invalid phone number"}
		}
	}
	return nil
}
