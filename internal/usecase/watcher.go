package usecase

import (
	"context"
	"log/slog"
	"time"

	"pricetracker/internal/api"
	"pricetracker/internal/domain"
	"pricetracker/internal/normalize"
	"pricetracker/internal/ports"
)

// WatcherDeps wires the adapters needed by the periodic sweep.
type WatcherDeps struct {
	Client   *api.Client
	Store    ports.StateStore
	AlertLog ports.AlertLog
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// Watcher is the background counterpart of the popup: on every tick it asks
// the backend to refresh prices, re-fetches the full tracked list (no
// incremental merging), caches it, and fires local alerts for products at
// or below their threshold. Failures are logged and left for the next tick;
// nothing here is fatal.
type Watcher struct {
	client   *api.Client
	store    ports.StateStore
	alertLog ports.AlertLog
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewWatcher constructs the sweep.
func NewWatcher(deps WatcherDeps) *Watcher {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		client:   deps.Client,
		store:    deps.Store,
		alertLog: deps.AlertLog,
		notifier: deps.Notifier,
		logger:   logger,
	}
}

// Sweep runs one full pass and returns the products that triggered a new
// alert.
func (w *Watcher) Sweep(ctx context.Context, now time.Time) ([]domain.TrackedProduct, error) {
	if _, err := w.client.UpdateAllProducts(ctx); err != nil {
		// Stale prices still beat no sweep at all.
		w.logger.Warn("bulk refresh failed, using last known prices", "error", err)
	}

	userID, err := w.store.UserID(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := w.client.ListProducts(ctx, userID)
	if err != nil {
		return nil, err
	}
	products := normalize.Products(raw)

	if err := w.store.SaveProducts(ctx, products); err != nil {
		w.logger.Warn("cache tracked products", "error", err)
	}

	due := make([]domain.TrackedProduct, 0)
	for _, p := range products {
		if p.AlertDue() {
			due = append(due, p)
		}
	}
	if len(due) == 0 {
		w.logger.Debug("sweep complete", "tracked", len(products), "alerts", 0)
		return nil, nil
	}

	alerted := map[string]bool{}
	if w.alertLog != nil {
		urls := make([]string, 0, len(due))
		for _, p := range due {
			urls = append(urls, p.Key())
		}
		alerted, err = w.alertLog.AlreadyAlerted(ctx, urls)
		if err != nil {
			w.logger.Warn("load fired alerts, deduplication disabled for this sweep", "error", err)
			alerted = map[string]bool{}
		}
	}

	var fired []domain.TrackedProduct
	for _, p := range due {
		if alerted[p.Key()] {
			continue
		}

		if w.notifier != nil {
			if err := w.notifier.NotifyAlert(ctx, p); err != nil {
				w.logger.Warn("deliver alert", "url", p.URL, "error", err)
				continue
			}
		}

		if w.alertLog != nil {
			err := w.alertLog.SaveAlert(ctx, domain.Alert{
				ProductURL: p.Key(),
				Title:      p.Title,
				Price:      p.CurrentPrice,
				Threshold:  p.Threshold,
				FiredAt:    now,
			})
			if err != nil {
				w.logger.Warn("record fired alert", "url", p.URL, "error", err)
			}
		}

		fired = append(fired, p)
	}

	// The backend runs its own notification channels (email/SMS) off the
	// same sweep trigger.
	if _, err := w.client.CheckAndAlert(ctx); err != nil {
		w.logger.Warn("backend check-and-alert failed", "error", err)
	}

	w.logger.Info("sweep complete", "tracked", len(products), "alerts", len(fired))
	return fired, nil
}
