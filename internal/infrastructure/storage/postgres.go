package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"pricetracker/internal/domain"
	"pricetracker/internal/ports"
)

// PostgresAlertLog persists fired alerts so repeated sweeps do not
// re-notify a product whose price merely stayed below its threshold.
type PostgresAlertLog struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.AlertLog = (*PostgresAlertLog)(nil)

// NewPostgresAlertLog wires a sql.DB implementation.
func NewPostgresAlertLog(db *sql.DB) *PostgresAlertLog {
	return &PostgresAlertLog{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// AlreadyAlerted returns a map with product urls that already have a fired
// alert on record.
func (l *PostgresAlertLog) AlreadyAlerted(ctx context.Context, productURLs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if l.db == nil || len(productURLs) == 0 {
		return result, nil
	}

	query, args, err := l.builder.
		Select("product_url").
		From("fired_alerts").
		Where("product_url = ANY(?)", pq.StringArray(productURLs)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build alerted query: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fired alerts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan product url: %w", err)
		}
		result[u] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveAlert upserts the fired-alert snapshot; re-firing for the same url
// refreshes the recorded price and time.
func (l *PostgresAlertLog) SaveAlert(ctx context.Context, alert domain.Alert) error {
	if l.db == nil {
		return nil
	}

	query, args, err := l.builder.
		Insert("fired_alerts").
		Columns("product_url", "title", "price", "threshold", "fired_at").
		Values(alert.ProductURL, alert.Title, alert.Price, alert.Threshold, alert.FiredAt).
		Suffix(`ON CONFLICT (product_url) DO UPDATE
                SET price = EXCLUDED.price,
                    threshold = EXCLUDED.threshold,
                    fired_at = EXCLUDED.fired_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build alert insert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert fired alert: %w", err)
	}
	return nil
}

// ClearAlert drops the record for a product url, re-arming its alert. Used
// when a threshold changes or the product is untracked.
func (l *PostgresAlertLog) ClearAlert(ctx context.Context, productURL string) error {
	if l.db == nil {
		return nil
	}

	query, args, err := l.builder.
		Delete("fired_alerts").
		Where(sq.Eq{"product_url": productURL}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build alert delete: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete fired alert: %w", err)
	}
	return nil
}
