package normalize

import "pricetracker/internal/domain"

// Stats resolves statistics for a history window. The ordered policy:
//
//  1. a statistics response with a "statistics" sub-object → that object;
//  2. a statistics response without one → the response object itself;
//  3. no response, or one carrying no usable numbers → recompute from the
//     normalized history.
//
// Consumers cannot tell backend-sourced and locally-computed numbers apart.
func Stats(raw any, history []domain.PriceHistoryEntry) domain.PriceStatistics {
	if record := statsRecord(raw); record != nil {
		stats := domain.PriceStatistics{
			Lowest:         pickNumber(record, 0, "lowest_price", "min_price", "minPrice", "lowest"),
			Highest:        pickNumber(record, 0, "highest_price", "max_price", "maxPrice", "highest"),
			Average:        pickNumber(record, 0, "average_price", "avg_price", "avgPrice", "average"),
			FirstPrice:     pickNumber(record, 0, "first_price", "firstPrice"),
			CurrentPrice:   pickNumber(record, 0, "current_price", "currentPrice"),
			ChangeAbsolute: pickNumber(record, 0, "price_change", "priceChange", "change"),
			ChangePercent:  pickNumber(record, 0, "price_change_percent", "priceChangePercent", "changePercent"),
			TotalEntries:   int(pickNumber(record, 0, "total_entries", "totalEntries", "count")),
		}
		if stats != (domain.PriceStatistics{}) {
			return stats
		}
	}
	return Compute(history)
}

// Compute derives statistics from a history list. It is pure: the same list
// always yields the same result, and an empty list yields all zeros rather
// than a division-by-zero fault.
func Compute(history []domain.PriceHistoryEntry) domain.PriceStatistics {
	stats := domain.PriceStatistics{TotalEntries: len(history)}
	if len(history) == 0 {
		return stats
	}

	var sum float64
	stats.Lowest = history[0].Price
	stats.Highest = history[0].Price
	for _, entry := range history {
		sum += entry.Price
		if entry.Price < stats.Lowest {
			stats.Lowest = entry.Price
		}
		if entry.Price > stats.Highest {
			stats.Highest = entry.Price
		}
	}

	stats.Average = sum / float64(len(history))
	stats.FirstPrice = history[0].Price
	stats.CurrentPrice = history[len(history)-1].Price
	stats.ChangeAbsolute = stats.CurrentPrice - stats.FirstPrice
	if stats.FirstPrice != 0 {
		stats.ChangePercent = stats.ChangeAbsolute / stats.FirstPrice * 100
	}
	return stats
}

func statsRecord(raw any) map[string]any {
	record, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	if nested, ok := record["statistics"].(map[string]any); ok {
		return nested
	}
	return record
}
