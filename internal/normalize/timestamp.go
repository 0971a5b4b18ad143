package normalize

import (
	"regexp"
	"time"
)

// Some backend generations emit microsecond (or worse) precision that the
// usual layouts reject; anything past milliseconds is dropped before parsing.
var fractionExpr = regexp.MustCompile(`\.(\d{3})\d+`)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp parses a raw timestamp string into an instant. An empty or
// unparsable input yields the zero time — the explicit "unknown" sentinel,
// which sorts earliest and renders as "Unknown" — never a wrong date and
// never a panic.
func Timestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	cleaned := fractionExpr.ReplaceAllString(raw, ".$1")
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, cleaned); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
