package scraper

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the absolute timestamp format stored in the
// database and used for sorting and date comparisons downstream.
const TimestampLayout = "2006-01-02 15:04:05"

// ResolveRelative converts a provider's relative date phrase ("2 hours
// ago", "a day ago", "yesterday") into an absolute timestamp string.
// Unparseable input returns the empty string so that a failed parse is
// distinguishable from "today"; it never falls back to now.
func ResolveRelative(dateStr string, now time.Time) string {
	parts := strings.Fields(dateStr)

	if len(parts) != 2 && len(parts) != 3 {
		return ""
	}

	value := 1
	if parts[0] != "a" && parts[0] != "last" {
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return ""
		}
		value = n
	}

	unit := parts[1]

	var resolved time.Time
	switch {
	case strings.HasPrefix(unit, "minute"):
		resolved = now.Add(-time.Duration(value) * time.Minute)
	case strings.HasPrefix(unit, "hour"):
		resolved = now.Add(-time.Duration(value) * time.Hour)
	case strings.HasPrefix(unit, "day"):
		resolved = now.AddDate(0, 0, -value)
	case strings.HasPrefix(unit, "week"):
		resolved = now.AddDate(0, 0, -7*value)
	case strings.HasPrefix(unit, "month"):
		resolved = now.AddDate(0, -value, 0)
	case strings.HasPrefix(unit, "year"):
		resolved = now.AddDate(-value, 0, 0)
	case strings.HasPrefix(unit, "yesterday"):
		resolved = now.AddDate(0, 0, -1)
	case strings.HasPrefix(unit, "today"):
		resolved = now
	default:
		slog.Warn("Unknown relative date format", "input", dateStr)
		return ""
	}

	return resolved.Format(TimestampLayout)
}

// ResolveAbsolute parses a provider's absolute date string using the
// given layout. When the layout carries no year (e.g. "2 Jan, 3:04 PM")
// the current year is assumed; a result in the future rolls back one
// year, which handles December articles read in January. A missing
// layout is a configuration error, not a parse failure.
func ResolveAbsolute(dateStr, layout string, now time.Time) (string, error) {
	if layout == "" {
		return "", fmt.Errorf("layout is required for absolute date parsing")
	}

	parsed, err := time.ParseInLocation(layout, dateStr, now.Location())
	if err != nil {
		slog.Warn("Failed to parse absolute date", "input", dateStr, "error", err)
		return "", nil
	}

	if !strings.Contains(layout, "2006") {
		parsed = parsed.AddDate(now.Year(), 0, 0)
		if parsed.After(now) {
			parsed = parsed.AddDate(-1, 0, 0)
		}
	}

	return parsed.Format(TimestampLayout), nil
}
