package matcher

import (
	"math"
	"strings"
	"time"

	"bank-ledger-reconciler/pkg/logger"
)

// dateLayouts are the ISO-8601 shapes accepted for raw dates: extended or
// basic calendar dates, optionally followed by a time of hour, minute or
// second precision and an offset of +HH:MM, +HHMM or +HH. Values without an
// offset are read as UTC.
var dateLayouts = isoLayouts()

func isoLayouts() []string {
	days := []string{"2006-01-02", "20060102"}
	clocks := []string{"15:04:05.999999999", "15:04", "15", "150405.999999999", "1504"}
	zones := []string{"Z07:00", "Z0700", "Z07", ""}

	layouts := append([]string(nil), days...)
	for _, day := range days {
		for _, sep := range []string{"T", " "} {
			for _, clock := range clocks {
				for _, zone := range zones {
					layouts = append(layouts, day+sep+clock+zone)
				}
			}
		}
	}
	return layouts
}

// ParseDate normalizes a raw date value into a comparable time.
//
// Strings are parsed as ISO-8601, with a "Z" suffix read as "+00:00".
// time.Time and *time.Time values are used as is. Empty, nil and zero values are
// absent. Anything that cannot be parsed is logged at warning level and reported
// as absent; ParseDate never fails.
func ParseDate(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case string:
		if v == "" {
			return time.Time{}, false
		}
		if t, ok := parseISODate(v); ok {
			return t, true
		}
	}

	logger.GetGlobalLogger().
		WithComponent("date_normalizer").
		WithField("value", value).
		Warn("Failed to parse date")
	return time.Time{}, false
}

func parseISODate(s string) (time.Time, bool) {
	s = strings.Replace(s, "Z", "+00:00", 1)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysBetween returns the absolute number of whole days between a and b.
// The signed difference is floored before taking the absolute value, so
// a gap of 1.5 days counts as 1 one way round and 2 the other.
func DaysBetween(a, b time.Time) int {
	days := int(math.Floor(a.Sub(b).Hours() / 24))
	if days < 0 {
		return -days
	}
	return days
}
