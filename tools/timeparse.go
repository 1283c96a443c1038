package tools

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeAgo = regexp.MustCompile(`^(\d+|a|an|one)\s+(minute|hour|day|week|month|year)s?\s+ago$`)

var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimeMarker resolves an ISO date/time, a Unix timestamp or a relative
// expression ("yesterday", "last week", "3 days ago") to an instant.
// Relative expressions are measured from now; dates without a zone use
// now's location.
func ParseTimeMarker(marker string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(marker))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time marker")
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch s {
	case "now":
		return now, nil
	case "today":
		return midnight, nil
	case "yesterday":
		return midnight.AddDate(0, 0, -1), nil
	case "last week", "past week", "this week":
		return now.AddDate(0, 0, -7), nil
	case "last month", "past month", "this month":
		return now.AddDate(0, -1, 0), nil
	case "last year", "past year", "this year":
		return now.AddDate(-1, 0, 0), nil
	}

	if m := relativeAgo.FindStringSubmatch(s); m != nil {
		n := 1
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
		switch m[2] {
		case "minute":
			return now.Add(-time.Duration(n) * time.Minute), nil
		case "hour":
			return now.Add(-time.Duration(n) * time.Hour), nil
		case "day":
			return now.AddDate(0, 0, -n), nil
		case "week":
			return now.AddDate(0, 0, -7*n), nil
		case "month":
			return now.AddDate(0, -n, 0), nil
		case "year":
			return now.AddDate(-n, 0, 0), nil
		}
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		// 1e11 seconds is far in the future, so larger values are milliseconds
		if n >= 100_000_000_000 {
			return time.UnixMilli(n).In(now.Location()), nil
		}
		return time.Unix(n, 0).In(now.Location()), nil
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(marker), now.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time marker %q", marker)
}
