package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeMarker(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	midnight := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		marker string
		want   time.Time
	}{
		{"now", now},
		{"today", midnight},
		{"Yesterday", midnight.AddDate(0, 0, -1)},
		{"last week", now.AddDate(0, 0, -7)},
		{"past month", now.AddDate(0, -1, 0)},
		{"3 days ago", now.AddDate(0, 0, -3)},
		{"an hour ago", now.Add(-time.Hour)},
		{"2 weeks ago", now.AddDate(0, 0, -14)},
		{"90 minutes ago", now.Add(-90 * time.Minute)},
		{"2024-01-31", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"2024-01-31 08:15", time.Date(2024, 1, 31, 8, 15, 0, 0, time.UTC)},
		{"2024-01-31T08:15:30Z", time.Date(2024, 1, 31, 8, 15, 30, 0, time.UTC)},
		{"1700000000", time.Unix(1700000000, 0).UTC()},
		{"1700000000000", time.UnixMilli(1700000000000).UTC()},
	}
	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			got, err := ParseTimeMarker(tt.marker, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseTimeMarkerRejectsGarbage(t *testing.T) {
	now := time.Now()
	for _, marker := range []string{"", "   ", "soonish", "31/01/2024", "three days ago"} {
		_, err := ParseTimeMarker(marker, now)
		assert.Error(t, err, marker)
	}
}
