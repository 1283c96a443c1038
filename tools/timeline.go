package tools

import (
	"context"
	"sort"
	"time"

	"github.com/richinex/chatrag/model"
)

func (t *Toolset) neighborhoodLookup(ctx context.Context, args Args) (Result, error) {
	marker, err := args.RequireString("timestamp")
	if err != nil {
		return Result{}, err
	}
	target, err := ParseTimeMarker(marker, t.now())
	if err != nil {
		return Result{}, err
	}
	before := args.Int("before", DefaultWindow, 1, MaxWindow)
	after := args.Int("after", DefaultWindow, 1, MaxWindow)

	timeline := timestamped(t.fetch(ctx, KindNeighborhoodLookup, broadSampleQuery, timelineSample))
	if len(timeline) == 0 {
		return Result{}, nil
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		return *timeline[i].Timestamp < *timeline[j].Timestamp
	})

	center := closestIndex(timeline, target)
	lo := center - before
	if lo < 0 {
		lo = 0
	}
	hi := center + after + 1
	if hi > len(timeline) {
		hi = len(timeline)
	}
	return Result{Items: timeline[lo:hi]}, nil
}

func (t *Toolset) recentMessages(ctx context.Context, args Args) (Result, error) {
	k := args.Int("num_results", DefaultRecent, 1, MaxRecent)

	sample := t.fetch(ctx, KindRecentMessages, broadSampleQuery, timelineSample)
	sorted := make([]model.Evidence, len(sample))
	copy(sorted, sample)
	// Newest first; items without a timestamp sink to the end.
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Timestamp, sorted[j].Timestamp
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a > *b
	})
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return Result{Items: sorted}, nil
}

func timestamped(items []model.Evidence) []model.Evidence {
	out := make([]model.Evidence, 0, len(items))
	for _, item := range items {
		if item.Timestamp != nil {
			out = append(out, item)
		}
	}
	return out
}

// closestIndex returns the index of the item nearest to target.
// timeline must be sorted ascending and non-empty.
func closestIndex(timeline []model.Evidence, target time.Time) int {
	ms := target.UnixMilli()
	i := sort.Search(len(timeline), func(i int) bool { return *timeline[i].Timestamp >= ms })
	switch {
	case i == 0:
		return 0
	case i == len(timeline):
		return len(timeline) - 1
	case ms-*timeline[i-1].Timestamp <= *timeline[i].Timestamp-ms:
		return i - 1
	default:
		return i
	}
}

func formatInstant(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
