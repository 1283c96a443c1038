package tools

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/richinex/chatrag/model"
)

func (t *Toolset) semanticSearch(ctx context.Context, args Args) (Result, error) {
	query, err := args.RequireString("query")
	if err != nil {
		return Result{}, err
	}
	k := args.Int("num_results", DefaultSearchResults, 1, MaxSearchResults)
	return Result{Items: t.fetch(ctx, KindSemanticSearch, query, k)}, nil
}

func (t *Toolset) searchByAuthor(ctx context.Context, args Args) (Result, error) {
	query, err := args.RequireString("query")
	if err != nil {
		return Result{}, err
	}
	username, err := args.RequireString("username")
	if err != nil {
		return Result{}, err
	}
	k := args.Int("num_results", DefaultSearchResults, 1, MaxSearchResults)

	sample := t.fetch(ctx, KindSearchByAuthor, query, overFetch(k))
	matches := make([]model.Evidence, 0, k)
	for _, item := range sample {
		if authorMatches(item.Content, username) {
			matches = append(matches, item)
			if len(matches) == k {
				break
			}
		}
	}
	return Result{Items: matches}, nil
}

func (t *Toolset) searchByTimeRange(ctx context.Context, args Args) (Result, error) {
	query, err := args.RequireString("query")
	if err != nil {
		return Result{}, err
	}
	k := args.Int("num_results", DefaultSearchResults, 1, MaxSearchResults)
	now := t.now()

	start, err := ParseTimeMarker(args.String("start"), now)
	if err != nil {
		t.logger.Warn("unparseable start time, falling back to semantic search",
			zap.String("start", args.String("start")),
			zap.Error(err))
		return Result{
			Items: t.fetch(ctx, KindSemanticSearch, query, k),
			Note:  fmt.Sprintf("Could not understand start time %q; showing plain search results instead.", args.String("start")),
		}, nil
	}

	end := now
	if marker := args.String("end"); marker != "" {
		parsed, err := ParseTimeMarker(marker, now)
		if err != nil {
			t.logger.Warn("unparseable end time, using now", zap.String("end", marker), zap.Error(err))
		} else {
			end = parsed
		}
	}
	if end.Before(start) {
		start, end = end, start
	}

	sample := t.fetch(ctx, KindSearchByTimeRange, query, overFetch(k))
	matches := make([]model.Evidence, 0, k)
	for _, item := range sample {
		ts, ok := item.Time()
		if !ok || ts.Before(start) || ts.After(end) {
			continue
		}
		matches = append(matches, item)
		if len(matches) == k {
			break
		}
	}
	return Result{Items: matches}, nil
}

func overFetch(k int) int {
	n := k * overFetchFactor
	if n > maxOverFetch {
		n = maxOverFetch
	}
	return n
}

// leadingAuthor returns the author token of a message body: the text
// before the first colon of the first line, or its first word.
func leadingAuthor(content string) string {
	line := strings.TrimSpace(content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if i := strings.IndexByte(line, ':'); i >= 0 {
		return strings.TrimSpace(line[:i])
	}
	if fields := strings.Fields(line); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func authorMatches(content, username string) bool {
	author := leadingAuthor(content)
	if author == "" {
		return false
	}
	return strings.Contains(strings.ToLower(author), strings.ToLower(username))
}
