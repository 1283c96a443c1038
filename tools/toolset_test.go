package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/richinex/chatrag/cache"
	"github.com/richinex/chatrag/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// fakeIndex returns the first k corpus items regardless of the query.
type fakeIndex struct {
	mu      sync.Mutex
	corpus  []model.Evidence
	calls   int
	queries []string
}

func (f *fakeIndex) SimilaritySearch(_ context.Context, query string, k int) ([]model.Evidence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, query)
	if k > len(f.corpus) {
		k = len(f.corpus)
	}
	out := make([]model.Evidence, k)
	copy(out, f.corpus[:k])
	return out, nil
}

type failingIndex struct {
	mu    sync.Mutex
	calls int
}

func (f *failingIndex) SimilaritySearch(context.Context, string, int) ([]model.Evidence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil, errors.New("connection refused")
}

func msg(content string, at time.Time) model.Evidence {
	return model.NewEvidence("", content).WithTimestamp(at.UnixMilli())
}

func newTestToolset(idx *fakeIndex) *Toolset {
	return New(idx, cache.New(), WithClock(func() time.Time { return fixedNow }))
}

func run(t *testing.T, ts *Toolset, name, args string) Result {
	t.Helper()
	return ts.Run(context.Background(), name, json.RawMessage(args))
}

func TestEveryKindHasHandlerAndMetadata(t *testing.T) {
	ts := newTestToolset(&fakeIndex{})
	for _, k := range Kinds() {
		assert.NotNil(t, ts.handlers[k], k.String())
		md := k.Metadata()
		assert.NotEmpty(t, md.Name)
		assert.NotEmpty(t, md.Description)

		got, ok := ParseKind(md.Name)
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	assert.Len(t, Catalog(), int(kindCount))
}

func TestSchemaListsRequiredParameters(t *testing.T) {
	schema := KindSearchByAuthor.Metadata().Schema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"query", "username"}, schema["required"])
}

func TestSemanticSearchClampsResultCount(t *testing.T) {
	var corpus []model.Evidence
	for i := 0; i < 40; i++ {
		corpus = append(corpus, model.NewEvidence("", strings.Repeat("x", i+1)))
	}
	ts := newTestToolset(&fakeIndex{corpus: corpus})

	assert.Len(t, run(t, ts, "semantic_search", `{"query":"q"}`).Items, DefaultSearchResults)
	assert.Len(t, run(t, ts, "semantic_search", `{"query":"q","num_results":500}`).Items, MaxSearchResults)
	assert.Len(t, run(t, ts, "semantic_search", `{"query":"q","num_results":0}`).Items, 1)
}

func TestRepeatedSearchIsServedFromCache(t *testing.T) {
	idx := &fakeIndex{corpus: []model.Evidence{model.NewEvidence("", "alice: hi")}}
	ts := newTestToolset(idx)

	first := run(t, ts, "semantic_search", `{"query":"API","num_results":3}`)
	second := run(t, ts, "semantic_search", `{"query":"  api ","num_results":3}`)

	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, 1, idx.calls)
}

func TestRetrievalFailureYieldsEmptyResultAndIsNotCached(t *testing.T) {
	idx := &failingIndex{}
	ts := New(idx, cache.New(), WithToolConfig(ToolConfig{TimeoutSecs: 1, MaxRetries: 1}))

	for i := 0; i < 2; i++ {
		res := ts.Run(context.Background(), "semantic_search", json.RawMessage(`{"query":"q"}`))
		assert.Empty(t, res.Items)
		assert.Equal(t, NoResultsText, res.Render(1))
	}
	assert.Equal(t, 2, idx.calls)
}

func TestUnknownToolProducesExplanatoryNote(t *testing.T) {
	ts := newTestToolset(&fakeIndex{})
	res := run(t, ts, "delete_everything", `{}`)
	assert.Equal(t, Kind(-1), res.Kind)
	assert.Contains(t, res.Note, "Unknown tool")
	assert.Contains(t, res.Note, "semantic_search")
	assert.Empty(t, res.Items)
}

func TestMissingRequiredArgumentProducesNote(t *testing.T) {
	idx := &fakeIndex{}
	ts := newTestToolset(idx)
	res := run(t, ts, "search_by_author", `{"query":"plans"}`)
	assert.Contains(t, res.Note, `"username"`)
	assert.Zero(t, idx.calls)

	res = run(t, ts, "semantic_search", `{not json`)
	assert.Contains(t, res.Note, "invalid arguments")
}

func TestSearchByAuthorFiltersAndNeverPads(t *testing.T) {
	idx := &fakeIndex{corpus: []model.Evidence{
		model.NewEvidence("", "bob: lunch?"),
		model.NewEvidence("", "Alice: the deploy is done"),
		model.NewEvidence("", "carol: nice"),
		model.NewEvidence("", "alice_w: I disagree"),
	}}
	ts := newTestToolset(idx)

	res := run(t, ts, "search_by_author", `{"query":"deploy","username":"ALICE","num_results":5}`)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Alice: the deploy is done", res.Items[0].Content)
	assert.Equal(t, "alice_w: I disagree", res.Items[1].Content)

	res = run(t, ts, "search_by_author", `{"query":"deploy","username":"dave"}`)
	assert.Empty(t, res.Items)
}

func TestSearchByTimeRangeRelativeWindow(t *testing.T) {
	idx := &fakeIndex{corpus: []model.Evidence{
		msg("alice: old news", fixedNow.AddDate(0, 0, -10)),
		msg("bob: recent one", fixedNow.AddDate(0, 0, -2)),
		model.NewEvidence("", "carol: no time"),
		msg("dave: also recent", fixedNow.Add(-time.Hour)),
	}}
	ts := newTestToolset(idx)

	res := run(t, ts, "search_by_time_range", `{"query":"news","start":"3 days ago"}`)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "bob: recent one", res.Items[0].Content)
	assert.Equal(t, "dave: also recent", res.Items[1].Content)
	assert.Empty(t, res.Note)
}

func TestSearchByTimeRangeSwapsInvertedBounds(t *testing.T) {
	idx := &fakeIndex{corpus: []model.Evidence{
		msg("alice: in range", time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)),
		msg("bob: out of range", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
	}}
	ts := newTestToolset(idx)

	res := run(t, ts, "search_by_time_range", `{"query":"x","start":"2024-02-28","end":"2024-02-01"}`)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "alice: in range", res.Items[0].Content)
}

func TestSearchByTimeRangeFallsBackOnBadStart(t *testing.T) {
	idx := &fakeIndex{corpus: []model.Evidence{model.NewEvidence("", "alice: anything")}}
	ts := newTestToolset(idx)

	res := run(t, ts, "search_by_time_range", `{"query":"x","start":"the dawn of time"}`)
	assert.Len(t, res.Items, 1)
	assert.Contains(t, res.Note, "the dawn of time")
	assert.True(t, strings.HasPrefix(res.Render(1), res.Note))
}

func TestNeighborhoodLookupWindow(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	var corpus []model.Evidence
	// Index order is deliberately not chronological.
	for _, minute := range []int{5, 0, 9, 3, 1, 7, 2, 8, 4, 6} {
		corpus = append(corpus, msg("m"+string(rune('0'+minute)), base.Add(time.Duration(minute)*time.Minute)))
	}
	ts := newTestToolset(&fakeIndex{corpus: corpus})

	res := run(t, ts, "neighborhood_lookup", `{"timestamp":"2024-03-01T10:05:20Z","before":2,"after":1}`)
	require.Len(t, res.Items, 4)
	var got []string
	for _, it := range res.Items {
		got = append(got, it.Content)
	}
	assert.Equal(t, []string{"m3", "m4", "m5", "m6"}, got)

	res = run(t, ts, "neighborhood_lookup", `{"timestamp":"2024-03-01T09:00:00Z","before":3,"after":2}`)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "m0", res.Items[0].Content)
}

func TestNeighborhoodLookupRejectsBadTimestamp(t *testing.T) {
	ts := newTestToolset(&fakeIndex{})
	res := run(t, ts, "neighborhood_lookup", `{"timestamp":"whenever"}`)
	assert.Contains(t, res.Note, "unrecognized time marker")
}

func TestRecentMessagesNewestFirst(t *testing.T) {
	idx := &fakeIndex{corpus: []model.Evidence{
		msg("a: oldest", fixedNow.Add(-3*time.Hour)),
		model.NewEvidence("", "b: undated"),
		msg("c: newest", fixedNow.Add(-time.Minute)),
		msg("d: middle", fixedNow.Add(-time.Hour)),
	}}
	ts := newTestToolset(idx)

	res := run(t, ts, "recent_messages", `{"num_results":3}`)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "c: newest", res.Items[0].Content)
	assert.Equal(t, "d: middle", res.Items[1].Content)
	assert.Equal(t, "a: oldest", res.Items[2].Content)
}

func TestAuthorActivitySummary(t *testing.T) {
	idx := &fakeIndex{corpus: []model.Evidence{
		msg("alice: deploy pipeline broken", fixedNow.Add(-48*time.Hour)),
		msg("bob: pipeline looks fine", fixedNow.Add(-24*time.Hour)),
		msg("alice: pipeline fixed after deploy", fixedNow.Add(-time.Hour)),
	}}
	ts := newTestToolset(idx)

	res := run(t, ts, "author_activity", `{"username":"alice"}`)
	assert.Empty(t, res.Items)
	activity, ok := res.Data.(AuthorActivity)
	require.True(t, ok)
	assert.True(t, activity.Found)
	assert.Equal(t, 2, activity.MessageCount)
	assert.Equal(t, 3, activity.SampleSize)
	assert.Equal(t, "2024-03-13T12:00:00Z", activity.FirstSeen)
	assert.Equal(t, "2024-03-15T11:00:00Z", activity.LastSeen)
	require.NotEmpty(t, activity.TopTerms)
	assert.Equal(t, TermCount{Term: "deploy", Count: 2}, activity.TopTerms[0])
	assert.Equal(t, TermCount{Term: "pipeline", Count: 2}, activity.TopTerms[1])
}

func TestCountMentionsIsApproximate(t *testing.T) {
	idx := &fakeIndex{corpus: []model.Evidence{
		model.NewEvidence("", "alice: Kafka kafka everywhere"),
		model.NewEvidence("", "bob: not here"),
		model.NewEvidence("", "carol: kafka again"),
	}}
	ts := newTestToolset(idx)

	res := run(t, ts, "count_mentions", `{"term":"KAFKA"}`)
	count, ok := res.Data.(MentionCount)
	require.True(t, ok)
	assert.Equal(t, 3, count.Occurrences)
	assert.Equal(t, 2, count.MatchingMessages)
	assert.True(t, count.Approximate)
	assert.Contains(t, res.Render(1), `"approximate":true`)
}

func TestSelfAssessmentRecommendations(t *testing.T) {
	ts := newTestToolset(&fakeIndex{})
	tests := []struct {
		confidence string
		want       string
		suggests   bool
	}{
		{"high", RecommendProceed, false},
		{"medium", RecommendProceed, true},
		{"LOW", RecommendSearchMore, true},
		{"unsure", RecommendProceed, true},
	}
	for _, tt := range tests {
		t.Run(tt.confidence, func(t *testing.T) {
			args := `{"question":"q","findings_summary":"f","confidence":"` + tt.confidence + `"}`
			res := run(t, ts, "self_assessment", args)
			a, ok := res.Data.(Assessment)
			require.True(t, ok)
			assert.Equal(t, tt.want, a.Recommendation)
			assert.Equal(t, tt.suggests, len(a.Suggestions) > 0)
		})
	}
}

func TestRenderNumbersSourcesFromOffset(t *testing.T) {
	res := Result{Items: []model.Evidence{
		msg("alice: one", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)),
		model.NewEvidence("", "bob: two").WithChannel("general"),
	}}
	text := res.Render(7)
	assert.Equal(t,
		"[Source 7] (timestamp: 2024-01-02T03:04:05Z)\nalice: one\n\n---\n\n[Source 8] (timestamp: unknown, channel: general)\nbob: two",
		text)
}

func TestConcurrentRunsShareCache(t *testing.T) {
	idx := &fakeIndex{corpus: []model.Evidence{model.NewEvidence("", "alice: hi")}}
	ts := newTestToolset(idx)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts.Run(context.Background(), "semantic_search", json.RawMessage(`{"query":"hi"}`))
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, idx.calls, 16)
	assert.GreaterOrEqual(t, idx.calls, 1)
}
