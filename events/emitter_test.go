package events

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/richinex/chatrag/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func drain(ch <-chan Event) []Event {
	var out []Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func types(evs []Event) []Type {
	out := make([]Type, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}

func TestSuccessfulStreamOrder(t *testing.T) {
	e := NewEmitter(context.Background(), 64)
	e.Thinking("planning")
	e.ToolCall("semantic_search", map[string]any{"query": "api"}, 1)
	e.ToolResult("semantic_search", 2, "[Source 1] ...", 1)
	e.Content(strings.Repeat("a", 120))
	e.Sources(nil)
	e.Done(Done{Iterations: 1})

	evs := drain(e.Events())
	assert.Equal(t, []Type{
		TypeThinking, TypeToolCall, TypeToolResult,
		TypeContent, TypeContent, TypeContent,
		TypeSources, TypeDone,
	}, types(evs))

	for i, ev := range evs {
		assert.Equal(t, i+1, ev.Seq)
	}
	sources := evs[6].Data.(Sources)
	assert.NotNil(t, sources.Sources)
	assert.Empty(t, sources.Sources)
	assert.NotNil(t, evs[7].Data.(Done).ToolsUsed)
}

func TestNothingAfterTerminalEvent(t *testing.T) {
	e := NewEmitter(context.Background(), 8)
	require.True(t, e.Error("The reasoning service is unavailable."))
	assert.False(t, e.Thinking("too late"))
	assert.False(t, e.Done(Done{}))
	e.Close()

	evs := drain(e.Events())
	require.Len(t, evs, 1)
	assert.Equal(t, TypeError, evs[0].Type)
}

func TestCancelledContextDropsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := NewEmitter(ctx, 0)
	cancel()

	assert.False(t, e.Thinking("nobody is listening"))
	e.Close()
	assert.Empty(t, drain(e.Events()))
}

func TestChunksPreserveText(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 13)
	chunks := Chunks(text, ChunkSize)
	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, c := range chunks[:len(chunks)-1] {
		assert.Len(t, []rune(c), ChunkSize)
	}
	assert.Nil(t, Chunks("", ChunkSize))
}

func TestToolResultPreviewTruncates(t *testing.T) {
	e := NewEmitter(context.Background(), 1)
	e.ToolResult("recent_messages", 20, strings.Repeat("x", 600), 2)
	ev := <-e.Events()
	preview := ev.Data.(ToolResult).Preview
	assert.Len(t, preview, PreviewLength+3)
	assert.True(t, strings.HasSuffix(preview, "..."))
}

func TestSourcesCarryCitations(t *testing.T) {
	e := NewEmitter(context.Background(), 1)
	e.Sources([]model.Citation{{SourceNumber: 3, Snippet: "bob: hi", URLs: []string{}}})
	ev := <-e.Events()
	require.Len(t, ev.Data.(Sources).Sources, 1)
	assert.Equal(t, 3, ev.Data.(Sources).Sources[0].SourceNumber)
}
