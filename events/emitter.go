package events

import (
	"context"

	"github.com/richinex/chatrag/model"
)

const (
	// ChunkSize is the number of characters per content event.
	ChunkSize = 50
	// PreviewLength is the number of characters kept in a tool_result preview.
	PreviewLength = 500
)

// Emitter delivers events for one session over a channel. It has a single
// producer and is not safe for concurrent use by multiple goroutines.
//
// Once the context is cancelled, sends are dropped. After a terminal event
// the channel is closed and further sends are ignored. A nil *Emitter
// discards everything.
type Emitter struct {
	ctx    context.Context
	ch     chan Event
	seq    int
	closed bool
}

// NewEmitter creates an emitter with the given channel buffer.
func NewEmitter(ctx context.Context, buffer int) *Emitter {
	if buffer < 0 {
		buffer = 0
	}
	return &Emitter{ctx: ctx, ch: make(chan Event, buffer)}
}

// Events returns the receive side of the stream.
func (e *Emitter) Events() <-chan Event {
	return e.ch
}

// Emit delivers one event. It reports false if the event was dropped
// because the stream is closed or the context is done.
func (e *Emitter) Emit(t Type, data any) bool {
	if e == nil || e.closed || e.ctx.Err() != nil {
		return false
	}
	e.seq++
	ev := Event{Seq: e.seq, Type: t, Data: data}

	select {
	case e.ch <- ev:
	case <-e.ctx.Done():
		return false
	}
	if t.Terminal() {
		e.Close()
	}
	return true
}

// Thinking emits a progress note.
func (e *Emitter) Thinking(note string) bool {
	return e.Emit(TypeThinking, Thinking{Content: note})
}

// ToolCall emits a tool_call event.
func (e *Emitter) ToolCall(tool string, args map[string]any, iteration int) bool {
	if args == nil {
		args = map[string]any{}
	}
	return e.Emit(TypeToolCall, ToolCall{Tool: tool, Arguments: args, Iteration: iteration})
}

// ToolResult emits a tool_result event with a truncated preview of text.
func (e *Emitter) ToolResult(tool string, count int, text string, iteration int) bool {
	return e.Emit(TypeToolResult, ToolResult{
		Tool:        tool,
		ResultCount: count,
		Preview:     Preview(text, PreviewLength),
		Iteration:   iteration,
	})
}

// Content emits text as consecutive chunks of ChunkSize characters.
func (e *Emitter) Content(text string) bool {
	if e == nil {
		return false
	}
	for _, chunk := range Chunks(text, ChunkSize) {
		if !e.Emit(TypeContent, Content{Text: chunk}) {
			return false
		}
	}
	return true
}

// Sources emits the citation list. A nil list is sent as empty.
func (e *Emitter) Sources(citations []model.Citation) bool {
	if citations == nil {
		citations = []model.Citation{}
	}
	return e.Emit(TypeSources, Sources{Sources: citations})
}

// Done emits the success summary and closes the stream.
func (e *Emitter) Done(summary Done) bool {
	if summary.ToolsUsed == nil {
		summary.ToolsUsed = []string{}
	}
	return e.Emit(TypeDone, summary)
}

// Error emits a failure message and closes the stream.
func (e *Emitter) Error(message string) bool {
	return e.Emit(TypeError, Error{Message: message})
}

// Close closes the stream without a terminal event. Safe to call repeatedly.
func (e *Emitter) Close() {
	if e == nil || e.closed {
		return
	}
	e.closed = true
	close(e.ch)
}

// Chunks splits text into pieces of at most size characters, in order.
func Chunks(text string, size int) []string {
	runes := []rune(text)
	if len(runes) == 0 || size <= 0 {
		return nil
	}
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// Preview truncates text to n characters, marking the cut with "...".
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
