// Package events renders a question-answering session as an ordered stream
// of typed progress events.
//
// Information Hiding:
// - Channel delivery and cancellation hidden behind Emitter methods
// - Terminal-event bookkeeping hidden; nothing is delivered after done or error
package events

import (
	"github.com/richinex/chatrag/model"
)

// Type names an event kind.
type Type string

const (
	TypeThinking   Type = "thinking"
	TypeToolCall   Type = "tool_call"
	TypeToolResult Type = "tool_result"
	TypeContent    Type = "content"
	TypeSources    Type = "sources"
	TypeDone       Type = "done"
	TypeError      Type = "error"
)

// Terminal reports whether no event may follow one of this type.
func (t Type) Terminal() bool {
	return t == TypeDone || t == TypeError
}

// Event is one element of the stream. Data holds the payload matching Type.
type Event struct {
	Seq  int  `json:"seq"`
	Type Type `json:"type"`
	Data any  `json:"data"`
}

// Thinking is a free-text progress note.
type Thinking struct {
	Content string `json:"content"`
}

// ToolCall announces a dispatched tool call.
type ToolCall struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	Iteration int            `json:"iteration"`
}

// ToolResult reports the outcome of a tool call.
type ToolResult struct {
	Tool        string `json:"tool"`
	ResultCount int    `json:"result_count"`
	Preview     string `json:"preview"`
	Iteration   int    `json:"iteration"`
}

// Content is one chunk of the answer text.
type Content struct {
	Text string `json:"text"`
}

// Sources is the final citation list.
type Sources struct {
	Sources []model.Citation `json:"sources"`
}

// Done summarizes a successful session.
type Done struct {
	Iterations     int      `json:"iterations"`
	TotalRetrieved int      `json:"total_retrieved"`
	UniqueSources  int      `json:"unique_sources"`
	SourcesCited   int      `json:"sources_cited"`
	ToolsUsed      []string `json:"tools_used"`
	Truncated      bool     `json:"truncated"`
}

// Error is the terminal event of a failed session.
type Error struct {
	Message string `json:"message"`
}
