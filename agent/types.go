package agent

import (
	"github.com/richinex/chatrag/llm"
	"github.com/richinex/chatrag/model"
)

// Result summarizes one session for the caller.
type Result struct {
	Answer          string                 `json:"answer"`
	Citations       []model.Citation       `json:"citations"`
	Cited           []model.NumberedSource `json:"cited"`
	Sources         []model.NumberedSource `json:"sources"`
	ToolCalls       []model.ToolCall       `json:"tool_calls"`
	Iterations      int                    `json:"iterations"`
	TotalRetrieved  int                    `json:"total_retrieved"`
	UniqueRetrieved int                    `json:"unique_retrieved"`
	ToolsUsed       []string               `json:"tools_used"`
	State           State                  `json:"state"`
	AbortReason     AbortReason            `json:"abort_reason,omitempty"`
	Truncated       bool                   `json:"truncated"`
	EngineCalls     int                    `json:"engine_calls"`
	Usage           llm.TokenUsage         `json:"usage"`
	DurationMs      uint64                 `json:"duration_ms"`
}

// Succeeded reports whether the session ended in Done.
func (r Result) Succeeded() bool {
	return r.State == StateDone
}
