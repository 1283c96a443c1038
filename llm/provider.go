// Package llm provides reasoning-engine provider abstractions.
//
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion, including tool calls and results
// - Provider-specific grouping of tool results into one turn

package llm

import (
	"context"
)

// Provider defines the interface the reasoning loop uses to talk to an engine.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// ChatWithTools sends the conversation with tool definitions.
	// The engine may respond with tool calls in LLMResponse.ToolCalls.
	ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (LLMResponse, error)
}
