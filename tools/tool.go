// Package tools provides the retrieval toolset offered to the reasoning engine.
//
// Information Hiding:
// - Tool kinds form a closed set; dispatch is a fixed table indexed by Kind
// - Index access, caching and retries hidden behind Toolset.Run
// - Retrieval failures degrade to empty results inside the package
package tools

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/richinex/chatrag/model"
)

// Kind identifies one retrieval operation.
type Kind int

const (
	KindSemanticSearch Kind = iota
	KindSearchByAuthor
	KindSearchByTimeRange
	KindNeighborhoodLookup
	KindAuthorActivity
	KindCountMentions
	KindRecentMessages
	KindSelfAssessment

	kindCount
)

// String returns the tool name the engine uses.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return catalog[k].Name
}

// ParseKind resolves a tool name to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k := Kind(0); k < kindCount; k++ {
		if catalog[k].Name == name {
			return k, true
		}
	}
	return 0, false
}

// Kinds returns every tool kind in catalog order.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// ToolParameter defines a parameter schema for a tool.
type ToolParameter struct {
	Name        string `json:"name"`
	ParamType   string `json:"param_type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolMetadata describes what a tool does and how to use it.
type ToolMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// String returns a string representation of the tool metadata.
func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// Schema renders the parameters as a JSON schema object.
func (m ToolMetadata) Schema() map[string]interface{} {
	properties := make(map[string]interface{}, len(m.Parameters))
	required := []string{}
	for _, p := range m.Parameters {
		properties[p.Name] = map[string]interface{}{
			"type":        p.ParamType,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Metadata returns the catalog entry of a kind.
func (k Kind) Metadata() ToolMetadata {
	return catalog[k]
}

// Catalog returns metadata for every tool, in Kind order.
func Catalog() []ToolMetadata {
	out := make([]ToolMetadata, kindCount)
	copy(out, catalog[:])
	return out
}

// Result is the outcome of one tool call.
// Items are unnumbered; the caller assigns source numbers.
type Result struct {
	Kind  Kind
	Items []model.Evidence
	// Note prefixes the rendered text (fallbacks, argument problems).
	Note string
	// Data is the structured payload of aggregate tools.
	Data any
}

// NoResultsText is rendered when a search produced nothing.
const NoResultsText = "No results found for this search."

// Render formats the result for the reasoning engine. Items are labelled
// with consecutive source numbers starting at firstNumber.
func (r Result) Render(firstNumber int) string {
	var parts []string
	if r.Note != "" {
		parts = append(parts, r.Note)
	}

	switch {
	case r.Data != nil:
		data, err := json.Marshal(r.Data)
		if err != nil {
			data = []byte(fmt.Sprintf(`{"error": %q}`, err.Error()))
		}
		parts = append(parts, string(data))
	case len(r.Items) == 0:
		parts = append(parts, NoResultsText)
	default:
		blocks := make([]string, len(r.Items))
		for i, item := range r.Items {
			blocks[i] = fmt.Sprintf("[Source %d] (%s)\n%s", firstNumber+i, describe(item), item.Content)
		}
		parts = append(parts, strings.Join(blocks, "\n\n---\n\n"))
	}

	return strings.Join(parts, "\n\n")
}

func describe(e model.Evidence) string {
	ts := "unknown"
	if t, ok := e.Time(); ok {
		ts = t.UTC().Format(time.RFC3339)
	}
	if e.Channel != "" {
		return fmt.Sprintf("timestamp: %s, channel: %s", ts, e.Channel)
	}
	return "timestamp: " + ts
}

// ToolConfig holds retrieval execution configuration.
// The zero value is safe: timeout defaults to 10s and attempts to 2.
type ToolConfig struct {
	TimeoutSecs uint64
	MaxRetries  uint32
}

// Timeout returns the per-attempt timeout, defaulting to 10 seconds if zero.
func (c *ToolConfig) Timeout() time.Duration {
	if c == nil || c.TimeoutSecs == 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Retries returns the configured attempt count, defaulting to 2 if zero.
func (c *ToolConfig) Retries() uint32 {
	if c == nil || c.MaxRetries == 0 {
		return 2
	}
	return c.MaxRetries
}

// DefaultToolConfig returns the default tool configuration.
func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		TimeoutSecs: 10,
		MaxRetries:  2,
	}
}
