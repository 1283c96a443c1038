package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	jsonutil "github.com/richinex/chatrag/internal/json"
)

// Args holds the decoded arguments of one tool call.
type Args map[string]any

// ParseArgs decodes raw JSON arguments. Empty input yields empty Args.
// Objects that arrive string-encoded or wrapped in text are recovered.
func ParseArgs(raw json.RawMessage) (Args, error) {
	args := Args{}
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err == nil {
		return args, nil
	}
	obj, err := jsonutil.ExtractObject(string(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return Args(obj), nil
}

// String returns a trimmed string argument ("" if absent).
func (a Args) String(name string) string {
	switch v := a[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// RequireString returns a non-empty string argument or an error.
func (a Args) RequireString(name string) (string, error) {
	s := a.String(name)
	if s == "" {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	return s, nil
}

// Int returns an integer argument clamped to [lo, hi], or def when absent
// or unparseable.
func (a Args) Int(name string, def, lo, hi int) int {
	n := def
	switch v := a[name].(type) {
	case float64:
		n = int(math.Round(v))
	case int:
		n = v
	case int64:
		n = int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			n = int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			n = i
		}
	}
	return clamp(n, lo, hi)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
