// Package json recovers JSON objects from loosely formatted engine output.
//
// Engines sometimes send tool arguments wrapped in markdown fences, with
// leading commentary, or encoded a second time as a JSON string. This
// package extracts the object from such text.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxUnquote bounds how many layers of string encoding are peeled.
const maxUnquote = 2

// ExtractObject decodes the first JSON object found in raw.
//
// Accepted forms, tried in order:
// 1. A plain object
// 2. An object encoded as a JSON string ("{\"query\":\"x\"}")
// 3. An object inside a markdown code block
// 4. An object embedded in text, from the first '{' to the last '}'
func ExtractObject(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	for i := 0; i <= maxUnquote; i++ {
		if obj, ok := decodeObject(text); ok {
			return obj, nil
		}
		var inner string
		if err := json.Unmarshal([]byte(text), &inner); err != nil {
			break
		}
		text = strings.TrimSpace(inner)
	}

	text = stripMarkdownCodeBlocks(text)
	if obj, ok := decodeObject(text); ok {
		return obj, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if obj, ok := decodeObject(text[start : end+1]); ok {
			return obj, nil
		}
	}

	preview := []rune(raw)
	if len(preview) > 100 {
		preview = append(preview[:100], []rune("...")...)
	}
	return nil, fmt.Errorf("no JSON object in %q", string(preview))
}

func decodeObject(text string) (map[string]any, bool) {
	if !strings.HasPrefix(text, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// stripMarkdownCodeBlocks removes a surrounding ```json ... ``` fence.
func stripMarkdownCodeBlocks(text string) string {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
	}
	trimmed = strings.TrimSpace(trimmed)

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
	}
	return strings.TrimSpace(trimmed)
}
