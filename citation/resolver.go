// Package citation determines which numbered sources an answer cites.
//
// Information Hiding:
// - Reference patterns and their precedence hidden behind Resolve
// - Snippet and URL shaping of caller-facing records hidden behind Records
//
// Extraction is heuristic: it reads free-form model text and only counts
// the reference forms listed in patterns.
package citation

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/richinex/chatrag/model"
)

// SnippetLength is the number of characters kept in a citation snippet.
const SnippetLength = 200

var (
	numberList = regexp.MustCompile(`\d+`)

	// Checked in this order; each match is masked before the next pattern runs.
	bracketed     = regexp.MustCompile(`(?i)\[\s*sources?\s*\d+(?:\s*,\s*(?:sources?\s*)?\d+)*\s*\]`)
	parenthesized = regexp.MustCompile(`(?i)\(\s*sources?\s*\d+(?:\s*,\s*(?:sources?\s*)?\d+)*\s*\)`)
	bare          = regexp.MustCompile(`(?i)\bsources?\s+\d+`)
	numericList   = regexp.MustCompile(`\[\s*\d+(?:\s*,\s*\d+)*\s*\]`)
)

// References returns the source numbers referenced by text, ascending.
// Numbers in a plain "[N, M]" list count only when N is in known.
func References(text string, known map[int]bool) []int {
	seen := make(map[int]bool)
	add := func(match string) {
		for _, digits := range numberList.FindAllString(match, -1) {
			if n, err := strconv.Atoi(digits); err == nil {
				seen[n] = true
			}
		}
	}

	masked := text
	for _, re := range []*regexp.Regexp{bracketed, parenthesized, bare} {
		masked = re.ReplaceAllStringFunc(masked, func(match string) string {
			add(match)
			return strings.Repeat(" ", len(match))
		})
	}
	for _, match := range numericList.FindAllString(masked, -1) {
		first, err := strconv.Atoi(numberList.FindString(match))
		if err == nil && known[first] {
			add(match)
		}
	}

	refs := make([]int, 0, len(seen))
	for n := range seen {
		refs = append(refs, n)
	}
	sort.Ints(refs)
	return refs
}

// Resolve returns the sources text cites, ascending by number. Sources
// sharing a content identity are cited once under their first number.
// sources must be in assignment order.
func Resolve(text string, sources []model.NumberedSource) []model.NumberedSource {
	known := make(map[int]bool, len(sources))
	for _, s := range sources {
		known[s.Number] = true
	}
	referenced := make(map[int]bool)
	for _, n := range References(text, known) {
		referenced[n] = true
	}

	cited := make([]model.NumberedSource, 0, len(referenced))
	ids := make(map[string]bool)
	for _, s := range sources {
		if !referenced[s.Number] || ids[s.ID] {
			continue
		}
		ids[s.ID] = true
		cited = append(cited, s)
	}
	sort.SliceStable(cited, func(i, j int) bool { return cited[i].Number < cited[j].Number })
	return cited
}

// Records converts cited sources to caller-facing citation records.
func Records(sources []model.NumberedSource) []model.Citation {
	out := make([]model.Citation, len(sources))
	for i, s := range sources {
		c := model.Citation{
			SourceNumber: s.Number,
			Snippet:      Snippet(s.Content, SnippetLength),
			URLs:         []string{},
			Timestamp:    s.Timestamp,
		}
		if s.URL != "" {
			c.URLs = append(c.URLs, s.URL)
			if ref, err := ParseMessageURL(s.URL); err == nil {
				c.Message = &ref
			}
		}
		if s.Channel != "" {
			channel := s.Channel
			c.Channel = &channel
		}
		out[i] = c
	}
	return out
}

// Snippet truncates content to n characters, marking the cut with "...".
func Snippet(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "..."
}
