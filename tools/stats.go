package tools

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/richinex/chatrag/model"
)

// TermCount is one entry of a frequency table.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// AuthorActivity summarizes one author's messages within a sample.
type AuthorActivity struct {
	Username     string      `json:"username"`
	Found        bool        `json:"found"`
	MessageCount int         `json:"message_count"`
	FirstSeen    string      `json:"first_seen,omitempty"`
	LastSeen     string      `json:"last_seen,omitempty"`
	TopTerms     []TermCount `json:"top_terms"`
	SampleSize   int         `json:"sample_size"`
}

// MentionCount is the result of count_mentions. Counts are drawn from a
// bounded sample and are therefore approximate.
type MentionCount struct {
	Term             string `json:"term"`
	Occurrences      int    `json:"occurrences"`
	MatchingMessages int    `json:"matching_messages"`
	SampleSize       int    `json:"sample_size"`
	Approximate      bool   `json:"approximate"`
}

// Assessment is the advisory result of self_assessment.
type Assessment struct {
	Question       string   `json:"question"`
	Confidence     string   `json:"confidence"`
	Recommendation string   `json:"recommendation"`
	Suggestions    []string `json:"suggestions,omitempty"`
}

// Recommendation values of an Assessment.
const (
	RecommendProceed    = "proceed"
	RecommendSearchMore = "search_more"
)

func (t *Toolset) authorActivity(ctx context.Context, args Args) (Result, error) {
	username, err := args.RequireString("username")
	if err != nil {
		return Result{}, err
	}

	sample := t.fetch(ctx, KindAuthorActivity, username, statsSample)
	var own []model.Evidence
	for _, item := range sample {
		if authorMatches(item.Content, username) {
			own = append(own, item)
		}
	}

	activity := AuthorActivity{
		Username:     username,
		Found:        len(own) > 0,
		MessageCount: len(own),
		TopTerms:     []TermCount{},
		SampleSize:   len(sample),
	}
	var first, last *int64
	bodies := make([]string, 0, len(own))
	for _, item := range own {
		bodies = append(bodies, messageBody(item.Content))
		if item.Timestamp == nil {
			continue
		}
		if first == nil || *item.Timestamp < *first {
			first = item.Timestamp
		}
		if last == nil || *item.Timestamp > *last {
			last = item.Timestamp
		}
	}
	if first != nil {
		activity.FirstSeen = formatInstant(*first)
		activity.LastSeen = formatInstant(*last)
	}
	activity.TopTerms = topTerms(bodies, topTermCount)

	return Result{Data: activity}, nil
}

func (t *Toolset) countMentions(ctx context.Context, args Args) (Result, error) {
	term, err := args.RequireString("term")
	if err != nil {
		return Result{}, err
	}

	sample := t.fetch(ctx, KindCountMentions, term, statsSample)
	needle := strings.ToLower(term)
	count := MentionCount{Term: term, SampleSize: len(sample), Approximate: true}
	for _, item := range sample {
		n := strings.Count(strings.ToLower(item.Content), needle)
		if n > 0 {
			count.Occurrences += n
			count.MatchingMessages++
		}
	}
	return Result{Data: count}, nil
}

func (t *Toolset) selfAssessment(_ context.Context, args Args) (Result, error) {
	question, err := args.RequireString("question")
	if err != nil {
		return Result{}, err
	}
	if _, err := args.RequireString("findings_summary"); err != nil {
		return Result{}, err
	}
	confidence, err := args.RequireString("confidence")
	if err != nil {
		return Result{}, err
	}

	a := Assessment{Question: question, Confidence: strings.ToLower(confidence)}
	switch a.Confidence {
	case "high":
		a.Recommendation = RecommendProceed
	case "low":
		a.Recommendation = RecommendSearchMore
		a.Suggestions = []string{
			"Try search_by_author if specific people are involved.",
			"Narrow the period with search_by_time_range.",
			"Rephrase the query with synonyms or related terms.",
			"Use count_mentions to check whether the topic appears at all.",
		}
	default:
		a.Confidence = "medium"
		a.Recommendation = RecommendProceed
		a.Suggestions = []string{"Consider one more targeted search to verify key details."}
	}
	return Result{Data: a}, nil
}

// messageBody strips the leading "author:" label.
func messageBody(content string) string {
	if author := leadingAuthor(content); author != "" {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(content), author+":"); ok {
			return rest
		}
	}
	return content
}

// topTerms counts words longer than three letters across texts and returns
// the n most frequent, ties broken alphabetically.
func topTerms(texts []string, n int) []TermCount {
	counts := make(map[string]int)
	for _, text := range texts {
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			if len([]rune(w)) > 3 {
				counts[w]++
			}
		}
	}

	terms := make([]TermCount, 0, len(counts))
	for term, c := range counts {
		terms = append(terms, TermCount{Term: term, Count: c})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
