package citation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/chatrag/model"
)

func numbered(n int) []model.NumberedSource {
	out := make([]model.NumberedSource, n)
	for i := range out {
		out[i] = model.NumberedSource{
			Number:   i + 1,
			Evidence: model.NewEvidence("", fmt.Sprintf("user%d: message %d", i+1, i+1)),
		}
	}
	return out
}

func numbers(sources []model.NumberedSource) []int {
	out := make([]int, len(sources))
	for i, s := range sources {
		out[i] = s.Number
	}
	return out
}

func TestResolveBracketedGroup(t *testing.T) {
	sources := numbered(6)
	// Reverse retrieval order must not affect the result.
	reversed := make([]model.NumberedSource, len(sources))
	for i, s := range sources {
		reversed[len(sources)-1-i] = s
	}

	text := "The team agreed to ship on Friday [Source 2, 5]."
	assert.Equal(t, []int{2, 5}, numbers(Resolve(text, sources)))
	assert.Equal(t, []int{2, 5}, numbers(Resolve(text, reversed)))
}

func TestResolveIsIdempotent(t *testing.T) {
	sources := numbered(6)
	text := "See [Source 3] and (Sources 1, 4). Source 6 disagrees."
	first := Resolve(text, sources)
	second := Resolve(text, sources)
	assert.Equal(t, first, second)
	assert.Equal(t, []int{1, 3, 4, 6}, numbers(first))
}

func TestReferencePatterns(t *testing.T) {
	known := map[int]bool{1: true, 2: true, 3: true, 4: true}
	tests := []struct {
		name string
		text string
		want []int
	}{
		{"bracketed single", "as noted [Source 1]", []int{1}},
		{"bracketed plural", "as noted [Sources 1, 3]", []int{1, 3}},
		{"bracketed repeated label", "as noted [Source 1, Source 4]", []int{1, 4}},
		{"parenthesized", "as noted (source 2)", []int{2}},
		{"bare", "Source 3 says so", []int{3}},
		{"numeric list of known sources", "as noted [2, 4]", []int{2, 4}},
		{"numeric list starting unknown", "the array [7, 1] is sorted", []int{}},
		{"numeric list mixed with labels", "[Source 1] and [3]", []int{1, 3}},
		{"no references", "nothing cited here", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, References(tt.text, known))
		})
	}
}

func TestResolveDropsUnknownNumbers(t *testing.T) {
	assert.Empty(t, Resolve("[Source 9]", numbered(3)))
}

func TestResolveDeduplicatesByContent(t *testing.T) {
	same := model.NewEvidence("", "alice: the API is great")
	sources := []model.NumberedSource{
		{Number: 1, Evidence: same},
		{Number: 2, Evidence: model.NewEvidence("", "bob: meh")},
		{Number: 3, Evidence: same},
	}
	got := Resolve("[Source 3] and [Source 1] and [Source 2]", sources)
	assert.Equal(t, []int{1, 2}, numbers(got))

	got = Resolve("only [Source 3]", sources)
	assert.Equal(t, []int{3}, numbers(got))
}

func TestRecords(t *testing.T) {
	long := make([]rune, 250)
	for i := range long {
		long[i] = 'é'
	}
	sources := []model.NumberedSource{
		{Number: 1, Evidence: model.NewEvidence("a", string(long)).
			WithURL("https://discord.com/channels/1/2/3").
			WithChannel("general").
			WithTimestamp(1700000000000)},
		{Number: 4, Evidence: model.NewEvidence("b", "bob: short")},
	}

	records := Records(sources)
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].SourceNumber)
	assert.Equal(t, string(long[:SnippetLength])+"...", records[0].Snippet)
	assert.Equal(t, []string{"https://discord.com/channels/1/2/3"}, records[0].URLs)
	require.NotNil(t, records[0].Channel)
	assert.Equal(t, "general", *records[0].Channel)
	require.NotNil(t, records[0].Timestamp)
	require.NotNil(t, records[0].Message)
	assert.Equal(t, model.MessageRef{GuildID: "1", ChannelID: "2", MessageID: "3"}, *records[0].Message)

	assert.Equal(t, "bob: short", records[1].Snippet)
	assert.Empty(t, records[1].URLs)
	assert.NotNil(t, records[1].URLs)
	assert.Nil(t, records[1].Message)
	assert.Nil(t, records[1].Channel)
	assert.Nil(t, records[1].Timestamp)
}

func TestParseMessageURL(t *testing.T) {
	ref, err := ParseMessageURL("https://discord.com/channels/111/222/333")
	require.NoError(t, err)
	assert.Equal(t, model.MessageRef{GuildID: "111", ChannelID: "222", MessageID: "333"}, ref)

	ref, err = ParseMessageURL("https://discord.com/channels/@me/222/333/")
	require.NoError(t, err)
	assert.Equal(t, "@me", ref.GuildID)

	_, err = ParseMessageURL("https://example.com/not/a/message")
	assert.Error(t, err)
}
