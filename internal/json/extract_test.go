package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain", `{"query": "deploy", "num_results": 5}`},
		{"string encoded", `"{\"query\": \"deploy\", \"num_results\": 5}"`},
		{"markdown fence", "```json\n{\"query\": \"deploy\", \"num_results\": 5}\n```"},
		{"bare fence", "```\n{\"query\": \"deploy\", \"num_results\": 5}\n```"},
		{"with commentary", `Arguments follow: {"query": "deploy", "num_results": 5} thanks`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ExtractObject(tt.input)
			require.NoError(t, err)
			assert.Equal(t, "deploy", obj["query"])
			assert.Equal(t, float64(5), obj["num_results"])
		})
	}
}

func TestExtractObjectFailures(t *testing.T) {
	for _, input := range []string{"", "no json here", `[1, 2]`, `{"unclosed": `, `"just a string"`} {
		_, err := ExtractObject(input)
		assert.Error(t, err, input)
	}
}
