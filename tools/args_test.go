package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgsInt(t *testing.T) {
	args, err := ParseArgs(json.RawMessage(`{"a":3,"b":"12","c":99.6,"d":"many","e":-4}`))
	require.NoError(t, err)

	assert.Equal(t, 3, args.Int("a", 8, 1, 20))
	assert.Equal(t, 12, args.Int("b", 8, 1, 20))
	assert.Equal(t, 20, args.Int("c", 8, 1, 20))
	assert.Equal(t, 8, args.Int("d", 8, 1, 20))
	assert.Equal(t, 1, args.Int("e", 8, 1, 20))
	assert.Equal(t, 8, args.Int("missing", 8, 1, 20))
}

func TestArgsStrings(t *testing.T) {
	args, err := ParseArgs(json.RawMessage(`{"q":"  hello ","n":5,"blank":"   "}`))
	require.NoError(t, err)

	assert.Equal(t, "hello", args.String("q"))
	assert.Equal(t, "5", args.String("n"))

	_, err = args.RequireString("blank")
	assert.Error(t, err)
	_, err = args.RequireString("absent")
	assert.Error(t, err)
}

func TestParseArgsEmpty(t *testing.T) {
	for _, raw := range []string{"", "null"} {
		args, err := ParseArgs(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Empty(t, args)
	}

	_, err := ParseArgs(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}

func TestParseArgsRecoversWrappedObject(t *testing.T) {
	args, err := ParseArgs(json.RawMessage(`"{\"query\":\"release date\"}"`))
	require.NoError(t, err)
	assert.Equal(t, "release date", args.String("query"))
}
