package index

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder maps text onto a fixed vocabulary; one dimension per word.
type keywordEmbedder struct {
	vocab []string
}

func (k keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	v := make([]float32, len(k.vocab))
	for i, w := range k.vocab {
		if strings.Contains(lower, w) {
			v[i] = 1
		}
	}
	return v, nil
}

func (k keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = k.Embed(ctx, t)
	}
	return out, nil
}

func (keywordEmbedder) Name() string { return "keyword" }

func ms(v int64) *int64 { return &v }

func TestMemoryIndexRanksBySimilarity(t *testing.T) {
	idx := NewMemoryIndex(keywordEmbedder{vocab: []string{"api", "beach", "pizza"}})
	err := idx.Add(context.Background(), []Record{
		{Content: "bob: pizza tonight?", Timestamp: ms(1)},
		{Content: "alice: the new api is great", Timestamp: ms(2), Channel: "dev"},
		{Content: "carol: beach trip", Timestamp: ms(3)},
	})
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	got, err := idx.SimilaritySearch(context.Background(), "api opinion", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice: the new api is great", got[0].Content)
	assert.Equal(t, "dev", got[0].Channel)
	assert.NotEmpty(t, got[0].ID)
}

func TestMemoryIndexKLargerThanCorpus(t *testing.T) {
	idx := NewMemoryIndex(keywordEmbedder{vocab: []string{"a"}})
	require.NoError(t, idx.Add(context.Background(), []Record{{Content: "a"}}))

	got, err := idx.SimilaritySearch(context.Background(), "a", 50)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLoadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	data := `{"id":"m1","content":"alice: hello","timestamp":1700000000000,"channel":"general","url":"https://discord.com/channels/1/2/3"}

{"content":""}
{"content":"bob: hi"}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	records, err := LoadJSONL(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	e := records[0].Evidence()
	assert.Equal(t, "m1", e.ID)
	require.NotNil(t, e.Timestamp)
	assert.Equal(t, int64(1700000000000), *e.Timestamp)
	assert.Equal(t, "https://discord.com/channels/1/2/3", e.URL)
}

func TestLoadJSONLRejectsBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{not json}\n"), 0o644))

	_, err := LoadJSONL(path)
	assert.Error(t, err)
}

func TestQdrantIndexSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/messages/points/search", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(4), body["limit"])

		_, _ = w.Write([]byte(`{"result":[
			{"id": 7, "score": 0.9, "payload": {"content": "alice: api", "timestamp": 1700000000000, "channel": "dev", "url": "u1"}},
			{"id": "abc", "score": 0.5, "payload": {"text": "bob: ok"}}
		]}`))
	}))
	defer server.Close()

	idx := NewQdrantIndex(QdrantConfig{URL: server.URL + "/", APIKey: "secret", Collection: "messages"},
		keywordEmbedder{vocab: []string{"api"}})

	got, err := idx.SimilaritySearch(context.Background(), "api", 4)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "7", got[0].ID)
	assert.Equal(t, "dev", got[0].Channel)
	require.NotNil(t, got[0].Timestamp)
	assert.Equal(t, "bob: ok", got[1].Content)
	assert.Nil(t, got[1].Timestamp)
}

func TestQdrantIndexHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	idx := NewQdrantIndex(QdrantConfig{URL: server.URL, Collection: "c"}, keywordEmbedder{})
	_, err := idx.SimilaritySearch(context.Background(), "q", 3)
	assert.Error(t, err)
}
