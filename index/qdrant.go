package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/richinex/chatrag/model"
)

// QdrantConfig configures the Qdrant REST backend.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// QdrantIndex is a minimal REST client to a populated Qdrant collection.
// Payload fields: content (or text), timestamp, channel, url, id.
type QdrantIndex struct {
	url        string
	apiKey     string
	collection string
	embedder   Embedder
	client     *http.Client
}

// NewQdrantIndex creates a Qdrant-backed index.
func NewQdrantIndex(cfg QdrantConfig, embedder Embedder) *QdrantIndex {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &QdrantIndex{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		embedder:   embedder,
		client:     &http.Client{Timeout: timeout},
	}
}

type qdrantSearchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// SimilaritySearch embeds the query and searches the collection.
func (q *QdrantIndex) SimilaritySearch(ctx context.Context, query string, k int) ([]model.Evidence, error) {
	if k <= 0 {
		k = 5
	}
	vec, err := q.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	body := map[string]any{
		"vector":       vec,
		"limit":        k,
		"with_payload": true,
	}
	var resp qdrantSearchResponse
	endpoint := fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection)
	if err := q.postJSON(ctx, endpoint, body, &resp); err != nil {
		return nil, err
	}

	results := make([]model.Evidence, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, payloadEvidence(r.ID, r.Payload))
	}
	return results, nil
}

func payloadEvidence(pointID any, payload map[string]any) model.Evidence {
	content, _ := payload["content"].(string)
	if content == "" {
		content, _ = payload["text"].(string)
	}
	id, _ := payload["id"].(string)
	if id == "" && pointID != nil {
		id = fmt.Sprint(pointID)
	}

	e := model.NewEvidence(id, content)
	if ch, ok := payload["channel"].(string); ok {
		e = e.WithChannel(ch)
	}
	if u, ok := payload["url"].(string); ok {
		e = e.WithURL(u)
	}
	// JSON numbers decode as float64
	if ts, ok := payload["timestamp"].(float64); ok {
		e = e.WithTimestamp(int64(ts))
	}
	return e
}

func (q *QdrantIndex) postJSON(ctx context.Context, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant search failed: %s", resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode qdrant response: %w", err)
		}
	}
	return nil
}

var _ Index = (*QdrantIndex)(nil)
