// Package index adapts vector stores to the retrieval contract.
//
// Information Hiding:
// - Embedding calls and vector math hidden behind SimilaritySearch
// - Backend payload formats converted to model.Evidence at this boundary
package index

import (
	"context"

	"github.com/richinex/chatrag/model"
)

// Index performs similarity search over the message corpus.
type Index interface {
	// SimilaritySearch returns up to k items ordered by decreasing similarity.
	SimilaritySearch(ctx context.Context, query string, k int) ([]model.Evidence, error)
}

// Embedder converts free text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

// Record is one message as stored in a corpus export.
type Record struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Timestamp *int64 `json:"timestamp,omitempty"`
	Channel   string `json:"channel,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Evidence converts the record to the shared value type.
func (r Record) Evidence() model.Evidence {
	e := model.NewEvidence(r.ID, r.Content).WithChannel(r.Channel).WithURL(r.URL)
	if r.Timestamp != nil {
		e = e.WithTimestamp(*r.Timestamp)
	}
	return e
}
