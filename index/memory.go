package index

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/richinex/chatrag/model"
)

// embedBatchSize is the most texts sent in one embedding request.
const embedBatchSize = 100

// MemoryIndex is an in-memory vector index using brute-force cosine similarity.
type MemoryIndex struct {
	mu       sync.RWMutex
	embedder Embedder
	records  []model.Evidence
	vectors  [][]float32
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex(embedder Embedder) *MemoryIndex {
	return &MemoryIndex{embedder: embedder}
}

// Add embeds and stores records.
func (m *MemoryIndex) Add(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Content
	}
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		batch, err := m.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return fmt.Errorf("embed records %d-%d: %w", start, end, err)
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(records) {
		return errors.New("records and vectors length mismatch")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range records {
		m.records = append(m.records, r.Evidence())
		m.vectors = append(m.vectors, normalizeVector(vectors[i]))
	}
	return nil
}

// Len returns the number of stored records.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// SimilaritySearch returns the k records closest to the query.
func (m *MemoryIndex) SimilaritySearch(ctx context.Context, query string, k int) ([]model.Evidence, error) {
	if k <= 0 {
		k = 5
	}
	vec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vec = normalizeVector(vec)

	m.mu.RLock()
	defer m.mu.RUnlock()

	idxs := make([]int, len(m.vectors))
	scores := make([]float64, len(m.vectors))
	for i := range m.vectors {
		idxs[i] = i
		scores[i] = dot(m.vectors[i], vec)
	}
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })

	if k > len(idxs) {
		k = len(idxs)
	}
	results := make([]model.Evidence, 0, k)
	for _, i := range idxs[:k] {
		results = append(results, m.records[i])
	}
	return results, nil
}

// LoadJSONL reads corpus records, one JSON object per line.
func LoadJSONL(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(text), &r); err != nil {
			return nil, fmt.Errorf("corpus line %d: %w", line, err)
		}
		if r.Content == "" {
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return records, nil
}

func normalizeVector(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

var _ Index = (*MemoryIndex)(nil)
