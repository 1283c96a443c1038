package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/richinex/chatrag/cache"
	"github.com/richinex/chatrag/index"
	"github.com/richinex/chatrag/model"
)

// Sample sizes and bounds of the retrieval operations.
const (
	DefaultSearchResults = 8
	MaxSearchResults     = 20
	overFetchFactor      = 5
	maxOverFetch         = 100
	timelineSample       = 200
	statsSample          = 100
	DefaultRecent        = 20
	MaxRecent            = 50
	DefaultWindow        = 5
	MaxWindow            = 20
	topTermCount         = 10

	// broadSampleQuery seeds searches that want a wide, topic-neutral sample.
	broadSampleQuery = "conversation messages"
)

type handler func(ctx context.Context, args Args) (Result, error)

// Toolset executes retrieval tool calls against an index through a cache.
// Safe for concurrent use.
type Toolset struct {
	index    index.Index
	cache    *cache.Cache
	executor *Executor
	config   ToolConfig
	logger   *zap.Logger
	now      func() time.Time
	handlers [kindCount]handler
}

// Option configures a Toolset.
type Option func(*Toolset)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Toolset) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithClock replaces time.Now for relative time expressions.
func WithClock(now func() time.Time) Option {
	return func(t *Toolset) {
		if now != nil {
			t.now = now
		}
	}
}

// WithToolConfig overrides the retrieval timeout and retry configuration.
func WithToolConfig(config ToolConfig) Option {
	return func(t *Toolset) {
		t.config = config
	}
}

// New creates a toolset over idx. A nil cache gets a private one.
func New(idx index.Index, c *cache.Cache, opts ...Option) *Toolset {
	if c == nil {
		c = cache.New()
	}
	t := &Toolset{
		index:  idx,
		cache:  c,
		config: DefaultToolConfig(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.executor = NewExecutor(t.config, t.logger)

	t.handlers = [kindCount]handler{
		KindSemanticSearch:     t.semanticSearch,
		KindSearchByAuthor:     t.searchByAuthor,
		KindSearchByTimeRange:  t.searchByTimeRange,
		KindNeighborhoodLookup: t.neighborhoodLookup,
		KindAuthorActivity:     t.authorActivity,
		KindCountMentions:      t.countMentions,
		KindRecentMessages:     t.recentMessages,
		KindSelfAssessment:     t.selfAssessment,
	}
	return t
}

// Run executes the named tool. Unknown names and invalid arguments yield a
// result whose note explains the problem; retrieval failures yield an
// empty result. Run never fails the caller.
func (t *Toolset) Run(ctx context.Context, name string, raw json.RawMessage) Result {
	kind, ok := ParseKind(name)
	if !ok {
		t.logger.Warn("unknown tool requested", zap.String("tool", name))
		return Result{Kind: -1, Note: fmt.Sprintf("Unknown tool %q. Available tools: %s.", name, toolNames())}
	}

	args, err := ParseArgs(raw)
	if err != nil {
		return Result{Kind: kind, Note: fmt.Sprintf("Tool %s was not run: %v", name, err)}
	}

	result, err := t.handlers[kind](ctx, args)
	if err != nil {
		t.logger.Info("tool argument error", zap.String("tool", name), zap.Error(err))
		return Result{Kind: kind, Note: fmt.Sprintf("Tool %s was not run: %v", name, err)}
	}
	result.Kind = kind
	return result
}

// fetch returns index results for (query, k), consulting the cache first.
// Failures are logged and produce an empty, uncached result.
func (t *Toolset) fetch(ctx context.Context, kind Kind, query string, k int) []model.Evidence {
	key := cache.Key(kind.String(), map[string]any{"query": query, "k": k})
	if items, ok := t.cache.Get(key); ok {
		t.logger.Debug("evidence cache hit", zap.String("key", key), zap.Int("results", len(items)))
		return items
	}

	items, err := t.executor.Search(ctx, t.index, query, k)
	if err != nil {
		t.logger.Warn("retrieval failed, continuing with empty result",
			zap.String("tool", kind.String()),
			zap.String("query", query),
			zap.Error(err))
		return nil
	}

	t.logger.Debug("index search",
		zap.String("tool", kind.String()),
		zap.String("query", query),
		zap.Int("k", k),
		zap.Int("results", len(items)))
	t.cache.Put(key, items)
	return items
}

func toolNames() string {
	names := ""
	for k := Kind(0); k < kindCount; k++ {
		if k > 0 {
			names += ", "
		}
		names += k.String()
	}
	return names
}
