// Component assembly for CLI commands.
//
// Information Hiding:
// - Provider, embedder and index construction hidden
// - Cache and toolset wiring hidden

package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/richinex/chatrag/agent"
	"github.com/richinex/chatrag/cache"
	"github.com/richinex/chatrag/config"
	"github.com/richinex/chatrag/index"
	"github.com/richinex/chatrag/llm"
	"github.com/richinex/chatrag/tools"
)

// NewLogger returns a production JSON logger on stderr, at debug level
// when verbose.
func NewLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func createProvider(settings config.Settings) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
}

// createIndex opens the configured vector index. The memory backend embeds
// the whole corpus file up front.
func createIndex(ctx context.Context, settings config.Settings, logger *zap.Logger) (index.Index, error) {
	apiKey, err := config.APIKeyFor("gemini")
	if err != nil {
		return nil, fmt.Errorf("embeddings need a Gemini key: %w", err)
	}
	embedder, err := index.NewGenAIEmbedder(ctx, apiKey, settings.Retrieval.EmbeddingModel, "")
	if err != nil {
		return nil, err
	}

	switch settings.Retrieval.Backend {
	case "qdrant":
		q := settings.Retrieval.Qdrant
		logger.Info("using qdrant index",
			zap.String("url", q.URL),
			zap.String("collection", q.Collection))
		return index.NewQdrantIndex(index.QdrantConfig{
			URL:        q.URL,
			APIKey:     q.APIKey,
			Collection: q.Collection,
		}, embedder), nil
	default:
		records, err := index.LoadJSONL(settings.Retrieval.CorpusPath)
		if err != nil {
			return nil, err
		}
		mem := index.NewMemoryIndex(embedder)
		if err := mem.Add(ctx, records); err != nil {
			return nil, fmt.Errorf("failed to index corpus: %w", err)
		}
		logger.Info("indexed corpus",
			zap.String("path", settings.Retrieval.CorpusPath),
			zap.Int("messages", mem.Len()))
		return mem, nil
	}
}

// createAgent wires provider, index, cache and toolset into an agent.
func createAgent(ctx context.Context, settings config.Settings, logger *zap.Logger) (*agent.Agent, error) {
	provider, err := createProvider(settings)
	if err != nil {
		return nil, err
	}
	idx, err := createIndex(ctx, settings, logger)
	if err != nil {
		return nil, err
	}

	evidence := cache.New(
		cache.WithTTL(settings.Cache.TTL()),
		cache.WithCapacity(settings.Cache.Capacity),
	)
	toolset := tools.New(idx, evidence,
		tools.WithLogger(logger.Named("tools")),
		tools.WithToolConfig(tools.ToolConfig{
			TimeoutSecs: uint64(settings.Retrieval.TimeoutSecs),
			MaxRetries:  uint32(settings.Retrieval.MaxRetries),
		}),
	)

	cfg := agent.DefaultConfig()
	cfg.MaxIterations = settings.Agent.MaxIterations
	cfg.HistoryTurns = settings.Agent.HistoryTurns
	cfg.EngineTimeout = settings.Agent.EngineTimeout()
	cfg.ParallelTools = settings.Agent.ParallelTools

	logger.Debug("agent configured",
		zap.String("provider", provider.Name()),
		zap.String("model", provider.Model()),
		zap.Int("max_iterations", cfg.MaxIterations))
	return agent.New(cfg, provider, toolset, logger.Named("agent")), nil
}
