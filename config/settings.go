// Package config provides application settings loaded from an optional YAML
// file and environment variables.
//
// Settings are created via Load() which handles:
// - YAML file parsing (a missing default file is not an error)
// - Environment variable parsing with validation; env overrides the file
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "chatrag.yaml"

// Settings holds all application configuration.
type Settings struct {
	LLM       LLMConfig       `yaml:"llm"`
	Agent     AgentConfig     `yaml:"agent"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Cache     CacheConfig     `yaml:"cache"`
	Storage   StorageConfig   `yaml:"storage"`
}

// LLMConfig holds reasoning-engine provider configuration.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	MaxTokens   uint32  `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// AgentConfig holds reasoning-loop configuration.
type AgentConfig struct {
	MaxIterations     int  `yaml:"max_iterations"`
	HistoryTurns      int  `yaml:"history_turns"`
	EngineTimeoutSecs int  `yaml:"engine_timeout_secs"`
	ParallelTools     bool `yaml:"parallel_tools"`
}

// EngineTimeout returns the per-call engine timeout.
func (c AgentConfig) EngineTimeout() time.Duration {
	return time.Duration(c.EngineTimeoutSecs) * time.Second
}

// RetrievalConfig selects and configures the vector index.
type RetrievalConfig struct {
	Backend        string       `yaml:"backend"` // memory | qdrant
	CorpusPath     string       `yaml:"corpus_path"`
	EmbeddingModel string       `yaml:"embedding_model"`
	TimeoutSecs    int          `yaml:"timeout_secs"`
	MaxRetries     int          `yaml:"max_retries"`
	Qdrant         QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// CacheConfig configures the evidence cache.
type CacheConfig struct {
	TTLSecs  int `yaml:"ttl_secs"`
	Capacity int `yaml:"capacity"`
}

// TTL returns the entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSecs) * time.Second
}

// StorageConfig locates the conversation store.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// providerInfo holds configuration for a specific provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"gemini":    {"GEMINI_MODEL", "gemini-2.5-flash", "GEMINI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
	"openai":    {"OPENAI_MODEL", "gpt-4o", "OPENAI_API_KEY"},
	"deepseek":  {"DEEPSEEK_MODEL", "deepseek-chat", "DEEPSEEK_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		LLM: LLMConfig{
			Provider:    "gemini",
			MaxTokens:   4096,
			Temperature: 0.2,
		},
		Agent: AgentConfig{
			MaxIterations:     15,
			HistoryTurns:      10,
			EngineTimeoutSecs: 90,
			ParallelTools:     true,
		},
		Retrieval: RetrievalConfig{
			Backend:        "memory",
			CorpusPath:     "messages.jsonl",
			EmbeddingModel: "gemini-embedding-001",
			TimeoutSecs:    10,
			MaxRetries:     2,
			Qdrant: QdrantConfig{
				URL:        "http://localhost:6333",
				Collection: "chat_messages",
			},
		},
		Cache: CacheConfig{
			TTLSecs:  300,
			Capacity: 100,
		},
		Storage: StorageConfig{
			DBPath: ".chatrag/conversations.db",
		},
	}
}

// Load builds settings from defaults, the YAML file at path and the
// environment, in increasing precedence. An empty path reads DefaultPath
// if it exists.
func Load(path string) (Settings, error) {
	settings := Defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Settings{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(&settings); err != nil {
		return Settings{}, err
	}
	if err := settings.normalize(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// MustLoad is Load that panics on error.
// Use this only when configuration errors should be fatal.
func MustLoad(path string) Settings {
	settings, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

func applyEnv(s *Settings) error {
	var err error
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		s.LLM.Provider = v
	}
	if s.LLM.MaxTokens, err = getEnvUint32("LLM_MAX_TOKENS", s.LLM.MaxTokens); err != nil {
		return err
	}
	if s.LLM.Temperature, err = getEnvFloat64("LLM_TEMPERATURE", s.LLM.Temperature); err != nil {
		return err
	}

	if s.Agent.MaxIterations, err = getEnvInt("AGENT_MAX_ITERATIONS", s.Agent.MaxIterations); err != nil {
		return err
	}
	if s.Agent.HistoryTurns, err = getEnvInt("AGENT_HISTORY_TURNS", s.Agent.HistoryTurns); err != nil {
		return err
	}
	if s.Agent.EngineTimeoutSecs, err = getEnvInt("AGENT_ENGINE_TIMEOUT_SECS", s.Agent.EngineTimeoutSecs); err != nil {
		return err
	}
	if s.Agent.ParallelTools, err = getEnvBool("AGENT_PARALLEL_TOOLS", s.Agent.ParallelTools); err != nil {
		return err
	}

	s.Retrieval.Backend = getEnvString("RETRIEVAL_BACKEND", s.Retrieval.Backend)
	s.Retrieval.CorpusPath = getEnvString("RETRIEVAL_CORPUS_PATH", s.Retrieval.CorpusPath)
	s.Retrieval.EmbeddingModel = getEnvString("EMBEDDING_MODEL", s.Retrieval.EmbeddingModel)
	if s.Retrieval.TimeoutSecs, err = getEnvInt("RETRIEVAL_TIMEOUT_SECS", s.Retrieval.TimeoutSecs); err != nil {
		return err
	}
	if s.Retrieval.MaxRetries, err = getEnvInt("RETRIEVAL_MAX_RETRIES", s.Retrieval.MaxRetries); err != nil {
		return err
	}
	s.Retrieval.Qdrant.URL = getEnvString("QDRANT_URL", s.Retrieval.Qdrant.URL)
	s.Retrieval.Qdrant.APIKey = getEnvString("QDRANT_API_KEY", s.Retrieval.Qdrant.APIKey)
	s.Retrieval.Qdrant.Collection = getEnvString("QDRANT_COLLECTION", s.Retrieval.Qdrant.Collection)

	if s.Cache.TTLSecs, err = getEnvInt("CACHE_TTL_SECS", s.Cache.TTLSecs); err != nil {
		return err
	}
	if s.Cache.Capacity, err = getEnvInt("CACHE_CAPACITY", s.Cache.Capacity); err != nil {
		return err
	}

	s.Storage.DBPath = getEnvString("CHATRAG_DB_PATH", s.Storage.DBPath)
	return nil
}

// normalize canonicalizes the provider, fills the model and validates ranges.
func (s *Settings) normalize() error {
	s.LLM.Provider = normalizeProvider(s.LLM.Provider)
	info, err := getProviderInfo(s.LLM.Provider)
	if err != nil {
		return err
	}
	if model := os.Getenv(info.modelEnv); model != "" {
		s.LLM.Model = model
	}
	if s.LLM.Model == "" {
		s.LLM.Model = info.defaultModel
	}

	switch s.Retrieval.Backend {
	case "memory", "qdrant":
	default:
		return fmt.Errorf("unknown retrieval backend: %q", s.Retrieval.Backend)
	}

	if s.Agent.MaxIterations < 1 {
		return fmt.Errorf("agent max_iterations must be positive, got %d", s.Agent.MaxIterations)
	}
	if s.Agent.HistoryTurns < 0 {
		return fmt.Errorf("agent history_turns must not be negative, got %d", s.Agent.HistoryTurns)
	}
	if s.Cache.Capacity < 1 || s.Cache.TTLSecs < 1 {
		return fmt.Errorf("cache ttl_secs and capacity must be positive")
	}
	return nil
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" && provider == "gemini" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return b, nil
}
