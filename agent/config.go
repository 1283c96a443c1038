// Agent configuration types.
//
// Information Hiding:
// - Default values hidden

package agent

import "time"

// Defaults of the reasoning loop.
const (
	DefaultMaxIterations = 15
	DefaultHistoryTurns  = 10
	DefaultEngineTimeout = 90 * time.Second
	DefaultParallelLimit = 4
)

// Config holds reasoning-loop configuration.
type Config struct {
	// SystemPrompt guides the engine. Empty uses DefaultSystemPrompt.
	SystemPrompt string

	// MaxIterations bounds the number of tool-call batches per session.
	MaxIterations int

	// HistoryTurns is how many prior conversation turns prime a session.
	HistoryTurns int

	// EngineTimeout bounds each engine call.
	EngineTimeout time.Duration

	// ParallelTools runs the calls of one batch concurrently.
	ParallelTools bool

	// ParallelLimit caps concurrent calls within a batch.
	ParallelLimit int
}

// DefaultConfig returns the standard loop configuration.
func DefaultConfig() Config {
	return Config{
		SystemPrompt:  DefaultSystemPrompt,
		MaxIterations: DefaultMaxIterations,
		HistoryTurns:  DefaultHistoryTurns,
		EngineTimeout: DefaultEngineTimeout,
		ParallelTools: true,
		ParallelLimit: DefaultParallelLimit,
	}
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SystemPrompt == "" {
		c.SystemPrompt = d.SystemPrompt
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.HistoryTurns < 0 {
		c.HistoryTurns = 0
	}
	if c.EngineTimeout <= 0 {
		c.EngineTimeout = d.EngineTimeout
	}
	if c.ParallelLimit <= 0 {
		c.ParallelLimit = d.ParallelLimit
	}
	return c
}
