// Tool-augmented reasoning loop.
//
// Information Hiding:
// - Conversation assembly and engine communication hidden
// - Batch dispatch (parallel or sequential) hidden; results keep call order
// - Source numbering and citation resolution hidden behind Run

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/richinex/chatrag/citation"
	"github.com/richinex/chatrag/events"
	"github.com/richinex/chatrag/llm"
	"github.com/richinex/chatrag/model"
	"github.com/richinex/chatrag/tools"
)

// Toolset runs one named tool call. *tools.Toolset satisfies it.
type Toolset interface {
	Run(ctx context.Context, name string, raw json.RawMessage) tools.Result
}

// Agent answers questions by letting an engine request retrievals.
// One Agent may serve concurrent sessions.
type Agent struct {
	config   Config
	provider llm.Provider
	toolset  Toolset
	defs     []llm.ToolDefinition
	logger   *zap.Logger
}

// New creates an agent. A nil logger disables logging.
func New(config Config, provider llm.Provider, toolset Toolset, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		config:   config.withDefaults(),
		provider: provider,
		toolset:  toolset,
		defs:     toolDefinitions(),
		logger:   logger,
	}
}

func toolDefinitions() []llm.ToolDefinition {
	catalog := tools.Catalog()
	defs := make([]llm.ToolDefinition, len(catalog))
	for i, md := range catalog {
		defs[i] = llm.ToolDefinition{
			Name:        md.Name,
			Description: md.Description,
			Parameters:  md.Schema(),
		}
	}
	return defs
}

// Run answers question, priming the engine with the tail of history, and
// reports progress to emit. emit may be nil. Run closes emit before
// returning. A cancelled ctx stops the session without further events.
func (a *Agent) Run(ctx context.Context, question string, history []llm.ChatMessage, emit *events.Emitter) Result {
	defer emit.Close()

	start := time.Now()
	s := newSession()
	var usage llm.TokenUsage
	engineCalls := 0

	finish := func() Result {
		return a.result(s, "", nil, usage, engineCalls, start)
	}

	emit.Thinking("Analyzing the question and planning searches...")

	conversation := []llm.ChatMessage{
		llm.SystemMessage(a.config.SystemPrompt),
		llm.UserMessage(primePrompt(question, history, a.config.HistoryTurns)),
	}

	var answer string
	emptyTurns := 0
	for {
		if ctx.Err() != nil {
			s.abort(AbortCancelled)
			return finish()
		}

		resp, err := a.chat(ctx, conversation)
		engineCalls++
		if err != nil {
			if ctx.Err() != nil {
				s.abort(AbortCancelled)
				return finish()
			}
			a.logger.Error("engine call failed",
				zap.String("provider", a.provider.Name()),
				zap.String("model", a.provider.Model()),
				zap.Int("iteration", s.iteration),
				zap.Error(err))
			s.abort(AbortEngineError)
			emit.Error(engineErrorMessage)
			return finish()
		}
		usage.Add(resp.Usage)
		s.state = StateAwaitingToolCalls

		if resp.Empty() {
			emptyTurns++
			if emptyTurns >= 2 {
				a.logger.Warn("engine returned consecutive empty turns", zap.Int("iteration", s.iteration))
				s.abort(AbortEmptyResponse)
				emit.Error(emptyResponseMessage)
				return finish()
			}
			a.logger.Debug("empty engine turn, re-prompting", zap.Int("iteration", s.iteration))
			conversation = append(conversation, llm.UserMessage(rePrompt))
			continue
		}
		emptyTurns = 0

		if len(resp.ToolCalls) == 0 {
			answer = resp.Content
			break
		}
		if s.iteration >= a.config.MaxIterations {
			a.logger.Info("iteration bound reached, answering with available text",
				zap.Int("iterations", s.iteration),
				zap.Int("pending_calls", len(resp.ToolCalls)))
			s.truncated = true
			answer = resp.Content
			break
		}

		s.iteration++
		s.state = StateDispatching
		conversation = append(conversation, llm.AssistantToolCallMessage(resp.Content, resp.ToolCalls))

		results, ok := a.dispatch(ctx, s, resp.ToolCalls, emit)
		if !ok {
			s.abort(AbortCancelled)
			return finish()
		}
		conversation = append(conversation, results...)
		emit.Thinking(fmt.Sprintf("Processing search results... (%d tool calls so far)", len(s.calls)))
	}

	s.state = StateAwaitingFinalText
	cited := citation.Resolve(answer, s.sources)
	records := citation.Records(cited)

	if !emit.Content(answer) && ctx.Err() != nil {
		s.abort(AbortCancelled)
		result := a.result(s, answer, cited, usage, engineCalls, start)
		result.Citations = records
		return result
	}
	s.state = StateDone

	result := a.result(s, answer, cited, usage, engineCalls, start)
	result.Citations = records

	a.logger.Info("session complete",
		zap.Int("iterations", s.iteration),
		zap.Int("sources", len(s.sources)),
		zap.Int("cited", len(cited)),
		zap.Bool("truncated", s.truncated),
		zap.Uint64("duration_ms", result.DurationMs))

	emit.Sources(records)
	emit.Done(events.Done{
		Iterations:     result.Iterations,
		TotalRetrieved: result.TotalRetrieved,
		UniqueSources:  result.UniqueRetrieved,
		SourcesCited:   len(cited),
		ToolsUsed:      result.ToolsUsed,
		Truncated:      result.Truncated,
	})
	return result
}

// chat performs one bounded engine call.
func (a *Agent) chat(ctx context.Context, conversation []llm.ChatMessage) (llm.LLMResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.EngineTimeout)
	defer cancel()
	return a.provider.ChatWithTools(ctx, conversation, a.defs)
}

type outcome struct {
	result   tools.Result
	duration time.Duration
}

// dispatch executes one batch and returns the tool messages in call order.
// It reports false when ctx was cancelled; the batch is then discarded.
func (a *Agent) dispatch(ctx context.Context, s *session, calls []llm.ToolCall, emit *events.Emitter) ([]llm.ChatMessage, bool) {
	args := make([]map[string]any, len(calls))
	for i, call := range calls {
		args[i] = decodeArguments(call.Arguments)
		emit.ToolCall(call.Name, args[i], s.iteration)
	}

	outcomes := make([]outcome, len(calls))
	run := func(i int) {
		began := time.Now()
		outcomes[i].result = a.toolset.Run(ctx, calls[i].Name, calls[i].Arguments)
		outcomes[i].duration = time.Since(began)
	}

	if a.config.ParallelTools && len(calls) > 1 {
		var g errgroup.Group
		g.SetLimit(a.config.ParallelLimit)
		for i := range calls {
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range calls {
			if ctx.Err() != nil {
				break
			}
			run(i)
		}
	}

	if ctx.Err() != nil {
		return nil, false
	}

	messages := make([]llm.ChatMessage, len(calls))
	for i, call := range calls {
		out := outcomes[i]
		first := s.addEvidence(out.result.Items)
		text := out.result.Render(first)

		s.calls = append(s.calls, model.ToolCall{
			Name:        call.Name,
			Arguments:   args[i],
			Iteration:   s.iteration,
			ResultCount: len(out.result.Items),
			DurationMs:  uint64(out.duration.Milliseconds()),
		})
		a.logger.Debug("tool call",
			zap.String("tool", call.Name),
			zap.Int("iteration", s.iteration),
			zap.Int("results", len(out.result.Items)),
			zap.Duration("duration", out.duration))

		emit.ToolResult(call.Name, len(out.result.Items), text, s.iteration)
		messages[i] = llm.ToolResultMessage(call, text)
	}
	return messages, true
}

func decodeArguments(raw json.RawMessage) map[string]any {
	args, err := tools.ParseArgs(raw)
	if err != nil {
		return map[string]any{}
	}
	return args
}

func (a *Agent) result(s *session, answer string, cited []model.NumberedSource, usage llm.TokenUsage, engineCalls int, start time.Time) Result {
	if cited == nil {
		cited = []model.NumberedSource{}
	}
	return Result{
		Answer:          answer,
		Citations:       []model.Citation{},
		Cited:           cited,
		Sources:         s.sources,
		ToolCalls:       s.calls,
		Iterations:      s.iteration,
		TotalRetrieved:  len(s.sources),
		UniqueRetrieved: s.uniqueSources(),
		ToolsUsed:       s.toolsUsed(),
		State:           s.state,
		AbortReason:     s.reason,
		Truncated:       s.truncated,
		EngineCalls:     engineCalls,
		Usage:           usage,
		DurationMs:      uint64(time.Since(start).Milliseconds()),
	}
}
