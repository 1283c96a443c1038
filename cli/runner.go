// Command execution for CLI commands.
//
// Information Hiding:
// - Session setup and history persistence hidden
// - Event stream consumption hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/richinex/chatrag/agent"
	"github.com/richinex/chatrag/config"
	"github.com/richinex/chatrag/events"
	"github.com/richinex/chatrag/llm"
	"github.com/richinex/chatrag/storage"
	"github.com/richinex/chatrag/tools"
)

// Output formats.
const (
	FormatJSONL = "jsonl"
	FormatText  = "text"
)

const eventBuffer = 64

// Options holds CLI execution options.
type Options struct {
	ConfigPath string
	Provider   string
	MaxIter    int
	SessionID  string
	DBPath     string
	Format     string
	Verbose    bool
}

// settings loads configuration and applies flag overrides.
func (o Options) settings() (config.Settings, error) {
	if o.Provider != "" {
		if err := os.Setenv("LLM_PROVIDER", o.Provider); err != nil {
			return config.Settings{}, err
		}
	}
	settings, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Settings{}, err
	}
	if o.MaxIter > 0 {
		settings.Agent.MaxIterations = o.MaxIter
	}
	if o.DBPath != "" {
		settings.Storage.DBPath = o.DBPath
	}
	return settings, nil
}

// Ask answers one question, streaming events to out.
func Ask(ctx context.Context, question string, opts Options, out io.Writer) error {
	logger, err := NewLogger(opts.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	settings, err := opts.settings()
	if err != nil {
		return err
	}
	a, err := createAgent(ctx, settings, logger)
	if err != nil {
		return err
	}

	store, history, err := openSession(ctx, opts.SessionID, settings.Storage.DBPath)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	result := runTurn(ctx, a, question, history, opts.Format, out)
	if !result.Succeeded() {
		return fmt.Errorf("session ended without an answer: %s", result.AbortReason)
	}
	if store != nil {
		saveTurn(ctx, store, opts.SessionID, question, result.Answer, logger)
	}
	return nil
}

// Chat starts an interactive session reading questions from in.
func Chat(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	logger, err := NewLogger(opts.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	settings, err := opts.settings()
	if err != nil {
		return err
	}
	a, err := createAgent(ctx, settings, logger)
	if err != nil {
		return err
	}

	session := opts.SessionID
	if session == "" {
		session = storage.NewSessionID()
	}
	store, history, err := openSession(ctx, session, settings.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(history) > 0 {
		fmt.Fprintf(out, "Resuming session '%s' (%d messages)\n\n", session, len(history))
	} else {
		fmt.Fprintf(out, "Session %s. Type 'exit' to quit.\n\n", session)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		result := runTurn(ctx, a, input, history, opts.Format, out)
		if !result.Succeeded() {
			continue
		}
		history = append(history, llm.UserMessage(input), llm.AssistantMessage(result.Answer))
		saveTurn(ctx, store, session, input, result.Answer, logger)
	}

	return scanner.Err()
}

// runTurn runs one agent session and writes its events as they arrive.
func runTurn(ctx context.Context, a *agent.Agent, question string, history []llm.ChatMessage, format string, out io.Writer) agent.Result {
	emit := events.NewEmitter(ctx, eventBuffer)
	done := make(chan agent.Result, 1)
	go func() {
		done <- a.Run(ctx, question, history, emit)
	}()

	w := newEventWriter(out, format)
	for ev := range emit.Events() {
		w.write(ev)
	}
	w.finish()
	return <-done
}

func openSession(ctx context.Context, sessionID, dbPath string) (*storage.SqliteStorage, []llm.ChatMessage, error) {
	if sessionID == "" {
		return nil, nil, nil
	}
	store, err := storage.OpenSqlite(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	history, err := store.Load(ctx, sessionID)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to load history: %w", err)
	}
	return store, history, nil
}

func saveTurn(ctx context.Context, store storage.ConversationStorage, sessionID, question, answer string, logger *zap.Logger) {
	err := store.Append(ctx, sessionID, llm.UserMessage(question), llm.AssistantMessage(answer))
	if err != nil {
		logger.Warn("failed to save history", zap.String("session", sessionID), zap.Error(err))
	}
}

// eventWriter renders events as JSON lines or readable text.
type eventWriter struct {
	out       io.Writer
	format    string
	enc       *json.Encoder
	inContent bool
}

func newEventWriter(out io.Writer, format string) *eventWriter {
	if format != FormatText {
		format = FormatJSONL
	}
	return &eventWriter{out: out, format: format, enc: json.NewEncoder(out)}
}

func (w *eventWriter) write(ev events.Event) {
	if w.format == FormatJSONL {
		_ = w.enc.Encode(ev)
		return
	}

	if ev.Type != events.TypeContent && w.inContent {
		fmt.Fprintln(w.out)
		w.inContent = false
	}
	switch data := ev.Data.(type) {
	case events.Thinking:
		fmt.Fprintf(w.out, "... %s\n", data.Content)
	case events.ToolCall:
		args, _ := json.Marshal(data.Arguments)
		fmt.Fprintf(w.out, "[%d] %s(%s)\n", data.Iteration, data.Tool, args)
	case events.ToolResult:
		fmt.Fprintf(w.out, "[%d] %s returned %d results\n", data.Iteration, data.Tool, data.ResultCount)
	case events.Content:
		if !w.inContent {
			fmt.Fprintln(w.out)
			w.inContent = true
		}
		fmt.Fprint(w.out, data.Text)
	case events.Sources:
		if len(data.Sources) == 0 {
			return
		}
		fmt.Fprintln(w.out, "\nSources:")
		for _, c := range data.Sources {
			fmt.Fprintf(w.out, "  [%d] %s\n", c.SourceNumber, truncateString(c.Snippet, maxSnippetDisplay))
			for _, u := range c.URLs {
				fmt.Fprintf(w.out, "      %s\n", u)
			}
			if c.Message != nil {
				fmt.Fprintf(w.out, "      channel %s, message %s\n", c.Message.ChannelID, c.Message.MessageID)
			}
		}
	case events.Done:
		fmt.Fprintf(w.out, "\n(%d iterations, %d retrieved, %d unique, %d cited)\n",
			data.Iterations, data.TotalRetrieved, data.UniqueSources, data.SourcesCited)
	case events.Error:
		fmt.Fprintf(w.out, "Error: %s\n", data.Message)
	}
}

func (w *eventWriter) finish() {
	if w.inContent {
		fmt.Fprintln(w.out)
		w.inContent = false
	}
}

// ListTools lists the retrieval tools offered to the engine.
func ListTools(out io.Writer, verbose bool) {
	fmt.Fprintln(out, "Available tools:")
	fmt.Fprintln(out)

	for _, meta := range tools.Catalog() {
		fmt.Fprintf(out, "  %s\n", meta.Name)
		fmt.Fprintf(out, "    %s\n", meta.Description)

		if verbose && len(meta.Parameters) > 0 {
			fmt.Fprintln(out, "    Parameters:")
			for _, param := range meta.Parameters {
				req := ""
				if param.Required {
					req = "*"
				}
				fmt.Fprintf(out, "      %s%s: %s - %s\n", param.Name, req, param.ParamType, param.Description)
			}
		}
		fmt.Fprintln(out)
	}
}

const maxSnippetDisplay = 120

// truncateString truncates a string to maxLen runes, preserving UTF-8 boundaries.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
