package agent

// State is a phase of one question-answering session.
type State int

const (
	StateStarted State = iota
	StateAwaitingToolCalls
	StateDispatching
	StateAwaitingFinalText
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateAwaitingToolCalls:
		return "awaiting_tool_calls"
	case StateDispatching:
		return "dispatching"
	case StateAwaitingFinalText:
		return "awaiting_final_text"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether the session has ended.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}

// AbortReason explains an Aborted session.
type AbortReason string

const (
	AbortNone          AbortReason = ""
	AbortEmptyResponse AbortReason = "empty_response"
	AbortEngineError   AbortReason = "engine_error"
	AbortCancelled     AbortReason = "cancelled"
)

// Caller-safe messages of the terminal error event.
const (
	emptyResponseMessage = "The assistant returned no answer. Please try rephrasing the question."
	engineErrorMessage   = "The assistant is temporarily unavailable. Please try again later."
)
