package agent

import (
	"github.com/richinex/chatrag/model"
)

// session is the state of one invocation. It is owned by the goroutine
// running the loop and never shared.
type session struct {
	state     State
	reason    AbortReason
	iteration int
	truncated bool
	sources   []model.NumberedSource
	calls     []model.ToolCall
}

func newSession() *session {
	return &session{state: StateStarted}
}

// addEvidence numbers items after the existing sources and returns the
// first number assigned. Repeated content gets a new number; duplicates are
// collapsed when citations are resolved.
func (s *session) addEvidence(items []model.Evidence) int {
	first := len(s.sources) + 1
	for i, item := range items {
		s.sources = append(s.sources, model.NumberedSource{Number: first + i, Evidence: item})
	}
	return first
}

func (s *session) uniqueSources() int {
	ids := make(map[string]struct{}, len(s.sources))
	for _, src := range s.sources {
		ids[src.ID] = struct{}{}
	}
	return len(ids)
}

// toolsUsed returns distinct tool names in first-use order.
func (s *session) toolsUsed() []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, c := range s.calls {
		if !seen[c.Name] {
			seen[c.Name] = true
			names = append(names, c.Name)
		}
	}
	return names
}

// abort ends the session. A session that already ended keeps its outcome.
func (s *session) abort(reason AbortReason) {
	if s.state.Terminal() {
		return
	}
	s.state = StateAborted
	s.reason = reason
}
