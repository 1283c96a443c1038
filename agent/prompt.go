package agent

import (
	"fmt"
	"strings"

	"github.com/richinex/chatrag/llm"
)

// DefaultSystemPrompt instructs the engine to search before answering and
// to cite evidence by source number.
const DefaultSystemPrompt = `You are a helpful assistant that answers questions about chat history.

Search the message database for relevant context, then give a thorough answer.

INSTRUCTIONS:
1. Use the search tools. For complex questions (relationships between people, opinions, patterns) search several times with different queries.
2. Use search_by_author when the question is about a specific person, search_by_time_range for periods, and neighborhood_lookup to read what was said around a message.
3. Keep searching until you have enough context, then answer.
4. Cite evidence with its source number, like [Source 1] or [Source 2, 5].
5. If you cannot find relevant information after searching, say so honestly.

You are in a multi-turn conversation. Use earlier messages for context and avoid repeating searches.`

const rePrompt = "Your last reply was empty. Either call a tool to search for more information or write your final answer."

// primePrompt renders the last turns of history followed by the question.
func primePrompt(question string, history []llm.ChatMessage, turns int) string {
	if len(history) > turns {
		history = history[len(history)-turns:]
	}

	var lines []string
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleUser:
			lines = append(lines, "User: "+msg.Content)
		case llm.RoleAssistant:
			lines = append(lines, "Assistant: "+msg.Content)
		}
	}
	if len(lines) == 0 {
		return question
	}
	return fmt.Sprintf("Previous conversation:\n%s\n\nCurrent question: %s", strings.Join(lines, "\n"), question)
}
