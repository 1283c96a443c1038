package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/chatrag/llm"
)

func backends(t *testing.T) map[string]ConversationStorage {
	t.Helper()
	sqlite, err := NewSqliteInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]ConversationStorage{
		"memory": NewInMemoryStorage(),
		"sqlite": sqlite,
	}
}

func TestSaveAndLoad(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			messages := []llm.ChatMessage{
				llm.UserMessage("Hello"),
				llm.AssistantMessage("Hi there"),
			}
			require.NoError(t, store.Save(ctx, "s1", messages))

			loaded, err := store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, messages, loaded)
		})
	}
}

func TestLoadNonexistentSession(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			loaded, err := store.Load(context.Background(), "missing")
			require.NoError(t, err)
			assert.NotNil(t, loaded)
			assert.Empty(t, loaded)

			ok, err := store.Exists(context.Background(), "missing")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestAppendAndRecent(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 6; i++ {
				require.NoError(t, store.Append(ctx, "s1",
					llm.UserMessage(fmt.Sprintf("q%d", i)),
					llm.AssistantMessage(fmt.Sprintf("a%d", i))))
			}

			recent, err := store.Recent(ctx, "s1", 3)
			require.NoError(t, err)
			require.Len(t, recent, 3)
			assert.Equal(t, "a4", recent[0].Content)
			assert.Equal(t, "q5", recent[1].Content)
			assert.Equal(t, "a5", recent[2].Content)

			all, err := store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Len(t, all, 12)
		})
	}
}

func TestToolTrafficIsNotStored(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := llm.ToolCall{ID: "1", Name: "semantic_search"}
			require.NoError(t, store.Append(ctx, "s1",
				llm.UserMessage("q"),
				llm.AssistantToolCallMessage("", []llm.ToolCall{c}),
				llm.ToolResultMessage(c, "[Source 1] ..."),
				llm.AssistantMessage("a")))

			loaded, err := store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, []llm.ChatMessage{llm.UserMessage("q"), llm.AssistantMessage("a")}, loaded)
		})
	}
}

func TestDeleteAndList(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, "a", []llm.ChatMessage{llm.UserMessage("x")}))
			require.NoError(t, store.Save(ctx, "b", []llm.ChatMessage{llm.UserMessage("y")}))

			ids, err := store.ListSessions(ctx)
			require.NoError(t, err)
			sort.Strings(ids)
			assert.Equal(t, []string{"a", "b"}, ids)

			require.NoError(t, store.Delete(ctx, "a"))
			ok, err := store.Exists(ctx, "a")
			require.NoError(t, err)
			assert.False(t, ok)

			loaded, err := store.Load(ctx, "a")
			require.NoError(t, err)
			assert.Empty(t, loaded)
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, "s", []llm.ChatMessage{llm.UserMessage("old"), llm.UserMessage("older")}))
			require.NoError(t, store.Save(ctx, "s", []llm.ChatMessage{llm.UserMessage("new")}))

			loaded, err := store.Load(ctx, "s")
			require.NoError(t, err)
			assert.Equal(t, []llm.ChatMessage{llm.UserMessage("new")}, loaded)
		})
	}
}

func TestSqliteFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chat.db")
	ctx := context.Background()

	store, err := OpenSqlite(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, "s", llm.UserMessage("persisted")))
	require.NoError(t, store.Close())

	reopened, err := OpenSqlite(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "s")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "persisted", loaded[0].Content)
}

func TestNewSessionIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
	assert.Len(t, NewSessionID(), 36)
}
