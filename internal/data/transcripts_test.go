package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveTurnAndGetTranscript(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTurn(ctx, "s1", "user", "swap bench press"))
	require.NoError(t, store.SaveTurn(ctx, "s1", "assistant", "here are some alternatives"))
	require.NoError(t, store.SaveTurn(ctx, "s2", "user", "hello"))

	turns, err := store.GetTranscript(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, 1, turns[0].Seq)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "swap bench press", turns[0].Content)
	assert.Equal(t, 2, turns[1].Seq)
	assert.Equal(t, "assistant", turns[1].Role)
	assert.False(t, turns[0].CreatedAt.IsZero())
}

func TestGetTranscriptUnknownSession(t *testing.T) {
	store := newTestStore(t)

	turns, err := store.GetTranscript(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestReplaceTranscript(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTurn(ctx, "s1", "user", "old"))
	require.NoError(t, store.ReplaceTranscript(ctx, "s1", []Turn{
		{Role: "user", Content: "imported question"},
		{Role: "assistant", Content: "imported answer"},
	}))

	turns, err := store.GetTranscript(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "imported question", turns[0].Content)
	assert.Equal(t, 1, turns[0].Seq)
}

func TestDeleteSessionCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTurn(ctx, "s1", "user", "hello"))
	require.NoError(t, store.DeleteSession(ctx, "s1"))

	turns, err := store.GetTranscript(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestListSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTurn(ctx, "a", "user", "one"))
	require.NoError(t, store.SaveTurn(ctx, "a", "assistant", "two"))
	require.NoError(t, store.SaveTurn(ctx, "b", "user", "three"))

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	byID := map[string]Session{}
	for _, s := range sessions {
		byID[s.ID] = s
	}
	assert.Equal(t, 2, byID["a"].TurnCount)
	assert.Equal(t, 1, byID["b"].TurnCount)
}

func TestMigrateIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Migrate())
	require.NoError(t, store.Health(context.Background()))
}
