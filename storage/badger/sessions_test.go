package badger

import (
	"context"
	"testing"

	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRepo(t *testing.T) *SessionRepository {
	t.Helper()
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	repo, err := NewSessionRepository(backend)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	repo := newSessionRepo(t)
	ctx := context.Background()

	session := &core.Session{
		SessionID: "sess-1",
		Model: core.ModelSpec{
			Provider: core.ProviderOpenAI,
			Name:     "gpt-4.1-nano",
		},
		CardIDs: []string{"new-moon"},
	}
	require.NoError(t, repo.Create(ctx, session))

	// Timestamps get stamped on create
	assert.False(t, session.CreatedAt.IsZero())
	assert.False(t, session.UpdatedAt.IsZero())

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, core.ProviderOpenAI, got.Model.Provider)
	assert.Equal(t, []string{"new-moon"}, got.CardIDs)
	assert.Empty(t, got.Messages)
}

func TestSessionRepository_CreateRejectsInvalid(t *testing.T) {
	repo := newSessionRepo(t)
	ctx := context.Background()

	t.Run("empty session ID", func(t *testing.T) {
		err := repo.Create(ctx, &core.Session{
			Model: core.ModelSpec{Provider: core.ProviderOpenAI, Name: "gpt-4.1-nano"},
		})
		assert.ErrorIs(t, err, core.ErrInvalidSession)
		assert.ErrorIs(t, err, core.ErrEmptySessionID)
	})

	t.Run("unknown provider", func(t *testing.T) {
		err := repo.Create(ctx, &core.Session{
			SessionID: "sess-bad",
			Model:     core.ModelSpec{Provider: "mistral", Name: "mistral-small"},
		})
		assert.ErrorIs(t, err, core.ErrInvalidProvider)

		_, getErr := repo.Get(ctx, "sess-bad")
		assert.ErrorIs(t, getErr, storage.ErrSessionNotFound, "rejected session is not persisted")
	})
}

func TestSessionRepository_GetMissing(t *testing.T) {
	repo := newSessionRepo(t)

	_, err := repo.Get(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionRepository_Update(t *testing.T) {
	repo := newSessionRepo(t)
	ctx := context.Background()

	session := &core.Session{
		SessionID: "sess-2",
		Model:     core.ModelSpec{Provider: core.ProviderOpenAI, Name: "gpt-4.1-nano"},
	}
	require.NoError(t, repo.Create(ctx, session))
	created := session.UpdatedAt

	newModel := core.ModelSpec{Provider: core.ProviderGemini, Name: "gemini-2.5-flash-lite"}
	err := repo.Update(ctx, "sess-2", storage.SessionUpdate{Model: &newModel})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, newModel, got.Model)
	assert.Empty(t, got.CardIDs, "unset fields stay untouched")
	assert.False(t, got.UpdatedAt.Before(created))

	cards := []string{"full-moon", "first-quarter"}
	err = repo.Update(ctx, "sess-2", storage.SessionUpdate{CardIDs: &cards})
	require.NoError(t, err)

	got, err = repo.Get(ctx, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, cards, got.CardIDs)
	assert.Equal(t, newModel, got.Model, "model survives card update")
}

func TestSessionRepository_UpdateMissing(t *testing.T) {
	repo := newSessionRepo(t)

	model := core.ModelSpec{Provider: core.ProviderOpenAI, Name: "gpt-4.1-nano"}
	err := repo.Update(context.Background(), "ghost", storage.SessionUpdate{Model: &model})
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionRepository_AppendMessage(t *testing.T) {
	repo := newSessionRepo(t)
	ctx := context.Background()

	session := &core.Session{
		SessionID: "sess-3",
		Model:     core.ModelSpec{Provider: core.ProviderOpenAI, Name: "gpt-4.1-nano"},
	}
	require.NoError(t, repo.Create(ctx, session))

	require.NoError(t, repo.AppendMessage(ctx, "sess-3", core.Turn{Role: core.RoleUser, Content: "Xin chào"}))
	require.NoError(t, repo.AppendMessage(ctx, "sess-3", core.Turn{Role: core.RoleAssistant, Content: "Chào bạn!"}))

	got, err := repo.Get(ctx, "sess-3")
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, core.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "Xin chào", got.Messages[0].Content)
	assert.Equal(t, core.RoleAssistant, got.Messages[1].Role)
	assert.False(t, got.Messages[0].Timestamp.IsZero(), "timestamp stamped on append")

	err = repo.AppendMessage(ctx, "ghost", core.Turn{Role: core.RoleUser, Content: "hi"})
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionRepository_Delete(t *testing.T) {
	repo := newSessionRepo(t)
	ctx := context.Background()

	session := &core.Session{
		SessionID: "sess-4",
		Model:     core.ModelSpec{Provider: core.ProviderOpenAI, Name: "gpt-4.1-nano"},
	}
	require.NoError(t, repo.Create(ctx, session))

	require.NoError(t, repo.Delete(ctx, "sess-4"))

	_, err := repo.Get(ctx, "sess-4")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	err = repo.Delete(ctx, "sess-4")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}
