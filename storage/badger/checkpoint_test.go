package badger

import (
	"context"
	"testing"

	"github.com/poiesic/lunaris/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRepository_SaveAndLoad(t *testing.T) {
	backend, err := NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()

	repo := NewCheckpointRepository(backend)
	ctx := context.Background()

	// Missing checkpoint is not an error
	checkpoint, err := repo.LoadCheckpoint(ctx, "reindex")
	require.NoError(t, err)
	assert.Nil(t, checkpoint)

	err = repo.SaveCheckpoint(ctx, &core.Checkpoint{
		JobName:   "reindex",
		Processed: 42,
		LastID:    core.ID(7),
	})
	require.NoError(t, err)

	checkpoint, err = repo.LoadCheckpoint(ctx, "reindex")
	require.NoError(t, err)
	require.NotNil(t, checkpoint)
	assert.Equal(t, "reindex", checkpoint.JobName)
	assert.Equal(t, 42, checkpoint.Processed)
	assert.Equal(t, core.ID(7), checkpoint.LastID)
	assert.False(t, checkpoint.UpdatedAt.IsZero())

	require.NoError(t, repo.ClearCheckpoint(ctx, "reindex"))

	checkpoint, err = repo.LoadCheckpoint(ctx, "reindex")
	require.NoError(t, err)
	assert.Nil(t, checkpoint)
}
