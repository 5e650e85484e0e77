package storage

import (
	"context"

	"github.com/poiesic/lunaris/core"
)

// SessionUpdate is a partial update applied to a stored session.
// Nil fields are left untouched.
type SessionUpdate struct {
	Model   *core.ModelSpec
	CardIDs *[]string
}

// SessionRepository manages chat session documents.
// Implementations must be safe for concurrent use.
type SessionRepository interface {
	// Create persists a new session. The caller mints the session ID.
	// Missing timestamps are stamped with the current time.
	Create(ctx context.Context, session *core.Session) error

	// Get retrieves a session by ID.
	// Returns ErrSessionNotFound if the session doesn't exist.
	Get(ctx context.Context, sessionID string) (*core.Session, error)

	// Update applies a partial update and bumps UpdatedAt.
	// Returns ErrSessionNotFound if the session doesn't exist.
	Update(ctx context.Context, sessionID string, update SessionUpdate) error

	// AppendMessage appends a turn to the session transcript and bumps
	// UpdatedAt. Returns ErrSessionNotFound if the session doesn't exist.
	AppendMessage(ctx context.Context, sessionID string, turn core.Turn) error

	// Delete removes a session.
	// Returns ErrSessionNotFound if the session doesn't exist.
	Delete(ctx context.Context, sessionID string) error
}

// HistoryRepository manages the per-session turn log that feeds model
// context windows. The log is insertion-ordered and append-only.
type HistoryRepository interface {
	// Append adds a turn to a session's log.
	// Stamps the turn's Timestamp with the current time if unset.
	Append(ctx context.Context, sessionID string, turn core.Turn) error

	// LoadRecent returns up to limit most recent turns in oldest-first
	// order, ready to prepend to a transcript. A non-empty role restricts
	// the result to turns with that role; the limit applies after
	// filtering. limit <= 0 means no limit.
	LoadRecent(ctx context.Context, sessionID string, limit int, role core.Role) ([]core.Turn, error)
}

// ProfileRepository manages per-user profile documents.
type ProfileRepository interface {
	// AppendContent appends a user message to the profile's content log,
	// creating the profile on first use. Returns the updated profile.
	AppendContent(ctx context.Context, userID string, content string) (*core.UserProfile, error)

	// SetAbout replaces the profile's model-written summary.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	SetAbout(ctx context.Context, userID string, about string) error

	// Get retrieves a profile by user ID.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	Get(ctx context.Context, userID string) (*core.UserProfile, error)
}

// CardRepository manages the oracle card deck.
type CardRepository interface {
	// Put stores a card, replacing any existing card with the same ID.
	Put(ctx context.Context, card *core.Card) error

	// Get retrieves a card by ID.
	// Returns ErrCardNotFound if the card doesn't exist.
	Get(ctx context.Context, cardID string) (*core.Card, error)

	// List returns all cards in the deck.
	List(ctx context.Context) ([]*core.Card, error)

	// ListByCategory returns the cards in a category.
	ListByCategory(ctx context.Context, category string) ([]*core.Card, error)

	// Random returns a uniformly chosen card.
	// Returns ErrCardNotFound if the deck is empty.
	Random(ctx context.Context) (*core.Card, error)
}

// KnowledgeRepository manages embedded reference chunks for similarity
// search.
type KnowledgeRepository interface {
	// Upsert stores chunks, generating content-based IDs for chunks with
	// ID zero and stamping missing timestamps.
	Upsert(ctx context.Context, chunks ...*core.KnowledgeChunk) error

	// Get retrieves a chunk by ID.
	// Returns ErrChunkNotFound if the chunk doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.KnowledgeChunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// ForEachBatch streams all chunks to fn in batches of batchSize.
	// Iteration stops at the first error from fn.
	ForEachBatch(ctx context.Context, batchSize int, fn func(ctx context.Context, batch []*core.KnowledgeChunk) error) error

	// NearestByVector returns chunks whose vectors score at least
	// minSimilarity against the query vector, highest first, up to limit.
	NearestByVector(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.KnowledgeMatch, error)
}

// CheckpointRepository persists resume state for maintenance jobs.
type CheckpointRepository interface {
	// SaveCheckpoint persists a checkpoint for a job.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a job.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, jobName string) (*core.Checkpoint, error)

	// ClearCheckpoint removes the checkpoint for a job.
	ClearCheckpoint(ctx context.Context, jobName string) error
}
