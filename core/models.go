package core

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn written by the human user.
	RoleUser Role = "user"
	// RoleAssistant marks a turn written by the model.
	RoleAssistant Role = "assistant"
	// RoleSystem marks an instruction turn injected ahead of the transcript.
	RoleSystem Role = "system"
)

// ParseRole normalizes a textual role into a Role.
// Input is trimmed and lowercased before matching.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAssistant:
		return RoleAssistant, nil
	case RoleSystem:
		return RoleSystem, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Provider identifies a chat model backend.
type Provider string

const (
	// ProviderOpenAI routes requests to the OpenAI API.
	ProviderOpenAI Provider = "openai"
	// ProviderGemini routes requests to the Gemini OpenAI-compatible API.
	ProviderGemini Provider = "gemini"
)

// ParseProvider normalizes a textual provider name into a Provider.
// Input is trimmed and lowercased; empty input selects ProviderOpenAI so
// callers can pass through optional request fields unchecked.
func ParseProvider(s string) (Provider, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ProviderOpenAI, nil
	}
	switch Provider(s) {
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderGemini:
		return ProviderGemini, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidProvider, s)
}

// Turn represents a single message in a conversation.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time // When the turn was produced
}

// ModelSpec records which backend model a session is bound to.
type ModelSpec struct {
	Provider   Provider
	Name       string
	Parameters map[string]string // Optional generation knobs (e.g. "temperature")
}

// Session is a persisted conversation with its model binding and the
// oracle cards drawn for it.
type Session struct {
	SessionID string
	Model     ModelSpec
	CardIDs   []string // Cards drawn for this session, in draw order
	Messages  []Turn   // Full transcript in insertion order
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserProfile accumulates what the assistant knows about a user.
// Content holds the raw user messages in arrival order; AboutUser holds
// the model-written summary that is refreshed periodically.
type UserProfile struct {
	UserID    string
	Content   []string
	AboutUser string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CardContent holds the long-form reading sections of an oracle card.
type CardContent struct {
	OverallMeaning     string
	AttuneToTheMoon    string
	AdditionalMeanings []string
	TheTeaching        string
}

// Card is a single Moonology oracle card.
type Card struct {
	ID           string
	Name         string
	ShortMeaning string
	Kind         string
	Category     string
	Content      CardContent
}

// KnowledgeChunk is a unit of reference text with its embedding vector.
// Chunks are matched against user questions by cosine similarity.
type KnowledgeChunk struct {
	Id         ID
	Text       string
	Vector     []float32         // Embedding vector (populated at ingest time)
	Metadata   map[string]string // Optional source attributes
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// KnowledgeMatch pairs a chunk with its similarity score for a query.
type KnowledgeMatch struct {
	Chunk *KnowledgeChunk
	Score float32
}

// Checkpoint records the resume state of a long-running maintenance job,
// such as a re-embedding pass over the knowledge base.
type Checkpoint struct {
	JobName   string
	Processed int // Chunks completed so far
	LastID    ID  // Last chunk ID written
	UpdatedAt time.Time
}
