package ingest

import "errors"

var (
	// ErrCardRepositoryRequired is returned when a card repository is not provided.
	ErrCardRepositoryRequired = errors.New("card repository required")

	// ErrKnowledgeRepositoryRequired is returned when a knowledge repository is not provided.
	ErrKnowledgeRepositoryRequired = errors.New("knowledge repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
