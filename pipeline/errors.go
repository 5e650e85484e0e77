package pipeline

import "errors"

var (
	// ErrHistoryRepositoryRequired is returned when a history repository is not provided.
	ErrHistoryRepositoryRequired = errors.New("history repository required")

	// ErrProfileRepositoryRequired is returned when a profile repository is not provided.
	ErrProfileRepositoryRequired = errors.New("profile repository required")

	// ErrModelResolverRequired is returned when a model resolver is not provided.
	ErrModelResolverRequired = errors.New("model resolver required")
)
