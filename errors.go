package lunaris

import "errors"

var (
	// ErrStoreRequired is returned when a Service is constructed without a store.
	ErrStoreRequired = errors.New("store required")

	// ErrModelResolverRequired is returned when a Service is constructed without a model resolver.
	ErrModelResolverRequired = errors.New("model resolver required")
)
