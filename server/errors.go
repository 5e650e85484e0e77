package server

import "errors"

var (
	// ErrServiceRequired indicates New was called without a service.
	ErrServiceRequired = errors.New("service required")
)
