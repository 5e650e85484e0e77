package ai

import "github.com/poiesic/lunaris/core"

// Request describes a model resolution request handed to the factory.
type Request struct {
	// Provider selects the backend. Callers normalize raw input through
	// core.ParseProvider before building a Request.
	Provider core.Provider

	// Model names the chat model. Empty selects the provider default.
	Model string

	// Temperature overrides the default sampling temperature when non-nil.
	// Some models never accept a temperature; see SupportsTemperature.
	Temperature *float64

	// MaxTokens caps the reply length when positive.
	MaxTokens int

	// RunLabel tags the resolution in logs, e.g. "gpt-4.1-nano-graph-chat-<session>".
	RunLabel string

	// UseCache permits consulting the model cache when the request matches
	// the provider's default configuration.
	UseCache bool
}

// HandleSpec captures everything needed to construct a model handle except
// the credential. It is the binary value stored in the model cache, so a
// rehydrated spec plus the live Config yields the same handle.
type HandleSpec struct {
	Provider       core.Provider
	Model          string
	BaseURL        string
	HasTemperature bool
	Temperature    float64
	MaxTokens      int
	Embedding      bool
}
