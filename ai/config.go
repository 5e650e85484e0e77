// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"fmt"
	"strings"
)

// Provider defaults. The Gemini endpoint is Google's OpenAI-compatible
// surface, so one wire client serves both providers.
const (
	DefaultOpenAIModel    = "gpt-4.1-nano"
	DefaultGeminiModel    = "gemini-2.5-flash-lite"
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultTemperature    = 0.7
	DefaultGeminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta/openai/"
)

// Config holds configuration for the chat and embedding backends.
type Config struct {
	// OpenAIAPIKey authenticates against the OpenAI API.
	OpenAIAPIKey string

	// GoogleAPIKey authenticates against the Gemini OpenAI-compatible API.
	GoogleAPIKey string

	// OpenAIBaseURL optionally overrides the OpenAI endpoint.
	// Empty means the native API.
	OpenAIBaseURL string

	// GeminiBaseURL is the Gemini OpenAI-compatible endpoint.
	GeminiBaseURL string

	// OpenAIModel is the default chat model for the openai provider.
	OpenAIModel string

	// GeminiModel is the default chat model for the gemini provider.
	GeminiModel string

	// EmbeddingModel is the model identifier for text embeddings.
	// Example: "text-embedding-3-small"
	EmbeddingModel string

	// Temperature is the default sampling temperature for chat models.
	// Default: 0.7
	Temperature float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithOpenAIKey sets the OpenAI credential.
func WithOpenAIKey(key string) ConfigOption {
	return func(c *Config) {
		c.OpenAIAPIKey = key
	}
}

// WithGoogleKey sets the Gemini credential.
func WithGoogleKey(key string) ConfigOption {
	return func(c *Config) {
		c.GoogleAPIKey = key
	}
}

// WithOpenAIBaseURL overrides the OpenAI endpoint.
func WithOpenAIBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.OpenAIBaseURL = url
	}
}

// WithGeminiBaseURL overrides the Gemini OpenAI-compatible endpoint.
func WithGeminiBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.GeminiBaseURL = url
	}
}

// WithOpenAIModel sets the default chat model for the openai provider.
func WithOpenAIModel(model string) ConfigOption {
	return func(c *Config) {
		c.OpenAIModel = model
	}
}

// WithGeminiModel sets the default chat model for the gemini provider.
func WithGeminiModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeminiModel = model
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

// DefaultConfig returns a Config with the provider defaults and no
// credentials. Credentials are checked lazily, when a handle for the
// corresponding provider is first requested.
func DefaultConfig() *Config {
	return &Config{
		GeminiBaseURL:  DefaultGeminiBaseURL,
		OpenAIModel:    DefaultOpenAIModel,
		GeminiModel:    DefaultGeminiModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Temperature:    DefaultTemperature,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options. This is the recommended way to create a Config.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithOpenAIKey(os.Getenv("OPENAI_API_KEY")),
//	    ai.WithGoogleKey(os.Getenv("GOOGLE_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form: fields are
// trimmed and zero values replaced with the provider defaults.
func (c *Config) Normalize() {
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.GoogleAPIKey = strings.TrimSpace(c.GoogleAPIKey)
	c.OpenAIBaseURL = strings.TrimSpace(c.OpenAIBaseURL)
	c.GeminiBaseURL = strings.TrimSpace(c.GeminiBaseURL)
	c.OpenAIModel = strings.TrimSpace(c.OpenAIModel)
	c.GeminiModel = strings.TrimSpace(c.GeminiModel)
	c.EmbeddingModel = strings.TrimSpace(c.EmbeddingModel)

	if c.GeminiBaseURL == "" {
		c.GeminiBaseURL = DefaultGeminiBaseURL
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = DefaultOpenAIModel
	}
	if c.GeminiModel == "" {
		c.GeminiModel = DefaultGeminiModel
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Temperature > 2 {
		return fmt.Errorf("ai config: temperature %v out of range [0, 2]", c.Temperature)
	}

	return nil
}
