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
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/lunaris/ai/openai"
	"github.com/poiesic/lunaris/cache"
	"github.com/poiesic/lunaris/core"
)

// Model cache keys. One spec per provider default configuration, plus the
// embedding handle spec.
const (
	CacheKeyOpenAIModel = "openai_model"
	CacheKeyGeminiModel = "gemini_model"
	CacheKeyEmbeddings  = "embeddings"
)

// noTemperatureModels never receive a temperature option; the API rejects
// one rather than ignoring it.
var noTemperatureModels = map[string]struct{}{
	"gpt-4.1-nano": {},
	"gpt-5-nano":   {},
}

// SupportsTemperature reports whether a temperature option may be sent to
// the named model.
func SupportsTemperature(model string) bool {
	_, fixed := noTemperatureModels[model]
	return !fixed
}

// Factory resolves (provider, model, params) requests to ready model
// handles, memoizing default-configuration handle specs in the model cache.
// Safe for concurrent use.
type Factory struct {
	cfg    Config
	cache  *cache.ModelCache
	logger *slog.Logger
}

var (
	_ HandleResolver = (*Factory)(nil)
	_ ModelHandle    = (*openai.ChatModel)(nil)
	_ Embedder       = (*openai.Embedder)(nil)
)

// FactoryOption configures a Factory.
type FactoryOption func(*Factory) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) FactoryOption {
	return func(f *Factory) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFactory creates a Factory. modelCache may be nil, which disables
// memoization without changing resolution behavior.
func NewFactory(cfg Config, modelCache *cache.ModelCache, opts ...FactoryOption) (*Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Factory{
		cfg:    cfg,
		cache:  modelCache,
		logger: slog.Default().With("component", "model-factory"),
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Get resolves a Request to a chat model handle.
//
// Resolution order: validate the provider tag, substitute the provider
// default for an empty model name, consult the cache when the request
// matches the provider's default configuration, then construct. A missing
// credential fails before any network use.
func (f *Factory) Get(ctx context.Context, req Request) (ModelHandle, error) {
	spec, err := f.resolveSpec(ctx, req)
	if err != nil {
		return nil, err
	}

	handle, err := f.buildHandle(spec)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("resolved model handle",
		"run", req.RunLabel,
		"provider", spec.Provider,
		"model", spec.Model,
		"temperature", spec.HasTemperature,
		"max_tokens", spec.MaxTokens)
	return handle, nil
}

// Embedder resolves the embedding handle, memoized under the "embeddings"
// cache key.
func (f *Factory) Embedder(ctx context.Context) (Embedder, error) {
	spec := f.embeddingSpec()

	if f.cache != nil {
		if raw, ok := f.cache.Get(ctx, CacheKeyEmbeddings); ok {
			cached, _, err := HandleSpecMUS.Unmarshal(raw)
			if err != nil {
				f.logger.Warn("corrupt handle spec in cache", "key", CacheKeyEmbeddings, "error", err)
			} else {
				spec = cached
			}
		} else {
			f.cacheSpec(ctx, CacheKeyEmbeddings, spec)
		}
	}

	if f.cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: embeddings require provider %q", ErrMissingAPIKey, core.ProviderOpenAI)
	}

	return openai.NewEmbedder(openai.EmbedderConfig{
		APIKey:  f.cfg.OpenAIAPIKey,
		BaseURL: spec.BaseURL,
		Model:   spec.Model,
	})
}

// Warm preloads the default handle specs for both providers and the
// embedding spec into the model cache. Missing credentials do not block
// warming; they surface later, when a handle is actually requested.
func (f *Factory) Warm(ctx context.Context) {
	if f.cache == nil {
		return
	}

	f.cacheSpec(ctx, CacheKeyOpenAIModel, f.buildSpec(core.ProviderOpenAI, f.cfg.OpenAIModel, nil, 0))
	f.cacheSpec(ctx, CacheKeyGeminiModel, f.buildSpec(core.ProviderGemini, f.cfg.GeminiModel, nil, 0))
	f.cacheSpec(ctx, CacheKeyEmbeddings, f.embeddingSpec())

	f.logger.Info("model cache warmed",
		"openai_model", f.cfg.OpenAIModel,
		"gemini_model", f.cfg.GeminiModel,
		"embedding_model", f.cfg.EmbeddingModel)
}

func (f *Factory) resolveSpec(ctx context.Context, req Request) (HandleSpec, error) {
	if err := core.ValidateProvider(req.Provider); err != nil {
		return HandleSpec{}, fmt.Errorf("%w: %q", ErrUnknownProvider, req.Provider)
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = f.defaultModel(req.Provider)
	}

	key, cacheable := f.cacheKeyFor(req, model)
	if cacheable {
		if raw, ok := f.cache.Get(ctx, key); ok {
			spec, _, err := HandleSpecMUS.Unmarshal(raw)
			if err == nil {
				return spec, nil
			}
			f.logger.Warn("corrupt handle spec in cache", "key", key, "error", err)
		}
	}

	spec := f.buildSpec(req.Provider, model, req.Temperature, req.MaxTokens)

	if cacheable {
		f.cacheSpec(ctx, key, spec)
	}
	return spec, nil
}

// cacheKeyFor returns the provider's cache key and whether this request is
// allowed to use it. Only the default configuration is memoized: default
// model, default temperature, no max-tokens override.
func (f *Factory) cacheKeyFor(req Request, model string) (string, bool) {
	if !req.UseCache || f.cache == nil {
		return "", false
	}
	if model != f.defaultModel(req.Provider) {
		return "", false
	}
	if req.Temperature != nil && *req.Temperature != f.cfg.Temperature {
		return "", false
	}
	if req.MaxTokens != 0 {
		return "", false
	}

	if req.Provider == core.ProviderGemini {
		return CacheKeyGeminiModel, true
	}
	return CacheKeyOpenAIModel, true
}

func (f *Factory) defaultModel(provider core.Provider) string {
	if provider == core.ProviderGemini {
		return f.cfg.GeminiModel
	}
	return f.cfg.OpenAIModel
}

func (f *Factory) buildSpec(provider core.Provider, model string, temperature *float64, maxTokens int) HandleSpec {
	spec := HandleSpec{
		Provider:  provider,
		Model:     model,
		BaseURL:   f.cfg.OpenAIBaseURL,
		MaxTokens: maxTokens,
	}
	if provider == core.ProviderGemini {
		spec.BaseURL = f.cfg.GeminiBaseURL
	}

	if SupportsTemperature(model) {
		spec.HasTemperature = true
		spec.Temperature = f.cfg.Temperature
		if temperature != nil {
			spec.Temperature = *temperature
		}
	}
	return spec
}

func (f *Factory) embeddingSpec() HandleSpec {
	return HandleSpec{
		Provider:  core.ProviderOpenAI,
		Model:     f.cfg.EmbeddingModel,
		BaseURL:   f.cfg.OpenAIBaseURL,
		Embedding: true,
	}
}

func (f *Factory) buildHandle(spec HandleSpec) (ModelHandle, error) {
	apiKey := f.cfg.OpenAIAPIKey
	if spec.Provider == core.ProviderGemini {
		apiKey = f.cfg.GoogleAPIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: provider %q", ErrMissingAPIKey, spec.Provider)
	}

	chatCfg := openai.ChatConfig{
		APIKey:    apiKey,
		BaseURL:   spec.BaseURL,
		Model:     spec.Model,
		MaxTokens: spec.MaxTokens,
	}
	if spec.HasTemperature {
		temperature := spec.Temperature
		chatCfg.Temperature = &temperature
	}

	return openai.NewChatModel(chatCfg)
}

func (f *Factory) cacheSpec(ctx context.Context, key string, spec HandleSpec) {
	buf := make([]byte, HandleSpecMUS.Size(spec))
	HandleSpecMUS.Marshal(spec, buf)
	f.cache.Set(ctx, key, buf, 0)
}
