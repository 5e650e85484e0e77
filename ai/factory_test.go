package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lunaris/cache"
	"github.com/poiesic/lunaris/core"
)

func newTestFactory(t *testing.T, opts ...ConfigOption) (*Factory, *cache.ModelCache) {
	t.Helper()

	base := []ConfigOption{WithOpenAIKey("sk-test"), WithGoogleKey("google-test")}
	cfg := NewConfig(append(base, opts...)...)

	modelCache, err := cache.New("")
	require.NoError(t, err)

	f, err := NewFactory(*cfg, modelCache)
	require.NoError(t, err)
	return f, modelCache
}

func TestSupportsTemperature(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{"gpt-4.1-nano", false},
		{"gpt-5-nano", false},
		{"gpt-4o-mini", true},
		{"gemini-2.5-flash-lite", true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, SupportsTemperature(tt.model))
		})
	}
}

func TestFactory_Get_UnknownProvider(t *testing.T) {
	f, _ := newTestFactory(t)

	_, err := f.Get(context.Background(), Request{Provider: core.Provider("mistral")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestFactory_Get_MissingCredential(t *testing.T) {
	cfg := NewConfig(WithOpenAIKey("sk-test")) // no google key

	f, err := NewFactory(*cfg, nil)
	require.NoError(t, err)

	_, err = f.Get(context.Background(), Request{Provider: core.ProviderGemini})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestFactory_Get_ReturnsHandle(t *testing.T) {
	f, _ := newTestFactory(t)

	handle, err := f.Get(context.Background(), Request{
		Provider: core.ProviderOpenAI,
		RunLabel: "gpt-4.1-nano-graph-chat-test",
		UseCache: true,
	})
	require.NoError(t, err)
	assert.NotNil(t, handle)
}

func TestFactory_BuildSpec_DefaultModelSubstitution(t *testing.T) {
	f, _ := newTestFactory(t)

	spec, err := f.resolveSpec(context.Background(), Request{Provider: core.ProviderOpenAI})
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, spec.Model)

	spec, err = f.resolveSpec(context.Background(), Request{Provider: core.ProviderGemini})
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, spec.Model)
	assert.Equal(t, DefaultGeminiBaseURL, spec.BaseURL)
}

func TestFactory_BuildSpec_NanoModelsOmitTemperature(t *testing.T) {
	f, _ := newTestFactory(t)

	temperature := 0.3

	spec := f.buildSpec(core.ProviderOpenAI, "gpt-4.1-nano", &temperature, 0)
	assert.False(t, spec.HasTemperature, "nano models must not carry a temperature")

	spec = f.buildSpec(core.ProviderOpenAI, "gpt-5-nano", nil, 0)
	assert.False(t, spec.HasTemperature)

	spec = f.buildSpec(core.ProviderOpenAI, "gpt-4o-mini", &temperature, 0)
	assert.True(t, spec.HasTemperature)
	assert.Equal(t, 0.3, spec.Temperature)

	spec = f.buildSpec(core.ProviderGemini, "gemini-2.5-flash-lite", nil, 0)
	assert.True(t, spec.HasTemperature)
	assert.Equal(t, DefaultTemperature, spec.Temperature)
}

func TestFactory_CacheKeyFor(t *testing.T) {
	f, _ := newTestFactory(t)
	temperatureDefault := DefaultTemperature
	temperatureOther := 0.1

	tests := []struct {
		name      string
		req       Request
		model     string
		wantKey   string
		cacheable bool
	}{
		{
			name:      "default openai config",
			req:       Request{Provider: core.ProviderOpenAI, UseCache: true},
			model:     DefaultOpenAIModel,
			wantKey:   CacheKeyOpenAIModel,
			cacheable: true,
		},
		{
			name:      "default gemini config",
			req:       Request{Provider: core.ProviderGemini, UseCache: true},
			model:     DefaultGeminiModel,
			wantKey:   CacheKeyGeminiModel,
			cacheable: true,
		},
		{
			name:      "explicit default temperature",
			req:       Request{Provider: core.ProviderOpenAI, UseCache: true, Temperature: &temperatureDefault},
			model:     DefaultOpenAIModel,
			wantKey:   CacheKeyOpenAIModel,
			cacheable: true,
		},
		{
			name:      "cache disabled by caller",
			req:       Request{Provider: core.ProviderOpenAI},
			model:     DefaultOpenAIModel,
			cacheable: false,
		},
		{
			name:      "non-default model",
			req:       Request{Provider: core.ProviderOpenAI, UseCache: true},
			model:     "gpt-4o-mini",
			cacheable: false,
		},
		{
			name:      "non-default temperature",
			req:       Request{Provider: core.ProviderOpenAI, UseCache: true, Temperature: &temperatureOther},
			model:     DefaultOpenAIModel,
			cacheable: false,
		},
		{
			name:      "max tokens override",
			req:       Request{Provider: core.ProviderOpenAI, UseCache: true, MaxTokens: 200},
			model:     DefaultOpenAIModel,
			cacheable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, cacheable := f.cacheKeyFor(tt.req, tt.model)
			assert.Equal(t, tt.cacheable, cacheable)
			if tt.cacheable {
				assert.Equal(t, tt.wantKey, key)
			}
		})
	}
}

func TestFactory_ResolveSpec_PopulatesCache(t *testing.T) {
	f, modelCache := newTestFactory(t)
	ctx := context.Background()

	require.False(t, modelCache.Exists(ctx, CacheKeyOpenAIModel))

	_, err := f.resolveSpec(ctx, Request{Provider: core.ProviderOpenAI, UseCache: true})
	require.NoError(t, err)

	assert.True(t, modelCache.Exists(ctx, CacheKeyOpenAIModel), "default config resolution should memoize the spec")
	assert.False(t, modelCache.Exists(ctx, CacheKeyGeminiModel))
}

func TestFactory_ResolveSpec_UsesCachedSpec(t *testing.T) {
	f, modelCache := newTestFactory(t)
	ctx := context.Background()

	// Seed the cache with a spec that differs from the configured default.
	seeded := HandleSpec{Provider: core.ProviderOpenAI, Model: "gpt-4.2-nano"}
	buf := make([]byte, HandleSpecMUS.Size(seeded))
	HandleSpecMUS.Marshal(seeded, buf)
	require.True(t, modelCache.Set(ctx, CacheKeyOpenAIModel, buf, 0))

	spec, err := f.resolveSpec(ctx, Request{Provider: core.ProviderOpenAI, UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.2-nano", spec.Model, "cache hit should rehydrate the stored spec")
}

func TestFactory_ResolveSpec_IgnoresCorruptCacheEntry(t *testing.T) {
	f, modelCache := newTestFactory(t)
	ctx := context.Background()

	require.True(t, modelCache.Set(ctx, CacheKeyOpenAIModel, []byte{0xff, 0x01}, 0))

	spec, err := f.resolveSpec(ctx, Request{Provider: core.ProviderOpenAI, UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, spec.Model, "corrupt entry should fall back to construction")
}

func TestFactory_Warm(t *testing.T) {
	f, modelCache := newTestFactory(t)
	ctx := context.Background()

	f.Warm(ctx)

	assert.True(t, modelCache.Exists(ctx, CacheKeyOpenAIModel))
	assert.True(t, modelCache.Exists(ctx, CacheKeyGeminiModel))
	assert.True(t, modelCache.Exists(ctx, CacheKeyEmbeddings))

	raw, ok := modelCache.Get(ctx, CacheKeyEmbeddings)
	require.True(t, ok)
	spec, _, err := HandleSpecMUS.Unmarshal(raw)
	require.NoError(t, err)
	assert.True(t, spec.Embedding)
	assert.Equal(t, DefaultEmbeddingModel, spec.Model)
}

func TestFactory_Embedder(t *testing.T) {
	t.Run("resolves with credential", func(t *testing.T) {
		f, _ := newTestFactory(t)

		embedder, err := f.Embedder(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, embedder)
	})

	t.Run("missing credential", func(t *testing.T) {
		cfg := NewConfig() // no keys
		f, err := NewFactory(*cfg, nil)
		require.NoError(t, err)

		_, err = f.Embedder(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})
}

func TestFactory_NilCacheDisablesMemoization(t *testing.T) {
	cfg := NewConfig(WithOpenAIKey("sk-test"))
	f, err := NewFactory(*cfg, nil)
	require.NoError(t, err)

	spec, err := f.resolveSpec(context.Background(), Request{Provider: core.ProviderOpenAI, UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, spec.Model)

	// Warm on a nil cache is a no-op rather than a panic.
	f.Warm(context.Background())
}

func TestNewFactory_InvalidConfig(t *testing.T) {
	cfg := Config{Temperature: 9}

	_, err := NewFactory(cfg, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownProvider))
}
