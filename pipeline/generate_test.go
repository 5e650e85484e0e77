package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lunaris/ai"
)

func TestApplyParams(t *testing.T) {
	t.Run("temperature override", func(t *testing.T) {
		req := ai.Request{}
		applyParams(&req, map[string]string{"temperature": "0.2"})
		require.NotNil(t, req.Temperature)
		assert.InDelta(t, 0.2, *req.Temperature, 1e-9)
	})

	t.Run("max tokens override", func(t *testing.T) {
		req := ai.Request{MaxTokens: 5000}
		applyParams(&req, map[string]string{"max_tokens": "256"})
		assert.Equal(t, 256, req.MaxTokens)
	})

	t.Run("unparseable values ignored", func(t *testing.T) {
		req := ai.Request{MaxTokens: 5000}
		applyParams(&req, map[string]string{"temperature": "hot", "max_tokens": "many"})
		assert.Nil(t, req.Temperature)
		assert.Equal(t, 5000, req.MaxTokens)
	})

	t.Run("unknown keys ignored", func(t *testing.T) {
		req := ai.Request{}
		applyParams(&req, map[string]string{"top_p": "0.9"})
		assert.Nil(t, req.Temperature)
		assert.Zero(t, req.MaxTokens)
	})

	t.Run("nil params", func(t *testing.T) {
		req := ai.Request{}
		applyParams(&req, nil)
		assert.Nil(t, req.Temperature)
	})
}
