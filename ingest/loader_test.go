package ingest

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/poiesic/lunaris/ai/mock"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
	"github.com/poiesic/lunaris/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cardFixture = `[
  {
    "id": 1,
    "card": "Trăng Tròn",
    "short_meam": "Viên mãn",
    "kind": "Trăng tròn",
    "category": "moon_phases",
    "content": {
      "overall_meaning": "Năng lượng đạt đỉnh điểm.",
      "attune_to_the_moon": "Thiền dưới ánh trăng.",
      "additional_meanings": ["Hoàn thành", "Buông bỏ"],
      "the_teaching": "Cảm xúc dâng cao là điều tự nhiên."
    }
  },
  {
    "id": "new-moon",
    "card": "Trăng Non",
    "short_meam": "Khởi đầu mới",
    "kind": "Trăng non",
    "category": "moon_phases",
    "content": {"overall_meaning": "Thời điểm gieo hạt giống."}
  }
]`

const knowledgeFixture = `[
  {"id": 1, "content": "Trăng tròn xuất hiện khi Mặt Trăng đối diện Mặt Trời."},
  {"id": 2, "content": "Chu kỳ Mặt Trăng kéo dài khoảng 29.5 ngày."},
  {"id": "tides", "content": "Thủy triều chịu ảnh hưởng của lực hấp dẫn Mặt Trăng."}
]`

func setupTestRepositories(t *testing.T) (storage.CardRepository, storage.KnowledgeRepository) {
	backend, err := badger.NewMemoryBackend()
	require.NoError(t, err)

	cardRepo, err := badger.NewCardRepository(backend)
	require.NoError(t, err)

	knowledgeRepo, err := badger.NewKnowledgeRepository(backend)
	require.NoError(t, err)

	t.Cleanup(func() {
		knowledgeRepo.Close()
		cardRepo.Close()
		backend.Close()
	})

	return cardRepo, knowledgeRepo
}

func setupTestLoader(t *testing.T, opts ...Option) (*Loader, storage.CardRepository, storage.KnowledgeRepository, *mock.MockEmbedder) {
	cards, knowledge := setupTestRepositories(t)
	embedder := mock.NewMockEmbedder()

	loader, err := NewLoader(cards, knowledge, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(loader.Release)

	return loader, cards, knowledge, embedder
}

func TestNewLoader(t *testing.T) {
	cards, knowledge := setupTestRepositories(t)
	embedder := mock.NewMockEmbedder()

	t.Run("valid loader", func(t *testing.T) {
		loader, err := NewLoader(cards, knowledge, embedder)
		require.NoError(t, err)
		require.NotNil(t, loader)
		defer loader.Release()

		assert.NotNil(t, loader.cards)
		assert.NotNil(t, loader.knowledge)
		assert.NotNil(t, loader.pool)
		assert.Equal(t, DefaultBatchSize, loader.batchSize)
	})

	t.Run("nil card repository", func(t *testing.T) {
		_, err := NewLoader(nil, knowledge, embedder)
		assert.Equal(t, ErrCardRepositoryRequired, err)
	})

	t.Run("nil knowledge repository", func(t *testing.T) {
		_, err := NewLoader(cards, nil, embedder)
		assert.Equal(t, ErrKnowledgeRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewLoader(cards, knowledge, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestLoader_WithOptions(t *testing.T) {
	cards, knowledge := setupTestRepositories(t)
	embedder := mock.NewMockEmbedder()

	t.Run("with pool size", func(t *testing.T) {
		loader, err := NewLoader(cards, knowledge, embedder, WithPoolSize(4))
		require.NoError(t, err)
		defer loader.Release()

		assert.NotNil(t, loader.pool)
	})

	t.Run("with pool size zero defaults to 1", func(t *testing.T) {
		loader, err := NewLoader(cards, knowledge, embedder, WithPoolSize(0))
		require.NoError(t, err)
		defer loader.Release()
	})

	t.Run("with batch size", func(t *testing.T) {
		loader, err := NewLoader(cards, knowledge, embedder, WithBatchSize(10))
		require.NoError(t, err)
		defer loader.Release()

		assert.Equal(t, 10, loader.batchSize)
	})

	t.Run("with batch size zero falls back to default", func(t *testing.T) {
		loader, err := NewLoader(cards, knowledge, embedder, WithBatchSize(0))
		require.NoError(t, err)
		defer loader.Release()

		assert.Equal(t, DefaultBatchSize, loader.batchSize)
	})

	t.Run("with custom logger", func(t *testing.T) {
		logger := slog.Default()
		loader, err := NewLoader(cards, knowledge, embedder, WithLogger(logger))
		require.NoError(t, err)
		defer loader.Release()

		assert.Equal(t, logger, loader.logger)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		loader, err := NewLoader(cards, knowledge, embedder, WithLogger(nil))
		require.NoError(t, err)
		defer loader.Release()

		assert.NotNil(t, loader.logger)
	})
}

func TestLoader_LoadCards(t *testing.T) {
	ctx := context.Background()

	t.Run("loads deck fixture", func(t *testing.T) {
		loader, cards, _, _ := setupTestLoader(t)

		loaded, err := loader.LoadCards(ctx, strings.NewReader(cardFixture))
		require.NoError(t, err)
		assert.Equal(t, 2, loaded)

		card, err := cards.Get(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "Trăng Tròn", card.Name)
		assert.Equal(t, "Viên mãn", card.ShortMeaning)
		assert.Equal(t, "Trăng tròn", card.Kind)
		assert.Equal(t, "moon_phases", card.Category)
		assert.Equal(t, "Năng lượng đạt đỉnh điểm.", card.Content.OverallMeaning)
		assert.Equal(t, "Thiền dưới ánh trăng.", card.Content.AttuneToTheMoon)
		assert.Equal(t, []string{"Hoàn thành", "Buông bỏ"}, card.Content.AdditionalMeanings)
		assert.Equal(t, "Cảm xúc dâng cao là điều tự nhiên.", card.Content.TheTeaching)

		card, err = cards.Get(ctx, "new-moon")
		require.NoError(t, err)
		assert.Equal(t, "Trăng Non", card.Name)
		assert.Equal(t, "Thời điểm gieo hạt giống.", card.Content.OverallMeaning)
	})

	t.Run("replaces existing card", func(t *testing.T) {
		loader, cards, _, _ := setupTestLoader(t)

		err := cards.Put(ctx, &core.Card{ID: "1", Name: "Bản cũ"})
		require.NoError(t, err)

		_, err = loader.LoadCards(ctx, strings.NewReader(cardFixture))
		require.NoError(t, err)

		card, err := cards.Get(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "Trăng Tròn", card.Name)
	})

	t.Run("single object fixture", func(t *testing.T) {
		loader, cards, _, _ := setupTestLoader(t)

		fixture := `{"id": 7, "card": "Trăng Khuyết", "short_meam": "Nhìn lại"}`
		loaded, err := loader.LoadCards(ctx, strings.NewReader(fixture))
		require.NoError(t, err)
		assert.Equal(t, 1, loaded)

		card, err := cards.Get(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, "Trăng Khuyết", card.Name)
	})

	t.Run("missing id", func(t *testing.T) {
		loader, _, _, _ := setupTestLoader(t)

		loaded, err := loader.LoadCards(ctx, strings.NewReader(`[{"card": "Vô danh"}]`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing id")
		assert.Equal(t, 0, loaded)
	})

	t.Run("malformed fixture", func(t *testing.T) {
		loader, _, _, _ := setupTestLoader(t)

		_, err := loader.LoadCards(ctx, strings.NewReader(`{not json`))
		require.Error(t, err)
	})

	t.Run("empty fixture", func(t *testing.T) {
		loader, _, _, _ := setupTestLoader(t)

		loaded, err := loader.LoadCards(ctx, strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, 0, loaded)
	})
}

func TestLoader_LoadKnowledge(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds and stores chunks", func(t *testing.T) {
		loader, _, knowledge, _ := setupTestLoader(t)

		loaded, err := loader.LoadKnowledge(ctx, "moon_basics", strings.NewReader(knowledgeFixture))
		require.NoError(t, err)
		assert.Equal(t, 3, loaded)

		count, err := knowledge.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		text := "Chu kỳ Mặt Trăng kéo dài khoảng 29.5 ngày."
		chunk, err := knowledge.Get(ctx, core.IDFromContent(text))
		require.NoError(t, err)
		assert.Equal(t, text, chunk.Text)
		assert.Equal(t, "moon_basics", chunk.Metadata["source"])
		assert.Equal(t, "2", chunk.Metadata["item"])

		// Stored vectors are unit length
		var magnitude float64
		for _, v := range chunk.Vector {
			magnitude += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-5)
	})

	t.Run("reseeding is idempotent", func(t *testing.T) {
		loader, _, knowledge, _ := setupTestLoader(t)

		_, err := loader.LoadKnowledge(ctx, "moon_basics", strings.NewReader(knowledgeFixture))
		require.NoError(t, err)

		_, err = loader.LoadKnowledge(ctx, "moon_basics", strings.NewReader(knowledgeFixture))
		require.NoError(t, err)

		count, err := knowledge.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("splits batches", func(t *testing.T) {
		loader, _, knowledge, _ := setupTestLoader(t, WithBatchSize(2))

		fixture := `[
		  {"id": 1, "content": "Chu kỳ đầu tiên."},
		  {"id": 2, "content": "Chu kỳ thứ hai."},
		  {"id": 3, "content": "Chu kỳ thứ ba."},
		  {"id": 4, "content": "Chu kỳ thứ tư."},
		  {"id": 5, "content": "Chu kỳ thứ năm."}
		]`
		loaded, err := loader.LoadKnowledge(ctx, "cycles", strings.NewReader(fixture))
		require.NoError(t, err)
		assert.Equal(t, 5, loaded)

		count, err := knowledge.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, count)
	})

	t.Run("normalizes vectors", func(t *testing.T) {
		loader, _, knowledge, embedder := setupTestLoader(t)

		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{3.0, 4.0}
			}
			return vectors, nil
		}

		fixture := `[{"id": 1, "content": "Trăng lưỡi liềm."}]`
		_, err := loader.LoadKnowledge(ctx, "phases", strings.NewReader(fixture))
		require.NoError(t, err)

		chunk, err := knowledge.Get(ctx, core.IDFromContent("Trăng lưỡi liềm."))
		require.NoError(t, err)
		require.Len(t, chunk.Vector, 2)
		assert.InDelta(t, 0.6, chunk.Vector[0], 1e-6)
		assert.InDelta(t, 0.8, chunk.Vector[1], 1e-6)
	})

	t.Run("skips empty content", func(t *testing.T) {
		loader, _, knowledge, _ := setupTestLoader(t)

		fixture := `[
		  {"id": 1, "content": "Trăng mới mọc."},
		  {"id": 2, "content": ""}
		]`
		loaded, err := loader.LoadKnowledge(ctx, "phases", strings.NewReader(fixture))
		require.NoError(t, err)
		assert.Equal(t, 1, loaded)

		count, err := knowledge.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("single object fixture", func(t *testing.T) {
		loader, _, _, _ := setupTestLoader(t)

		fixture := `{"id": "lunar-eclipse", "content": "Nguyệt thực xảy ra khi Trái Đất che khuất Mặt Trăng."}`
		loaded, err := loader.LoadKnowledge(ctx, "eclipses", strings.NewReader(fixture))
		require.NoError(t, err)
		assert.Equal(t, 1, loaded)
	})

	t.Run("embedder error", func(t *testing.T) {
		loader, _, knowledge, embedder := setupTestLoader(t)

		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("embedder unavailable")
		}

		loaded, err := loader.LoadKnowledge(ctx, "moon_basics", strings.NewReader(knowledgeFixture))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedder unavailable")
		assert.Equal(t, 0, loaded)

		count, err := knowledge.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("embedding count mismatch", func(t *testing.T) {
		loader, _, _, embedder := setupTestLoader(t)

		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{0.1, 0.2}}, nil
		}

		_, err := loader.LoadKnowledge(ctx, "moon_basics", strings.NewReader(knowledgeFixture))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding result mismatch")
	})

	t.Run("empty fixture", func(t *testing.T) {
		loader, _, _, _ := setupTestLoader(t)

		loaded, err := loader.LoadKnowledge(ctx, "moon_basics", strings.NewReader("[]"))
		require.NoError(t, err)
		assert.Equal(t, 0, loaded)
	})
}

func TestLoader_Release(t *testing.T) {
	loader, _, _, _ := setupTestLoader(t)

	// Release should not panic
	loader.Release()

	// Multiple releases should not panic
	loader.Release()
}
