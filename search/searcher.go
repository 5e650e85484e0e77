package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
)

// verbatimBoost is added to a match's score when every query word
// appears in the chunk text.
const verbatimBoost = 0.3

// Searcher provides semantic search over knowledge chunks.
type Searcher struct {
	knowledge storage.KnowledgeRepository
	embedder  ai.Embedder
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	knowledge storage.KnowledgeRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if knowledge == nil {
		return nil, ErrKnowledgeRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		knowledge: knowledge,
		embedder:  embedder,
		logger:    slog.Default().With("component", "search"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for knowledge chunks similar to the query.
// Chunks below minSimilarity are dropped; up to maxHits results are
// returned, ranked by score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, minSimilarity float32, maxHits int) ([]*core.KnowledgeMatch, error) {
	return s.FindSimilarWithMonitor(ctx, query, minSimilarity, maxHits, nil)
}

// FindSimilarWithMonitor searches for knowledge chunks similar to the
// query with monitoring. The monitor receives callbacks at each stage of
// the search process.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, minSimilarity float32, maxHits int, monitor SearchMonitor) ([]*core.KnowledgeMatch, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.knowledge.NearestByVector(ctx, embedding, minSimilarity, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	monitor.AfterSemanticSearch(matches)

	// Boost chunks that contain every query word verbatim. The boost
	// reorders the result page; the threshold was already applied to the
	// raw similarity.
	results := make([]*core.KnowledgeMatch, 0, len(matches))
	for _, match := range matches {
		score := match.Score
		if containsAllQueryWords(match.Chunk.Text, query) {
			score += verbatimBoost
			monitor.VerbatimHit(match.Chunk)
		}
		results = append(results, &core.KnowledgeMatch{
			Chunk: match.Chunk,
			Score: score,
		})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}
