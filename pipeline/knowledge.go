package pipeline

import (
	"context"
	"log/slog"

	"github.com/poiesic/lunaris/core"
)

// knowledgeMaxHits caps how many chunks feed the system prompt.
const knowledgeMaxHits = 10

// Searcher finds knowledge chunks semantically similar to a query.
// *search.Searcher satisfies it.
type Searcher interface {
	FindSimilar(ctx context.Context, query string, minSimilarity float32, maxHits int) ([]*core.KnowledgeMatch, error)
}

// searchKnowledge retrieves reference chunks related to the user input.
// Retrieval is additive context: without a searcher the stage yields an
// empty result, and a retrieval error degrades the same way rather than
// failing the conversation.
type searchKnowledge struct {
	searcher Searcher
	logger   *slog.Logger
}

func (s *searchKnowledge) Name() string { return "search_similar_knowledge" }

func (s *searchKnowledge) Run(ctx context.Context, state *State) error {
	state.Knowledge = nil
	if s.searcher == nil {
		return nil
	}

	matches, err := s.searcher.FindSimilar(ctx, state.UserInput, state.SimilarityThreshold, knowledgeMaxHits)
	if err != nil {
		s.logger.Warn("knowledge search failed", "session", state.SessionID, "err", err)
		return nil
	}

	state.Knowledge = matches
	return nil
}
