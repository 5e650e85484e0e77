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


// Package lunaris exposes the conversational backend as a single facade:
// open a Store, build a Service over it and call Chat or Suggest.
package lunaris

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/normalize"
	"github.com/poiesic/lunaris/pipeline"
	"github.com/poiesic/lunaris/prompt"
	"github.com/poiesic/lunaris/storage"
)

const (
	// maxSuggestions is the number of follow-up questions a Suggest call
	// settles on, padding from the defaults when the model yields fewer.
	maxSuggestions = 3

	// minSuggestionRunes drops parsed lines at or below this length;
	// anything that short is a header or numbering noise, not a question.
	minSuggestionRunes = 10

	// recentQuestionLimit bounds how many prior user questions feed the
	// suggestion prompt's repetition guard.
	recentQuestionLimit = 20
)

// ChatRequest carries one user utterance plus its optional session, model
// and card bindings. Empty Provider selects openai; empty Model selects the
// provider default.
type ChatRequest struct {
	UserInput string
	SessionID string
	Provider  string
	Model     string
	Params    map[string]string
	CardIDs   []string
	UserID    string
}

// ChatResponse is the reply to one utterance. Output has cosmetic markup
// stripped; SessionID is minted when the request carried none.
type ChatResponse struct {
	Output    string
	SessionID string
}

// SuggestionRequest asks for follow-up questions grounded in card context.
type SuggestionRequest struct {
	CardIDs   []string
	SessionID string
}

// SuggestionResponse carries up to three follow-up questions.
type SuggestionResponse struct {
	Suggestions []string
	Total       int
}

// Service is the conversational facade over the store, the model resolver
// and the pipeline engine. The engine is compiled once, on the first chat,
// and shared by every subsequent invocation. Safe for concurrent use.
type Service struct {
	store    *Store
	models   ai.HandleResolver
	searcher pipeline.Searcher
	logger   *slog.Logger

	engineOnce sync.Once
	engine     *pipeline.Engine
	engineErr  error
}

// ServiceOption configures a Service.
type ServiceOption func(*Service) error

// WithSearcher enables the knowledge retrieval stage.
func WithSearcher(searcher pipeline.Searcher) ServiceOption {
	return func(s *Service) error {
		s.searcher = searcher
		return nil
	}
}

// WithLogger sets the logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewService wires the facade over an open store and a model resolver.
func NewService(store *Store, models ai.HandleResolver, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if models == nil {
		return nil, ErrModelResolverRequired
	}

	s := &Service{
		store:  store,
		models: models,
		logger: slog.Default().With("component", "service"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Chat answers one user utterance. It resolves the card context, finds or
// creates the session, records the user turn on the session document, runs
// the pipeline, records the assistant turn and returns the cleaned output.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	provider, err := core.ParseProvider(req.Provider)
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = defaultModelName(provider)
	}

	cardIDs, err := s.resolveCardIDs(ctx, req.SessionID, req.CardIDs)
	if err != nil {
		return nil, err
	}

	systemContext, err := s.combinedCardContext(ctx, cardIDs)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.getOrCreateSession(ctx, req.SessionID, provider, model, req.Params, cardIDs)
	if err != nil {
		return nil, err
	}

	if err := s.store.Sessions().AppendMessage(ctx, sessionID, core.Turn{
		Role:      core.RoleUser,
		Content:   req.UserInput,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("recording user turn: %w", err)
	}

	engine, err := s.compiledEngine()
	if err != nil {
		return nil, err
	}

	state := &pipeline.State{
		SessionID:           sessionID,
		UserInput:           req.UserInput,
		Provider:            provider,
		Model:               model,
		MaxTokens:           pipeline.DefaultMaxTokens,
		Params:              req.Params,
		SystemContext:       systemContext,
		SimilarityThreshold: pipeline.DefaultSimilarityThreshold,
		UserID:              req.UserID,
		CardIDs:             cardIDs,
	}

	if err := engine.Run(ctx, state); err != nil {
		return nil, err
	}

	// The session document keeps the output as generated; only the reply
	// handed back to the caller is cleaned.
	output := state.Output()
	if err := s.store.Sessions().AppendMessage(ctx, sessionID, core.Turn{
		Role:      core.RoleAssistant,
		Content:   output,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("recording assistant turn: %w", err)
	}

	s.logger.Debug("chat completed",
		"session", sessionID,
		"model", model,
		"elapsed_seconds", state.ResponseSeconds)

	return &ChatResponse{
		Output:    normalize.CleanMarkup(output),
		SessionID: sessionID,
	}, nil
}

// Suggest generates follow-up questions from the cards' context. Without
// usable card context it serves the fixed defaults; a failed generation
// degrades to the defaults as well. Only configuration problems surface as
// errors.
func (s *Service) Suggest(ctx context.Context, req SuggestionRequest) (*SuggestionResponse, error) {
	cardData, err := s.combinedCardContext(ctx, req.CardIDs)
	if err != nil {
		return nil, err
	}
	if cardData == "" {
		return &SuggestionResponse{
			Suggestions: prompt.DefaultMultiCardSuggestions(),
			Total:       maxSuggestions,
		}, nil
	}

	var previous []string
	if req.SessionID != "" {
		turns, err := s.store.History().LoadRecent(ctx, req.SessionID, recentQuestionLimit, core.RoleUser)
		if err != nil {
			return nil, err
		}
		for _, turn := range turns {
			previous = append(previous, turn.Content)
		}
	}

	handle, err := s.models.Get(ctx, ai.Request{
		Provider: core.ProviderGemini,
		RunLabel: "suggestions",
		UseCache: true,
	})
	if err != nil {
		return nil, err
	}

	reply, err := handle.Generate(ctx, []core.Turn{{
		Role:      core.RoleUser,
		Content:   prompt.Suggestions(cardData, previous),
		Timestamp: time.Now().UTC(),
	}})
	if err != nil {
		s.logger.Warn("suggestion generation failed, serving defaults", "error", err)
		return &SuggestionResponse{
			Suggestions: prompt.DefaultSuggestions(),
			Total:       maxSuggestions,
		}, nil
	}

	suggestions := padSuggestions(parseSuggestions(reply))
	return &SuggestionResponse{
		Suggestions: suggestions,
		Total:       len(suggestions),
	}, nil
}

// Card returns a card together with its rendered context block.
func (s *Service) Card(ctx context.Context, cardID string) (*core.Card, string, error) {
	card, err := s.store.Cards().Get(ctx, cardID)
	if errors.Is(err, storage.ErrCardNotFound) {
		return nil, "", fmt.Errorf("%w with ID %s", storage.ErrCardNotFound, cardID)
	}
	if err != nil {
		return nil, "", err
	}
	return card, prompt.CardContext(*card), nil
}

// Cards returns the full deck.
func (s *Service) Cards(ctx context.Context) ([]*core.Card, error) {
	return s.store.Cards().List(ctx)
}

// CardsByCategory returns the cards in one category.
func (s *Service) CardsByCategory(ctx context.Context, category string) ([]*core.Card, error) {
	return s.store.Cards().ListByCategory(ctx, category)
}

// RandomCard returns a uniformly drawn card.
func (s *Service) RandomCard(ctx context.Context) (*core.Card, error) {
	return s.store.Cards().Random(ctx)
}

// compiledEngine compiles the pipeline on first use and reuses it for the
// life of the process.
func (s *Service) compiledEngine() (*pipeline.Engine, error) {
	s.engineOnce.Do(func() {
		opts := []pipeline.Option{pipeline.WithLogger(s.logger)}
		if s.searcher != nil {
			opts = append(opts, pipeline.WithSearcher(s.searcher))
		}
		s.engine, s.engineErr = pipeline.NewEngine(s.store.History(), s.store.Profiles(), s.models, opts...)
	})
	return s.engine, s.engineErr
}

// resolveCardIDs prefers the request's cards; without them it falls back to
// the cards bound to the session, when the session exists.
func (s *Service) resolveCardIDs(ctx context.Context, sessionID string, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.store.Sessions().Get(ctx, sessionID)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session.CardIDs, nil
}

// combinedCardContext renders every card's context block under numbered
// headers. A card that does not exist fails the whole resolution.
func (s *Service) combinedCardContext(ctx context.Context, cardIDs []string) (string, error) {
	if len(cardIDs) == 0 {
		return "", nil
	}

	contexts := make([]string, len(cardIDs))
	for i, id := range cardIDs {
		if id == "" {
			continue
		}
		card, err := s.store.Cards().Get(ctx, id)
		if errors.Is(err, storage.ErrCardNotFound) {
			return "", fmt.Errorf("%w with ID %s", storage.ErrCardNotFound, id)
		}
		if err != nil {
			return "", err
		}
		contexts[i] = prompt.CardContext(*card)
	}
	return prompt.CombinedCardContext(contexts), nil
}

// getOrCreateSession returns sessionID when that session exists; otherwise
// it mints a new session bound to the given model and cards.
func (s *Service) getOrCreateSession(ctx context.Context, sessionID string, provider core.Provider, model string, params map[string]string, cardIDs []string) (string, error) {
	if sessionID != "" {
		_, err := s.store.Sessions().Get(ctx, sessionID)
		if err == nil {
			return sessionID, nil
		}
		if !errors.Is(err, storage.ErrSessionNotFound) {
			return "", err
		}
	}

	session := &core.Session{
		SessionID: uuid.NewString(),
		Model: core.ModelSpec{
			Provider:   provider,
			Name:       model,
			Parameters: params,
		},
		CardIDs: cardIDs,
	}
	if err := s.store.Sessions().Create(ctx, session); err != nil {
		return "", err
	}

	s.logger.Info("created session",
		"session", session.SessionID,
		"provider", provider,
		"model", model)
	return session.SessionID, nil
}

func defaultModelName(provider core.Provider) string {
	if provider == core.ProviderGemini {
		return ai.DefaultGeminiModel
	}
	return ai.DefaultOpenAIModel
}

// parseSuggestions pulls numbered or bulleted lines out of a model reply
// and strips their markers and markup.
func parseSuggestions(reply string) []string {
	var suggestions []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		first, _ := utf8.DecodeRuneInString(line)
		if !unicode.IsDigit(first) && first != '-' && first != '*' {
			continue
		}

		question := strings.TrimSpace(strings.TrimLeft(line, "0123456789.-* "))
		if question == "" || utf8.RuneCountInString(question) <= minSuggestionRunes {
			continue
		}
		suggestions = append(suggestions, normalize.CleanMarkup(question))
	}
	return suggestions
}

// padSuggestions caps the list at maxSuggestions and pads short lists from
// the fixed defaults without repeating a generated question.
func padSuggestions(suggestions []string) []string {
	if len(suggestions) > maxSuggestions {
		return suggestions[:maxSuggestions]
	}
	for _, fallback := range prompt.DefaultSuggestions() {
		if len(suggestions) >= maxSuggestions {
			break
		}
		if !slices.Contains(suggestions, fallback) {
			suggestions = append(suggestions, fallback)
		}
	}
	return suggestions
}
