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

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/storage"
)

// compilations counts engine compilations process-wide. Callers guard
// construction with sync.Once, so after startup the count stays put.
var compilations atomic.Int64

// Compilations reports how many engines this process has compiled.
func Compilations() int64 {
	return compilations.Load()
}

// Stage is one step of the conversation flow. Stages run strictly in
// order; an error aborts the invocation and skips the remaining stages.
type Stage interface {
	// Name returns the stage's log label.
	Name() string

	// Run executes the stage against the invocation state.
	Run(ctx context.Context, state *State) error
}

// Engine executes the fixed stage sequence. Immutable after construction
// and safe for concurrent use; each Run works on its own State.
type Engine struct {
	history  storage.HistoryRepository
	profiles storage.ProfileRepository
	models   ai.HandleResolver
	searcher Searcher
	stages   []Stage
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithSearcher enables the knowledge retrieval stage. Without a searcher
// the stage yields an empty result.
func WithSearcher(searcher Searcher) Option {
	return func(e *Engine) error {
		e.searcher = searcher
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine compiles the stage sequence. Engines are meant to be compiled
// once per process and shared across conversations.
func NewEngine(
	history storage.HistoryRepository,
	profiles storage.ProfileRepository,
	models ai.HandleResolver,
	opts ...Option,
) (*Engine, error) {
	if history == nil {
		return nil, ErrHistoryRepositoryRequired
	}
	if profiles == nil {
		return nil, ErrProfileRepositoryRequired
	}
	if models == nil {
		return nil, ErrModelResolverRequired
	}

	e := &Engine{
		history:  history,
		profiles: profiles,
		models:   models,
		logger:   slog.Default().With("component", "pipeline"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	e.stages = []Stage{
		&loadRecentMessages{history: e.history},
		&detectLanguage{models: e.models, logger: e.logger},
		&searchKnowledge{searcher: e.searcher, logger: e.logger},
		&loadUserInfo{profiles: e.profiles, models: e.models, logger: e.logger},
		&prepareSystemPrompt{},
		&appendUserTurn{history: e.history},
		&generateResponse{models: e.models, logger: e.logger},
		&persistResponse{history: e.history},
	}
	compilations.Add(1)

	return e, nil
}

// Run executes every stage in order against state. On error the remaining
// stages are skipped; side effects already committed stay committed.
func (e *Engine) Run(ctx context.Context, state *State) error {
	for _, stage := range e.stages {
		start := time.Now()
		if err := stage.Run(ctx, state); err != nil {
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		e.logger.Debug("stage complete",
			"stage", stage.Name(),
			"session", state.SessionID,
			"elapsed", time.Since(start))
	}
	return nil
}
