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
	"log/slog"
	"strings"

	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/prompt"
	"github.com/poiesic/lunaris/storage"
)

const (
	// summaryPeriod is how many recorded turns trigger an AboutUser refresh.
	summaryPeriod = 5

	// summaryWindow is how many recent turns feed the refresh.
	summaryWindow = 5

	summaryMaxTokens = 1000
)

// summaryMarkup strips the decoration models like to wrap summaries in.
var summaryMarkup = strings.NewReplacer("```json", "", "```", "", "*", "", "#", "")

// loadUserInfo records the utterance on the user's profile and loads what
// is known about them for the prompt. Every summaryPeriod-th recorded turn
// the AboutUser summary is regenerated with a one-shot model call. Without
// a user ID the stage is a no-op; profile trouble downgrades the call to an
// anonymous conversation instead of failing it.
type loadUserInfo struct {
	profiles storage.ProfileRepository
	models   ai.HandleResolver
	logger   *slog.Logger
}

func (l *loadUserInfo) Name() string { return "load_user_info" }

func (l *loadUserInfo) Run(ctx context.Context, state *State) error {
	state.UserInfo = nil
	if state.UserID == "" {
		return nil
	}

	profile, err := l.profiles.AppendContent(ctx, state.UserID, state.UserInput)
	if err != nil {
		l.logger.Warn("profile append failed", "user", state.UserID, "err", err)
		return nil
	}

	if len(profile.Content)%summaryPeriod == 0 {
		l.refreshAbout(ctx, state.UserID, profile)
	}

	fresh, err := l.profiles.Get(ctx, state.UserID)
	if err != nil {
		l.logger.Warn("profile read failed", "user", state.UserID, "err", err)
		return nil
	}

	state.UserInfo = &UserInfo{
		UserID:       fresh.UserID,
		About:        fresh.AboutUser,
		ContentCount: len(fresh.Content),
		CreatedAt:    fresh.CreatedAt,
		UpdatedAt:    fresh.UpdatedAt,
	}
	return nil
}

// refreshAbout rewrites the profile summary from the previous summary plus
// the most recent turns. On any failure the old summary stays in place.
func (l *loadUserInfo) refreshAbout(ctx context.Context, userID string, profile *core.UserProfile) {
	recent := profile.Content
	if len(recent) > summaryWindow {
		recent = recent[len(recent)-summaryWindow:]
	}
	input := prompt.SummaryInput(profile.AboutUser, recent)

	handle, err := l.models.Get(ctx, ai.Request{
		Provider:  core.ProviderGemini,
		MaxTokens: summaryMaxTokens,
		UseCache:  true,
	})
	if err != nil {
		l.logger.Warn("profile summary model unavailable", "user", userID, "err", err)
		return
	}

	raw, err := handle.Generate(ctx, prompt.SummaryTurns(input))
	if err != nil {
		l.logger.Warn("profile summary failed", "user", userID, "err", err)
		return
	}

	summary := summaryMarkup.Replace(strings.TrimSpace(raw))
	if summary == "" {
		return
	}

	if err := l.profiles.SetAbout(ctx, userID, summary); err != nil {
		l.logger.Warn("profile summary write failed", "user", userID, "err", err)
	}
}
