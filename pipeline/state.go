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
	"time"

	"github.com/poiesic/lunaris/core"
)

// DefaultErrorResponse is the reply handed to callers when the pipeline
// produced none.
const DefaultErrorResponse = "I'm sorry, I couldn't process your request."

// Conversation defaults, applied by callers when a request leaves the
// corresponding field unset.
const (
	// DefaultMaxTokens caps pipeline replies.
	DefaultMaxTokens = 5000

	// DefaultSimilarityThreshold is the minimum score for a knowledge chunk
	// to reach the system prompt.
	DefaultSimilarityThreshold = 0.3
)

// State carries one conversation turn through the pipeline. Every
// invocation owns its State outright; nothing in it is shared or locked.
type State struct {
	// SessionID identifies the conversation. Must be set.
	SessionID string

	// UserInput is the raw user utterance driving this invocation.
	UserInput string

	// Messages is the working transcript in model order. After the prompt
	// stage the system turn leads; recent history and the current exchange
	// follow.
	Messages []core.Turn

	// Knowledge holds the reference chunks retrieved for the prompt.
	Knowledge []*core.KnowledgeMatch

	// DetectedLanguage is the Vietnamese display name of the input
	// language, e.g. "tiếng việt". Never empty once detection has run.
	DetectedLanguage string

	// Response is the extracted assistant reply. Empty until generation.
	Response string

	// Generation config. An empty Model selects the provider default; a
	// nil Temperature selects the configured default, or none at all for
	// models that reject the option; Params may override either per
	// session.
	Provider    core.Provider
	Model       string
	Temperature *float64
	MaxTokens   int
	Params      map[string]string

	// SystemContext is the pre-rendered card block embedded verbatim in
	// the system prompt when cards were drawn for the session.
	SystemContext string

	// SimilarityThreshold is the minimum score for knowledge retrieval.
	SimilarityThreshold float32

	// UserID links the conversation to a profile. Empty means anonymous.
	UserID string

	// UserInfo is the profile view loaded for the prompt, nil when the
	// conversation is anonymous or the profile could not be read.
	UserInfo *UserInfo

	// CardIDs are the cards drawn for the session, in draw order.
	CardIDs []string

	// ResponseSeconds is the generation wall-clock latency, rounded to two
	// decimal places.
	ResponseSeconds float64
}

// UserInfo is what the prompt stage gets to know about the user.
type UserInfo struct {
	UserID       string
	About        string
	ContentCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Output returns the reply to hand to the caller: the response when one was
// produced, DefaultErrorResponse otherwise.
func (s *State) Output() string {
	if s.Response == "" {
		return DefaultErrorResponse
	}
	return s.Response
}
