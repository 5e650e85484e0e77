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

// Package pipeline turns one user utterance into one assistant reply by
// running a fixed sequence of stages: load recent history, detect the input
// language, retrieve related knowledge, refresh what is known about the
// user, assemble the persona system prompt, persist the user turn, generate
// the reply, persist the reply.
//
// An Engine is compiled once and shared; every invocation works on its own
// State, so concurrent conversations never touch the same data. Stages that
// gather optional context (language detection, knowledge retrieval, user
// info) degrade to safe defaults instead of failing the conversation.
// Stages that write the transcript or call the session's model propagate
// their errors, which aborts the invocation; side effects already committed
// by earlier stages stay committed.
//
// Usage:
//
//	engine, err := pipeline.NewEngine(history, profiles, factory,
//		pipeline.WithSearcher(searcher))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state := &pipeline.State{
//		SessionID:           sessionID,
//		UserInput:           input,
//		Provider:            core.ProviderOpenAI,
//		Model:               "gpt-4.1-nano",
//		MaxTokens:           pipeline.DefaultMaxTokens,
//		SimilarityThreshold: pipeline.DefaultSimilarityThreshold,
//	}
//	if err := engine.Run(ctx, state); err != nil {
//		// handle; state.Output() still yields a safe reply
//	}
//	reply := state.Output()
package pipeline
