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


package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/lunaris/core"
)

// ChatConfig describes one chat model handle. Temperature nil means the
// option is omitted entirely, not defaulted; some models reject it.
type ChatConfig struct {
	APIKey      string
	BaseURL     string // empty means the native OpenAI API
	Model       string
	Temperature *float64
	MaxTokens   int // non-positive means no cap
}

// ChatModel is a chat completion handle over an OpenAI-compatible API.
// Gemini handles use the same type, pointed at Google's compatibility
// endpoint via BaseURL.
type ChatModel struct {
	llm         *openai.LLM
	model       string
	temperature *float64
	maxTokens   int
	logger      *slog.Logger
}

// NewChatModel creates a chat model handle. Construction is local; the
// first network use happens in Generate.
func NewChatModel(cfg ChatConfig) (*ChatModel, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create chat client for %q: %w", cfg.Model, err)
	}

	return &ChatModel{
		llm:         llm,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      slog.Default().With("component", "openai-chat"),
	}, nil
}

// Generate produces the assistant reply for an ordered transcript.
func (m *ChatModel) Generate(ctx context.Context, turns []core.Turn) (string, error) {
	content := make([]llms.MessageContent, 0, len(turns))
	for _, turn := range turns {
		content = append(content, llms.MessageContent{
			Role:  messageType(turn.Role),
			Parts: []llms.ContentPart{llms.TextPart(turn.Content)},
		})
	}

	var callOpts []llms.CallOption
	if m.temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*m.temperature))
	}
	if m.maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(m.maxTokens))
	}

	m.logger.Debug("generating completion", "model", m.model, "turns", len(turns))

	resp, err := m.llm.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		m.logger.Error("completion failed", "model", m.model, "err", err)
		return "", fmt.Errorf("chat completion with %q: %w", m.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return resp.Choices[0].Content, nil
}

func messageType(role core.Role) llms.ChatMessageType {
	switch role {
	case core.RoleSystem:
		return llms.ChatMessageTypeSystem
	case core.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
