package pipeline

import (
	"context"

	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/prompt"
)

// prepareSystemPrompt assembles the persona prompt from everything the
// earlier stages gathered and pins it as the sole system turn.
type prepareSystemPrompt struct{}

func (p *prepareSystemPrompt) Name() string { return "prepare_system_prompt" }

func (p *prepareSystemPrompt) Run(ctx context.Context, state *State) error {
	lang := state.DetectedLanguage
	if lang == "" {
		lang = "tiếng anh"
	}

	about := ""
	if state.UserInfo != nil {
		about = state.UserInfo.About
	}

	system := prompt.System(prompt.SystemParams{
		UserInfo:    about,
		CardContext: state.SystemContext,
		CardIDs:     state.CardIDs,
	})
	if len(state.Knowledge) > 0 {
		snippets := make([]string, len(state.Knowledge))
		for i, match := range state.Knowledge {
			snippets[i] = match.Chunk.Text
		}
		system += prompt.KnowledgeBlock(snippets)
	}
	system += prompt.ClosingInstruction(lang)

	// The system turn always leads the transcript; any system turn carried
	// in from history is superseded.
	pinned := make([]core.Turn, 0, len(state.Messages)+1)
	pinned = append(pinned, core.Turn{Role: core.RoleSystem, Content: system})
	for _, turn := range state.Messages {
		if turn.Role != core.RoleSystem {
			pinned = append(pinned, turn)
		}
	}
	state.Messages = pinned

	return nil
}
