package pipeline

import (
	"context"
	"time"

	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/storage"
)

// recentTurnWindow bounds how much persisted history seeds the transcript.
const recentTurnWindow = 4

// loadRecentMessages seeds the working transcript with the most recent
// persisted turns, oldest first.
type loadRecentMessages struct {
	history storage.HistoryRepository
}

func (l *loadRecentMessages) Name() string { return "load_recent_messages" }

func (l *loadRecentMessages) Run(ctx context.Context, state *State) error {
	turns, err := l.history.LoadRecent(ctx, state.SessionID, recentTurnWindow, "")
	if err != nil {
		return err
	}
	state.Messages = append(state.Messages, turns...)
	return nil
}

// appendUserTurn records the user utterance in history and on the
// transcript. It runs after the prompt stage so the turn lands last.
type appendUserTurn struct {
	history storage.HistoryRepository
}

func (a *appendUserTurn) Name() string { return "add_user_message" }

func (a *appendUserTurn) Run(ctx context.Context, state *State) error {
	turn := core.Turn{
		Role:      core.RoleUser,
		Content:   state.UserInput,
		Timestamp: time.Now().UTC(),
	}
	if err := a.history.Append(ctx, state.SessionID, turn); err != nil {
		return err
	}
	state.Messages = append(state.Messages, turn)
	return nil
}

// persistResponse records the assistant reply, when there is one.
type persistResponse struct {
	history storage.HistoryRepository
}

func (p *persistResponse) Name() string { return "save_response" }

func (p *persistResponse) Run(ctx context.Context, state *State) error {
	if state.Response == "" {
		return nil
	}

	turn := core.Turn{
		Role:      core.RoleAssistant,
		Content:   state.Response,
		Timestamp: time.Now().UTC(),
	}
	if err := p.history.Append(ctx, state.SessionID, turn); err != nil {
		return err
	}
	state.Messages = append(state.Messages, turn)
	return nil
}
