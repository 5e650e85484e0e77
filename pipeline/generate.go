package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/normalize"
)

// runLabelFormat tags generation calls for tracing: model, then session.
const runLabelFormat = "%s-graph-chat-%s"

// generateResponse resolves the session's model, produces the reply from
// the full transcript, and extracts the answer text from whatever shape the
// model returned it in.
type generateResponse struct {
	models ai.HandleResolver
	logger *slog.Logger
}

func (g *generateResponse) Name() string { return "generate_response" }

func (g *generateResponse) Run(ctx context.Context, state *State) error {
	start := time.Now()

	req := ai.Request{
		Provider:    state.Provider,
		Model:       state.Model,
		Temperature: state.Temperature,
		MaxTokens:   state.MaxTokens,
		RunLabel:    fmt.Sprintf(runLabelFormat, state.Model, state.SessionID),
		UseCache:    true,
	}
	applyParams(&req, state.Params)

	handle, err := g.models.Get(ctx, req)
	if err != nil {
		return err
	}

	raw, err := handle.Generate(ctx, state.Messages)
	if err != nil {
		return fmt.Errorf("%w: %w", ai.ErrGeneration, err)
	}

	state.Response = normalize.ExtractAnswer(raw)
	state.ResponseSeconds = math.Round(time.Since(start).Seconds()*100) / 100

	g.logger.Debug("response generated",
		"session", state.SessionID,
		"model", state.Model,
		"seconds", state.ResponseSeconds)
	return nil
}

// applyParams folds session model parameters into the request. Unknown keys
// and unparseable values are ignored.
func applyParams(req *ai.Request, params map[string]string) {
	if v, ok := params["temperature"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.Temperature = &f
		}
	}
	if v, ok := params["max_tokens"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			req.MaxTokens = n
		}
	}
}
