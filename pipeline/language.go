package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/core"
	"github.com/poiesic/lunaris/prompt"
)

// Language detection runs on the cheapest deterministic configuration; ten
// tokens fit any label the detector is allowed to answer with.
const (
	detectionModel     = "gpt-4.1-nano"
	detectionMaxTokens = 10
)

// languageAliases maps detector labels to the Vietnamese display names used
// in the system prompt. Matching is by substring, first entry wins, so a
// verbose reply like "DETECTED LANGUAGE: Vietnamese" still resolves.
var languageAliases = []struct {
	label string
	alias string
}{
	{"vietnamese", "tiếng việt"},
	{"english", "tiếng anh"},
	{"chinese", "tiếng trung"},
	{"korean", "tiếng hàn"},
	{"japanese", "tiếng nhật"},
	{"french", "tiếng pháp"},
	{"russian", "tiếng nga"},
	{"thai", "tiếng thái"},
	{"indonesian", "tiếng indonesia"},
	{"german", "tiếng đức"},
	{"india", "tiếng hindi"},
	{"malaysia", "tiếng malaysia"},
	{"portuguese", "tiếng bồ đào nha"},
	{"cambodia", "tiếng khmer"},
	{"netherlands", "tiếng hà lan"},
	{"spain", "tiếng tây ban nha"},
}

// detectLanguage classifies the user input with a small deterministic model
// call and maps the label to its Vietnamese display name. Detection is best
// effort: a failed call counts as Vietnamese and an unrecognized label as
// English, so the stage never fails and the language is never left empty.
type detectLanguage struct {
	models ai.HandleResolver
	logger *slog.Logger
}

func (d *detectLanguage) Name() string { return "detect_language" }

func (d *detectLanguage) Run(ctx context.Context, state *State) error {
	state.DetectedLanguage = mapLanguage(d.classify(ctx, state.UserInput))
	return nil
}

func (d *detectLanguage) classify(ctx context.Context, input string) string {
	temperature := 0.0
	handle, err := d.models.Get(ctx, ai.Request{
		Provider:    core.ProviderOpenAI,
		Model:       detectionModel,
		Temperature: &temperature,
		MaxTokens:   detectionMaxTokens,
		UseCache:    true,
	})
	if err != nil {
		d.logger.Warn("language detection unavailable", "err", err)
		return "vietnamese"
	}

	reply, err := handle.Generate(ctx, prompt.LanguageDetectionTurns(input))
	if err != nil {
		d.logger.Warn("language detection failed", "err", err)
		return "vietnamese"
	}
	return reply
}

func mapLanguage(label string) string {
	lowered := strings.ToLower(strings.TrimSpace(label))
	for _, entry := range languageAliases {
		if strings.Contains(lowered, entry.label) {
			return entry.alias
		}
	}
	return "tiếng anh"
}
