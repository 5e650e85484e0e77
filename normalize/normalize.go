// Package normalize recovers clean display text from raw model replies.
//
// Chat models are instructed to reply with a JSON object carrying "answer"
// and "language" fields, but in practice they drift: fenced code blocks,
// Python repr-style dicts with single quotes, or plain prose. ExtractAnswer
// tolerates all of these and falls back to the text as given. CleanMarkup
// strips residual markdown before text reaches clients that render it plain.
package normalize

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("```json\\s*")
	fenceClose = regexp.MustCompile("\\s*```")

	markupRuns  = regexp.MustCompile("```json|```|[*#]")
	dashRuns    = regexp.MustCompile(`-{2,}`)
	newlineRuns = regexp.MustCompile(`\n{2,}`)
)

// ExtractAnswer pulls the answer field out of a model reply.
//
// The reply is trimmed and unfenced first. A reply opening with '{' is read
// as an object literal in either JSON or Python repr form; anything else
// must be strict JSON. When no answer field can be recovered the unfenced
// text is returned unchanged, so a malformed reply degrades to raw prose
// rather than an error.
func ExtractAnswer(raw string) string {
	content := strings.TrimSpace(raw)
	if strings.HasPrefix(content, "```json") {
		content = fenceOpen.ReplaceAllString(content, "")
		content = fenceClose.ReplaceAllString(content, "")
	}

	if strings.HasPrefix(content, "{") {
		if answer, ok := answerFromObject(content); ok {
			return answer
		}
		return content
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(content), &doc); err == nil {
		if answer, ok := doc["answer"].(string); ok {
			return answer
		}
	}
	return content
}

// CleanMarkup strips markdown artifacts from display text: code fences,
// emphasis and heading markers, runs of dashes, and blank lines. Underscores
// become spaces. Applying it twice yields the same text.
func CleanMarkup(s string) string {
	s = markupRuns.ReplaceAllString(s, "")
	s = dashRuns.ReplaceAllString(s, "")
	s = newlineRuns.ReplaceAllString(s, "\n")
	return strings.ReplaceAll(s, "_", " ")
}
