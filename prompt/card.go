package prompt

import (
	"fmt"
	"strings"

	"github.com/poiesic/lunaris/core"
)

// CardContext renders a card as the Vietnamese bullet block embedded in
// system prompts. Empty fields are omitted rather than rendered blank.
func CardContext(card core.Card) string {
	var sb strings.Builder

	if card.Name != "" {
		sb.WriteString("- Tên thẻ: ")
		sb.WriteString(card.Name)
	}
	if card.ShortMeaning != "" {
		sb.WriteString("\n- Ý nghĩa: ")
		sb.WriteString(card.ShortMeaning)
	}
	if card.Kind != "" {
		sb.WriteString("\n- Loại: ")
		sb.WriteString(card.Kind)
	}
	if hasContent(card.Content) {
		sb.WriteString("\n- Nội dung: ")
		if card.Content.OverallMeaning != "" {
			sb.WriteString("\n  - Ý nghĩa tổng thể: ")
			sb.WriteString(card.Content.OverallMeaning)
		}
		if card.Content.AttuneToTheMoon != "" {
			sb.WriteString("\n  - Điều chỉnh theo mặt trăng: ")
			sb.WriteString(card.Content.AttuneToTheMoon)
		}
		if len(card.Content.AdditionalMeanings) > 0 {
			sb.WriteString("\n  - Ý nghĩa bổ sung:")
			for _, meaning := range card.Content.AdditionalMeanings {
				sb.WriteString("\n    • ")
				sb.WriteString(meaning)
			}
		}
		if card.Content.TheTeaching != "" {
			sb.WriteString("\n  - Giáo lý: ")
			sb.WriteString(card.Content.TheTeaching)
		}
	}

	return sb.String()
}

// CombinedCardContext joins per-card context blocks under numbered headers.
// Positions are kept when a block is empty so that the numbering still
// matches the order the cards were drawn in.
func CombinedCardContext(contexts []string) string {
	var sb strings.Builder
	for i, ctx := range contexts {
		if ctx == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "**Thẻ %d**:\n%s", i+1, ctx)
	}
	return sb.String()
}

func hasContent(c core.CardContent) bool {
	return c.OverallMeaning != "" ||
		c.AttuneToTheMoon != "" ||
		len(c.AdditionalMeanings) > 0 ||
		c.TheTeaching != ""
}
