package prompt

import (
	"fmt"
	"strings"
)

const suggestionsTemplate = `
Dựa trên dữ liệu thẻ Moonology sau đây, hãy tạo ra 3 gợi ý câu hỏi có thể khai thác để hỏi liên quan đến Moonology.

Dữ liệu thẻ:
%s

Yêu cầu:
1. Câu hỏi phải liên quan trực tiếp đến thông tin thẻ
2. Câu hỏi phải có tính khám phá và học hỏi
3. Câu hỏi phù hợp với chủ đề Moonology

`

// Suggestions builds the one-shot follow-up question request from combined
// card data. Up to three of the caller's previous questions are appended so
// the model avoids repeating them.
func Suggestions(cardData string, previous []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, suggestionsTemplate, cardData)

	if len(previous) > 0 {
		if len(previous) > 3 {
			previous = previous[len(previous)-3:]
		}
		sb.WriteString("\nCác câu hỏi trước đó (tránh lặp lại):\n")
		for i, question := range previous {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, question)
		}
	}
	return sb.String()
}

// DefaultSuggestions replace or pad generated follow-up questions when the
// model output cannot be used.
func DefaultSuggestions() []string {
	return []string{
		"Hãy giải thích ý nghĩa của thẻ này",
		"Thẻ này có liên quan gì đến các thẻ khác?",
		"Làm thế nào để sử dụng thẻ này trong thực tế?",
	}
}

// DefaultMultiCardSuggestions serve requests that carry no card context at
// all.
func DefaultMultiCardSuggestions() []string {
	return []string{
		"Hãy giải thích ý nghĩa của các thẻ này",
		"Các thẻ này có liên quan gì đến nhau?",
		"Làm thế nào để sử dụng các thẻ này trong thực tế?",
	}
}
