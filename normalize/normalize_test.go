package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAnswer_FencedJSON(t *testing.T) {
	raw := "```json\n{\"answer\":\"Xin chào\",\"language\":\"Vietnamese\"}\n```"
	assert.Equal(t, "Xin chào", ExtractAnswer(raw))
}

func TestExtractAnswer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strict json",
			raw:  `{"answer": "Hello", "language": "English"}`,
			want: "Hello",
		},
		{
			name: "python single quotes",
			raw:  `{'answer': 'Xin chào bạn', 'language': 'Vietnamese'}`,
			want: "Xin chào bạn",
		},
		{
			name: "answer not first key",
			raw:  `{'language': 'Vietnamese', 'answer': 'Chào'}`,
			want: "Chào",
		},
		{
			name: "nested value before answer",
			raw:  `{"meta": {"tags": ["a", "b"]}, "answer": "ok"}`,
			want: "ok",
		},
		{
			name: "json constants",
			raw:  `{"done": true, "extra": null, "answer": "yes"}`,
			want: "yes",
		},
		{
			name: "python constants",
			raw:  `{'done': True, 'extra': None, 'answer': 'có'}`,
			want: "có",
		},
		{
			name: "escaped double quote",
			raw:  `{"answer": "she said \"hi\""}`,
			want: `she said "hi"`,
		},
		{
			name: "escaped single quote",
			raw:  `{'answer': 'it\'s fine'}`,
			want: "it's fine",
		},
		{
			name: "unicode escapes",
			raw:  `{"answer": "Xin chào"}`,
			want: "Xin chào",
		},
		{
			name: "fenced prose stays prose",
			raw:  "```json\nnot an object\n```",
			want: "not an object",
		},
		{
			name: "plain prose unchanged",
			raw:  "Chào bạn! Mình là Mizuki.",
			want: "Chào bạn! Mình là Mizuki.",
		},
		{
			name: "malformed object unchanged",
			raw:  `{answer: oops`,
			want: `{answer: oops`,
		},
		{
			name: "missing answer key unchanged",
			raw:  `{"language": "Vietnamese"}`,
			want: `{"language": "Vietnamese"}`,
		},
		{
			name: "non-string answer unchanged",
			raw:  `{"answer": 42}`,
			want: `{"answer": 42}`,
		},
		{
			name: "bare json string unchanged",
			raw:  `"just a string"`,
			want: `"just a string"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAnswer(tt.raw))
		})
	}
}

func TestCleanMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fences and emphasis",
			in:   "```json\n**Trăng tròn** mang năng lượng\n```",
			want: "\nTrăng tròn mang năng lượng\n",
		},
		{
			name: "headings",
			in:   "# Tiêu đề\nnội dung",
			want: " Tiêu đề\nnội dung",
		},
		{
			name: "dash runs removed",
			in:   "trước --- sau",
			want: "trước  sau",
		},
		{
			name: "single dash kept",
			in:   "giai đoạn trăng - ý nghĩa",
			want: "giai đoạn trăng - ý nghĩa",
		},
		{
			name: "blank lines collapsed",
			in:   "dòng một\n\n\ndòng hai",
			want: "dòng một\ndòng hai",
		},
		{
			name: "underscores to spaces",
			in:   "một_hai_ba",
			want: "một hai ba",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanMarkup(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CleanMarkup(got), "second application must not change the text")
		})
	}
}

func TestCleanMarkup_IdempotentOnComposite(t *testing.T) {
	in := "```json\n# Trăng **tròn**\n\n\n---\nghi_chú\n```"
	once := CleanMarkup(in)
	assert.Equal(t, once, CleanMarkup(once))
}
