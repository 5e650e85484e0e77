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


package normalize

import (
	"strconv"
	"strings"
	"unicode"
)

// answerFromObject scans an object literal for a top-level "answer" entry.
// Model replies drift between strict JSON and Python repr-style dicts, so
// the scanner accepts both quote styles and a trailing comma. Only a string
// value satisfies the lookup; nested values are skipped structurally.
func answerFromObject(s string) (string, bool) {
	runes := []rune(s)
	i := skipSpace(runes, 0)

	if i >= len(runes) || runes[i] != '{' {
		return "", false
	}
	i++

	for {
		i = skipSpace(runes, i)
		if i >= len(runes) || runes[i] == '}' {
			return "", false
		}

		key, next, ok := scanString(runes, i)
		if !ok {
			return "", false
		}
		i = skipSpace(runes, next)

		if i >= len(runes) || runes[i] != ':' {
			return "", false
		}
		i = skipSpace(runes, i+1)
		if i >= len(runes) {
			return "", false
		}

		switch runes[i] {
		case '"', '\'':
			value, next, ok := scanString(runes, i)
			if !ok {
				return "", false
			}
			if key == "answer" {
				return value, true
			}
			i = next
		case '{', '[':
			next, ok := skipNested(runes, i)
			if !ok {
				return "", false
			}
			i = next
		default:
			// Bare literal: number, boolean, or null in either spelling.
			// Runs until the next separator.
			for i < len(runes) && runes[i] != ',' && runes[i] != '}' {
				i++
			}
		}

		i = skipSpace(runes, i)
		if i >= len(runes) || runes[i] != ',' {
			return "", false
		}
		i++
	}
}

// scanString reads a quoted string starting at runes[i]. Single and double
// quotes both delimit. Recognized escapes are decoded; an unrecognized
// escape keeps its backslash, matching Python string literal behavior.
func scanString(runes []rune, i int) (string, int, bool) {
	if i >= len(runes) || (runes[i] != '"' && runes[i] != '\'') {
		return "", 0, false
	}
	quote := runes[i]
	i++

	var sb strings.Builder
	for i < len(runes) {
		ch := runes[i]
		switch {
		case ch == quote:
			return sb.String(), i + 1, true
		case ch == '\\':
			if i+1 >= len(runes) {
				return "", 0, false
			}
			i++
			switch runes[i] {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '"', '\'', '\\', '/':
				sb.WriteRune(runes[i])
			case 'u':
				if i+4 >= len(runes) {
					return "", 0, false
				}
				code, err := strconv.ParseUint(string(runes[i+1:i+5]), 16, 32)
				if err != nil {
					return "", 0, false
				}
				sb.WriteRune(rune(code))
				i += 4
			default:
				sb.WriteRune('\\')
				sb.WriteRune(runes[i])
			}
			i++
		default:
			sb.WriteRune(ch)
			i++
		}
	}
	return "", 0, false
}

// skipNested advances past a balanced {...} or [...] value. Quoted strings
// are scanned so that brackets inside them do not count toward depth.
func skipNested(runes []rune, i int) (int, bool) {
	depth := 0
	for i < len(runes) {
		switch runes[i] {
		case '{', '[':
			depth++
			i++
		case '}', ']':
			depth--
			i++
			if depth == 0 {
				return i, true
			}
		case '"', '\'':
			_, next, ok := scanString(runes, i)
			if !ok {
				return 0, false
			}
			i = next
		default:
			i++
		}
	}
	return 0, false
}

func skipSpace(runes []rune, i int) int {
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}
