package sanitizer

import (
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// CleanDetail normalizes a user-supplied profile detail (name, email, notes).
// Markup is removed, runs of whitespace collapse to one space and the result is
// cut to at most maxRunes runes. maxRunes <= 0 disables the cut.
//
// Examples:
//   - "<b>Ada</b>  Lovelace" -> "Ada Lovelace"
//   - "  ada@example.com\n" -> "ada@example.com"
func CleanDetail(input string, maxRunes int) string {
	text := input
	if strings.Contains(text, "<") {
		text = StripTags(text)
	}
	text = strings.Join(strings.Fields(text), " ")
	if maxRunes > 0 && utf8.RuneCountInString(text) > maxRunes {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:maxRunes]))
	}
	return text
}

// StripTags removes all HTML/XML tags and keeps only the text nodes.
//
// Not a security boundary; output still has to be escaped where it is rendered.
//
// Examples:
//   - "<p>Hello <strong>World</strong></p>" -> "Hello World"
//   - "Plain text" -> "Plain text"
func StripTags(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	tokenizer := html.NewTokenizer(strings.NewReader(input))
	var buf strings.Builder

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			if tokenizer.Err() == io.EOF {
				break
			}
			return ""
		}

		if tt == html.TextToken {
			buf.WriteString(tokenizer.Token().Data)
		}
	}

	return strings.TrimSpace(buf.String())
}
