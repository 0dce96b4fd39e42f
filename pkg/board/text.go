package board

import (
	"strings"
	"unicode/utf8"
)

// Geometry of the Vestaboard flagship device.
const (
	Rows = 6
	Cols = 22
)

// Every character the board can physically render.
const supportedChars = `ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$()+-&=;:'"%,./?° `

// Typographic characters that have a close-enough equivalent on the board.
var replacer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus sign
	"…", "...", // ellipsis
	" ", " ", // non-breaking space
	"\t", " ",
)

// Normalize maps arbitrary text onto the board's character set. Typographic
// punctuation is substituted, text is uppercased, line breaks become spaces
// (the text is re-wrapped against the grid later), unsupported characters are
// dropped outright and runs of whitespace collapse to a single space.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	result := replacer.Replace(text)
	result = strings.ToUpper(result)
	result = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(result)

	sb := strings.Builder{}
	sb.Grow(len(result))
	for _, r := range result {
		if strings.ContainsRune(supportedChars, r) {
			sb.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// WordWrap greedily wraps normalized text into lines of at most width
// characters. A single word longer than width is hard-split with a trailing
// hyphen until the remainder fits.
func WordWrap(text string, width int) []string {
	lines := []string{}
	current := ""

	for _, word := range strings.Split(text, " ") {
		if word == "" {
			continue
		}

		if utf8.RuneCountInString(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			remaining := []rune(word)
			for len(remaining) > width {
				breakPoint := width - 1
				lines = append(lines, string(remaining[:breakPoint])+"-")
				remaining = remaining[breakPoint:]
			}
			current = string(remaining)
			continue
		}

		test := word
		if current != "" {
			test = current + " " + word
		}
		if utf8.RuneCountInString(test) <= width {
			current = test
		} else {
			lines = append(lines, current)
			current = word
		}
	}

	if current != "" {
		lines = append(lines, current)
	}

	return lines
}

// Compose lays normalized text out on a rows by cols grid. Overflowing text is
// truncated with a "..." marker on the last visible line; every line is
// left-justified and padded so the result is always exactly rows lines of
// exactly cols characters, joined with newlines.
func Compose(text string, rows, cols int) string {
	lines := WordWrap(text, cols)

	if len(lines) > rows {
		lines = lines[:rows]
		last := []rune(lines[rows-1])
		if len(last) > cols-3 {
			last = last[:cols-3]
		}
		lines[rows-1] = string(last) + "..."
	}

	justified := make([]string, rows)
	for i := 0; i < rows; i++ {
		if i < len(lines) {
			justified[i] = lines[i] + strings.Repeat(" ", cols-utf8.RuneCountInString(lines[i]))
		} else {
			justified[i] = strings.Repeat(" ", cols)
		}
	}

	return strings.Join(justified, "\n")
}
