package board

import (
	"strings"
	"unicode"
)

// BlankCode is what an empty flap position encodes to.
const BlankCode = 0

// The board's character code page. Not contiguous: the gaps are colour chips
// and other codes this service never sends.
// See https://docs.vestaboard.com/docs/characterCodes
var charCodes = map[rune]int{
	' ': 0,
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8, 'I': 9,
	'J': 10, 'K': 11, 'L': 12, 'M': 13, 'N': 14, 'O': 15, 'P': 16, 'Q': 17,
	'R': 18, 'S': 19, 'T': 20, 'U': 21, 'V': 22, 'W': 23, 'X': 24, 'Y': 25, 'Z': 26,
	'1': 27, '2': 28, '3': 29, '4': 30, '5': 31, '6': 32, '7': 33, '8': 34, '9': 35, '0': 36,
	'!': 37, '@': 38, '#': 39, '$': 40, '(': 41, ')': 42,
	'-': 44, '+': 46, '&': 47, '=': 48, ';': 49, ':': 50,
	'\'': 52, '"': 53, '%': 54, ',': 55, '.': 56,
	'/': 59, '?': 60, '°': 62,
}

// CharacterCodes converts composed board text into the rows by cols integer
// matrix the device API expects. Missing lines and unmapped characters encode
// to the blank code.
func CharacterCodes(text string, rows, cols int) [][]int {
	lines := strings.Split(text, "\n")

	grid := make([][]int, rows)
	for row := 0; row < rows; row++ {
		codes := make([]int, cols)
		var line []rune
		if row < len(lines) {
			line = []rune(lines[row])
		}
		for col := 0; col < cols && col < len(line); col++ {
			codes[col] = charCodes[unicode.ToUpper(line[col])]
		}
		grid[row] = codes
	}

	return grid
}
