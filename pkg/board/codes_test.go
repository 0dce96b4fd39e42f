package board

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacterCodes(t *testing.T) {
	assert := assert.New(t)

	t.Run("grid shape", func(t *testing.T) {
		grid := CharacterCodes(Compose("HELLO", Rows, Cols), Rows, Cols)
		assert.Len(grid, Rows)
		for _, row := range grid {
			assert.Len(row, Cols)
		}
	})

	t.Run("known codes", func(t *testing.T) {
		grid := CharacterCodes("AZ 09!?°", Rows, Cols)
		assert.Equal([]int{1, 26, 0, 36, 35, 37, 60, 62}, grid[0][:8])
	})

	t.Run("every supported character has a code", func(t *testing.T) {
		for _, r := range supportedChars {
			code, ok := charCodes[r]
			assert.True(ok, "missing code for %q", r)
			assert.GreaterOrEqual(code, 0)
		}
	})

	t.Run("missing rows encode blank", func(t *testing.T) {
		grid := CharacterCodes("ONLY ONE LINE", Rows, Cols)
		for row := 1; row < Rows; row++ {
			assert.Equal(make([]int, Cols), grid[row])
		}
	})

	t.Run("unmapped characters fall back to blank", func(t *testing.T) {
		grid := CharacterCodes("A~B", Rows, Cols)
		assert.Equal([]int{1, 0, 2}, grid[0][:3])
	})

	t.Run("lowercase input still encodes", func(t *testing.T) {
		grid := CharacterCodes("abc", Rows, Cols)
		assert.Equal([]int{1, 2, 3}, grid[0][:3])
	})

	t.Run("full composed frame round-trips through the code page", func(t *testing.T) {
		text := Compose(Normalize("Hey everyone! Just wanted to say hi."), Rows, Cols)
		grid := CharacterCodes(text, Rows, Cols)
		for row, line := range strings.Split(text, "\n") {
			for col, r := range []rune(line) {
				assert.Equal(charCodes[r], grid[row][col])
			}
		}
	})
}
