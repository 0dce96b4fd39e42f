package mailparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanBody(t *testing.T) {
	assert := assert.New(t)

	t.Run("strips standard signature delimiter", func(t *testing.T) {
		body := "Hello from Alice!\n\n--\nAlice Johnson\nSoftware Engineer"
		assert.Equal("Hello from Alice!", CleanBody(body))
	})

	t.Run("strips mobile signatures", func(t *testing.T) {
		body := "See you soon.\n\nSent from my iPhone"
		assert.Equal("See you soon.", CleanBody(body))
	})

	t.Run("truncates reply chains", func(t *testing.T) {
		body := "Sounds great!\n\nOn Mon, Jan 6, 2025 at 9:00 AM Bob <bob@co.org> wrote:\n> original text\n> more original"
		assert.Equal("Sounds great!", CleanBody(body))
	})

	t.Run("drops quoted lines", func(t *testing.T) {
		body := "Agreed.\n> what they said\nThanks!"
		assert.Equal("Agreed.\nThanks!", CleanBody(body))
	})

	t.Run("normalizes line endings and blank runs", func(t *testing.T) {
		body := "first\r\n\r\n\r\n\r\nsecond"
		assert.Equal("first\n\nsecond", CleanBody(body))
	})

	t.Run("empty body", func(t *testing.T) {
		assert.Equal("", CleanBody(""))
	})
}

func TestParseAddress(t *testing.T) {
	assert := assert.New(t)

	t.Run("name and address", func(t *testing.T) {
		name, email := ParseAddress("Alice Johnson <Alice@Example.com>")
		assert.Equal("Alice Johnson", name)
		assert.Equal("alice@example.com", email)
	})

	t.Run("quoted name", func(t *testing.T) {
		name, email := ParseAddress(`"Bob Smith" <bob@company.org>`)
		assert.Equal("Bob Smith", name)
		assert.Equal("bob@company.org", email)
	})

	t.Run("bare address", func(t *testing.T) {
		name, email := ParseAddress("carol@mail.com")
		assert.Equal("", name)
		assert.Equal("carol@mail.com", email)
	})

	t.Run("empty", func(t *testing.T) {
		name, email := ParseAddress("")
		assert.Equal("", name)
		assert.Equal("", email)
	})
}

func TestMessageID(t *testing.T) {
	assert := assert.New(t)

	headers := "Received: from mail.example.com\nMessage-ID: <abc123@mail.example.com>\nSubject: hi"
	assert.Equal("<abc123@mail.example.com>", MessageID(headers))

	assert.Equal("", MessageID("Subject: no id here"))
	assert.Equal("<x@y>", MessageID("message-id: <x@y>"), "header names are case-insensitive")
}

func TestExtractPlainText(t *testing.T) {
	assert := assert.New(t)

	t.Run("prefers plain text", func(t *testing.T) {
		assert.Equal("plain wins", ExtractPlainText("plain wins", "<p>html loses</p>"))
	})

	t.Run("converts html when plain text is missing", func(t *testing.T) {
		html := "<div>Hello<br>there</div><p>Tom &amp; Jerry say &quot;hi&quot;</p>"
		assert.Equal("Hello\nthere\nTom & Jerry say \"hi\"", ExtractPlainText("", html))
	})

	t.Run("both empty", func(t *testing.T) {
		assert.Equal("", ExtractPlainText("  ", ""))
	})
}
