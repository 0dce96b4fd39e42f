package mailparse

import (
	"regexp"
	"strings"
)

// Signature blocks commonly appended by mail clients. Everything from the
// first match onwards is discarded.
var signaturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^--\s*$`),
	regexp.MustCompile(`(?m)^_{3,}$`),
	regexp.MustCompile(`(?m)^-{3,}$`),
	regexp.MustCompile(`(?im)^Sent from my \w+`),
	regexp.MustCompile(`(?im)^Get Outlook for`),
	regexp.MustCompile(`(?im)^Sent from Mail for`),
	regexp.MustCompile(`(?im)^Sent from Yahoo Mail`),
}

var replyIntroPattern = regexp.MustCompile(`(?m)^On .+ wrote:$`)

var addressPattern = regexp.MustCompile(`^(.+?)\s*<(.+?)>$`)

var messageIDPattern = regexp.MustCompile(`(?im)^Message-ID:\s*(.+)$`)

var blankLineRuns = regexp.MustCompile(`\n{3,}`)

// CleanBody strips reply chains, quoted lines and signature blocks from an
// email body, leaving just the text the sender actually wrote.
func CleanBody(text string) string {
	if text == "" {
		return ""
	}

	cleaned := strings.ReplaceAll(text, "\r\n", "\n")

	// "On [date], [person] wrote:" marks the start of the quoted original
	if loc := replyIntroPattern.FindStringIndex(cleaned); loc != nil {
		cleaned = strings.TrimSpace(cleaned[:loc[0]])
	}

	kept := []string{}
	for _, line := range strings.Split(cleaned, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		kept = append(kept, line)
	}
	cleaned = strings.Join(kept, "\n")

	for _, pattern := range signaturePatterns {
		if loc := pattern.FindStringIndex(cleaned); loc != nil {
			cleaned = strings.TrimSpace(cleaned[:loc[0]])
		}
	}

	cleaned = blankLineRuns.ReplaceAllString(cleaned, "\n\n")

	return strings.TrimSpace(cleaned)
}

// ParseAddress splits a From header of the form `Name <addr@domain>` into its
// parts. A bare address yields an empty name. Addresses are lowercased.
func ParseAddress(from string) (name string, email string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	if match := addressPattern.FindStringSubmatch(from); match != nil {
		name = strings.Trim(match[1], `"'`)
		return strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(match[2]))
	}

	return "", strings.ToLower(from)
}

// MessageID extracts the Message-ID value from a raw header block, used as
// the deduplication key for inbound email. Returns "" when absent.
func MessageID(headers string) string {
	match := messageIDPattern.FindStringSubmatch(headers)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

var htmlReplacements = []struct {
	pattern *regexp.Regexp
	with    string
}{
	{regexp.MustCompile(`(?i)<br\s*/?>`), "\n"},
	{regexp.MustCompile(`(?i)</p>`), "\n\n"},
	{regexp.MustCompile(`(?i)</div>`), "\n"},
	{regexp.MustCompile(`<[^>]+>`), ""},
}

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// ExtractPlainText prefers the text/plain part of an inbound email and falls
// back to a rough HTML-to-text conversion of the text/html part.
func ExtractPlainText(text, html string) string {
	if strings.TrimSpace(text) != "" {
		return text
	}

	if html == "" {
		return ""
	}

	result := html
	for _, r := range htmlReplacements {
		result = r.pattern.ReplaceAllString(result, r.with)
	}
	return strings.TrimSpace(entityReplacer.Replace(result))
}
