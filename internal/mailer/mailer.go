package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

const DefaultBaseURL = "https://api.sendgrid.com"

const autoReplyText = `Thanks for your message to the Tillage board!

Your message has been received and is pending review. Once it's approved, it will appear on the board shortly.

- The Tillage board
`

type Config struct {
	APIKey    string
	FromEmail string
	BaseURL   string
}

type Mailer struct {
	config Config
	client *http.Client
}

func New(config Config) *Mailer {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	return &Mailer{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type address struct {
	Email string `json:"email"`
}

type personalization struct {
	To []address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

// SendAutoReply tells a sender their message was received and is awaiting
// review. A missing API key downgrades to a no-op so local setups work
// without SendGrid.
func (m *Mailer) SendAutoReply(ctx context.Context, toEmail, originalSubject string) error {
	if m.config.APIKey == "" {
		log.Info("sendgrid not configured, skipping auto-reply")
		return nil
	}

	subject := "Re: Your message to the board"
	if strings.TrimSpace(originalSubject) != "" {
		subject = "Re: " + originalSubject
	}

	body := sendRequest{
		Personalizations: []personalization{{To: []address{{Email: toEmail}}}},
		From:             address{Email: m.config.FromEmail},
		Subject:          subject,
		Content:          []content{{Type: "text/plain", Value: autoReplyText}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.BaseURL+"/v3/mail/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending auto-reply: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusMultipleChoices {
		text, _ := io.ReadAll(res.Body)
		return fmt.Errorf("sendgrid error: %d %s", res.StatusCode, strings.TrimSpace(string(text)))
	}

	return nil
}
