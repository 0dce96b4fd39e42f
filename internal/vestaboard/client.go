package vestaboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shanemcgraw/tillage-vestaboard/pkg/board"
)

const DefaultBaseURL = "https://subscriptions.vestaboard.com"

// The device API has no documented latency bound; without a deadline a dead
// network would leave a moderation request hanging.
const postTimeout = 10 * time.Second

type Config struct {
	APIKey         string
	APISecret      string
	SubscriptionID string
	BaseURL        string
}

type Client struct {
	config Config
	client *http.Client
}

func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: postTimeout},
	}
}

type postRequest struct {
	Characters [][]int `json:"characters"`
}

// Post sends composed board text to the Vestaboard Subscriptions API as a
// character code matrix. Any failure, including missing credentials and
// timeouts, comes back as an error whose text is suitable for showing to a
// moderator.
func (c *Client) Post(ctx context.Context, boardText string) error {
	if c.config.APIKey == "" || c.config.APISecret == "" || c.config.SubscriptionID == "" {
		return errors.New("vestaboard api key, secret or subscription id not configured")
	}

	payload, err := json.Marshal(postRequest{
		Characters: board.CharacterCodes(boardText, board.Rows, board.Cols),
	})
	if err != nil {
		return fmt.Errorf("marshalling character codes: %w", err)
	}

	url := fmt.Sprintf("%s/subscriptions/%s/message", c.config.BaseURL, c.config.SubscriptionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-Vestaboard-Api-Key", c.config.APIKey)
	req.Header.Set("X-Vestaboard-Api-Secret", c.config.APISecret)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to vestaboard: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("vestaboard api error: %d %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
