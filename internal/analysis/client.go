// Package analysis sends baseline/current image pairs to a multimodal AI
// endpoint and extracts structured results from its free-text replies.
package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/msmahdinejad/smart-monitoring-system/internal/config"
)

// Client calls an OpenAI-compatible chat completions endpoint, or in test
// mode synthesizes canned responses that follow the same labeled contract.
type Client struct {
	cfg  *config.Config
	http *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.AITimeout},
	}
}

// TestModeActive reports whether the client serves canned responses.
func (c *Client) TestModeActive() bool {
	return c.cfg.TestMode || !c.cfg.AIEnabled
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze submits the image pair and prompt and returns the raw response
// text. Endpoint failures come back as text embedding the error so the
// caller's parse path degrades to defaults instead of aborting the cycle.
// No retries at this layer.
func (c *Client) Analyze(ctx context.Context, baseline, current []byte, prompt string) string {
	if c.TestModeActive() {
		log.Info().Msg("Test mode active, returning simulated AI response")
		return renderTestResponse(testResponse(c.cfg.TestPattern, c.cfg.FixedResponse))
	}

	reqBody := chatRequest{
		Model: c.cfg.AIModel,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL(baseline)}},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL(current)}},
			},
		}},
		MaxTokens:   c.cfg.AIMaxTokens,
		Temperature: c.cfg.AITemperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Sprintf("Analysis Error: %v", err)
	}

	url := strings.TrimRight(c.cfg.AIBaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Sprintf("Analysis Error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AIAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Sprintf("Analysis Error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Analysis Error: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("API Error %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Sprintf("Analysis Error: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "Analysis Error: empty response from AI endpoint"
	}
	return parsed.Choices[0].Message.Content
}

func dataURL(image []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
}
