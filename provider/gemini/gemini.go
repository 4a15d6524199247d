package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/priyanshu2307/Newschat/provider"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client calls the Gemini generateContent API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Gemini client. The API key is required: without it
// the service must not start.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key not configured")
	}
	if model == "" {
		model = "gemini-1.5-pro"
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt as a sequence of user-authored turns and returns
// the model's reply text.
func (c *Client) Generate(ctx context.Context, prompt provider.Prompt) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: buildContents(prompt)})
	if err != nil {
		return "", fmt.Errorf("gemini: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("gemini: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &provider.UpstreamError{Service: "gemini", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &provider.UpstreamError{
			Service: "gemini",
			Err:     fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(b)),
		}
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &provider.UpstreamError{Service: "gemini", Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &provider.UpstreamError{Service: "gemini", Err: errors.New("empty response")}
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// buildContents flattens the prompt into user-role turns. The API does not
// accept injected assistant-authored history, so prior assistant replies are
// replayed as user-authored reminders. Keeping that adaptation here means a
// model API with native multi-role history only requires changing this
// function, not the orchestration.
func buildContents(prompt provider.Prompt) []content {
	contents := make([]content, 0, len(prompt.History)+2)
	if prompt.System != "" {
		contents = append(contents, userTurn(prompt.System))
	}
	for _, turn := range prompt.History {
		switch turn.Role {
		case provider.RoleAssistant:
			contents = append(contents, userTurn("Please remember your last response was: "+turn.Content))
		default:
			contents = append(contents, userTurn(turn.Content))
		}
	}
	contents = append(contents, userTurn(prompt.Query))
	return contents
}

func userTurn(text string) content {
	return content{Role: "user", Parts: []part{{Text: text}}}
}
