package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/priyanshu2307/Newschat/provider"
)

const defaultAPIURL = "https://api.jina.ai/v1/embeddings"

// Client calls the Jina embeddings API. It holds no state beyond its
// connection settings.
type Client struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a Jina embedding client. The API key is required:
// without it the service must not start.
func NewClient(apiKey, model, apiURL string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("jina: api key not configured")
	}
	if model == "" {
		model = "jina-embeddings-v2-base-en"
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// CreateEmbedding returns one vector per input text, in input order.
func (c *Client) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("jina: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("jina: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &provider.UpstreamError{Service: "jina", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &provider.UpstreamError{
			Service: "jina",
			Err:     fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(b)),
		}
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &provider.UpstreamError{Service: "jina", Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if len(parsed.Data) != len(texts) {
		return nil, &provider.UpstreamError{
			Service: "jina",
			Err:     fmt.Errorf("expected %d embeddings, got %d", len(texts), len(parsed.Data)),
		}
	}

	// The API is expected to preserve order; sort by index to be sure.
	// Stable so duplicate indices from a sloppy upstream keep response order.
	sort.SliceStable(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })

	vecs := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}
