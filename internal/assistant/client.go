// internal/assistant/client.go
// Client for a hosted text-generation endpoint (Hugging Face inference API
// request/response shape).

package assistant

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
)

// ErrEmptyCompletion is returned when the endpoint answers without text.
var ErrEmptyCompletion = errors.New("completion endpoint returned no text")

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type generationParams struct {
	MaxLength      int     `json:"max_length"`
	Temperature    float64 `json:"temperature"`
	DoSample       bool    `json:"do_sample"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generationRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters generationParams `json:"parameters"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

// HTTPCompleter posts prompts to a text-generation endpoint.
type HTTPCompleter struct {
	url    string
	token  string
	client *http.Client
}

func NewHTTPCompleter(url, token string, timeout time.Duration) *HTTPCompleter {
	return &HTTPCompleter{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generationRequest{
		Inputs: prompt,
		Parameters: generationParams{
			MaxLength:      500,
			Temperature:    0.7,
			DoSample:       true,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out []generation
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(out) == 0 || strings.TrimSpace(out[0].GeneratedText) == "" {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(out[0].GeneratedText), nil
}
