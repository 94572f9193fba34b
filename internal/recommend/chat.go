package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/moodcraft/backend/internal/models"
)

// ChatClient implements Provider against an OpenAI-compatible
// chat-completions HTTP API.
type ChatClient struct {
	baseURL       string
	apiKey        string
	primaryModel  string
	fallbackModel string
	httpClient    *http.Client
}

// NewChatClient creates a ChatClient. timeout bounds every outbound call.
func NewChatClient(baseURL, apiKey, primaryModel, fallbackModel string, timeout time.Duration) *ChatClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatClient{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		apiKey:        apiKey,
		primaryModel:  primaryModel,
		fallbackModel: fallbackModel,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate asks the primary model for recommendations. A rate-limited
// primary triggers exactly one retry against the fallback model with a
// simplified prompt; every other failure propagates immediately.
func (c *ChatClient) Generate(ctx context.Context, req models.PlaylistRequest) (*Response, error) {
	content, err := c.complete(ctx, c.primaryModel, buildPrompt(req))
	if errors.Is(err, ErrRateLimited) && c.fallbackModel != "" {
		slog.WarnContext(ctx, "primary model rate limited, retrying with fallback",
			slog.String("primary", c.primaryModel),
			slog.String("fallback", c.fallbackModel))
		content, err = c.complete(ctx, c.fallbackModel, buildSimplifiedPrompt(req))
	}
	if err != nil {
		return nil, err
	}

	resp, err := parseResponse(content)
	if err != nil {
		return nil, err
	}

	// Extras beyond the requested length are dropped; the engine pads
	// short lists at resolution time, so order here stays authoritative.
	if len(resp.Recommendations) > req.Length {
		resp.Recommendations = resp.Recommendations[:req.Length]
	}

	return resp, nil
}

// Replacement asks for a single recommendation for one playlist slot,
// with the same one-shot model fallback as Generate.
func (c *ChatClient) Replacement(ctx context.Context, hint ReplacementHint) (*models.AbstractRecommendation, error) {
	prompt := buildReplacementPrompt(hint)

	content, err := c.complete(ctx, c.primaryModel, prompt)
	if errors.Is(err, ErrRateLimited) && c.fallbackModel != "" {
		content, err = c.complete(ctx, c.fallbackModel, prompt)
	}
	if err != nil {
		return nil, err
	}

	resp, err := parseResponse(content)
	if err != nil {
		return nil, err
	}
	rec := resp.Recommendations[0]
	return &rec, nil
}

// complete performs one chat-completion call and returns the raw message
// content. HTTP statuses map onto the package error kinds.
func (c *ChatClient) complete(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", fmt.Errorf("%w: model %s", ErrAuth, model)
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: model %s", ErrRateLimited, model)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d: %s", ErrNetwork, resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode chat response: %v", ErrMalformed, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat response has no choices", ErrMalformed)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// parseResponse strips any code-fence wrapping, parses the model output as
// JSON, and validates the recommendations array.
func parseResponse(content string) (*Response, error) {
	content = stripCodeFence(content)

	var resp Response
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(resp.Recommendations) == 0 {
		return nil, fmt.Errorf("%w: missing recommendations array", ErrMalformed)
	}

	for i := range resp.Recommendations {
		resp.Recommendations[i].Energy = clampEnergy(resp.Recommendations[i].Energy)
	}
	resp.TotalEnergy = clampEnergy(resp.TotalEnergy)

	return &resp, nil
}

// stripCodeFence removes a surrounding ```...``` block, with or without a
// language tag, that models often wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx != -1 {
		// Drop the language tag line (e.g. "json").
		first := strings.TrimSpace(s[:idx])
		if first != "" && !strings.HasPrefix(first, "{") && !strings.HasPrefix(first, "[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func clampEnergy(e int) int {
	if e < 1 {
		return 1
	}
	if e > 10 {
		return 10
	}
	return e
}
