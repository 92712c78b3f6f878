package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) anthropicRequest(systemPrompt, userPrompt string) messagesRequest {
	return messagesRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		System:      systemPrompt,
		Messages:    []chatMessage{{Role: "user", Content: userPrompt}},
	}
}

func (c *Client) sendAnthropicOnce(ctx context.Context, payload messagesRequest) (string, string, []byte, error) {
	body, err := c.post(ctx, payload, map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	})
	if err != nil {
		return "", "", body, err
	}
	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", body, fmt.Errorf("llm request: decode response: %w", err)
	}
	if resp.Error != nil {
		return "", "", body, fmt.Errorf("llm request: api error: %s: %s", resp.Error.Type, strings.TrimSpace(resp.Error.Message))
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, block.Text)
		}
	}
	content := strings.TrimSpace(strings.Join(parts, ""))
	if content == "" {
		return "", resp.StopReason, body, &emptyContentError{
			Op:           "llm request",
			FinishReason: resp.StopReason,
			Snippet:      summarizePayloadSnippet(string(body)),
		}
	}
	return content, resp.StopReason, body, nil
}
