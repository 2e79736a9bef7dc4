package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"facturio/internal/config"
	"facturio/internal/generator"
	"facturio/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

// Generator implements port.StructuredGenerator using the Anthropic Messages
// API. The target schema is embedded in the final user message; conformance
// is enforced locally.
type Generator struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGenerator creates a Claude-based structured generator from a provider config.
func NewGenerator(cfg *config.GeneratorProviderConfig) *Generator {
	return newGenerator(cfg, apiURL)
}

// NewGeneratorWithEndpoint creates a generator pointing at a custom API endpoint (for testing).
func NewGeneratorWithEndpoint(cfg *config.GeneratorProviderConfig, endpoint string) *Generator {
	return newGenerator(cfg, endpoint)
}

func newGenerator(cfg *config.GeneratorProviderConfig, endpoint string) *Generator {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Generator{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (json.RawMessage, error) {
	messages, systemText := buildMessages(input)

	reqBody := map[string]interface{}{
		"model":      g.model,
		"max_tokens": 16384,
		"messages":   messages,
	}
	if systemText != "" {
		reqBody["system"] = systemText
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := generator.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, generator.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, input.Schema)
}

func buildMessages(input port.GenerateInput) ([]map[string]interface{}, string) {
	var messages []map[string]interface{}
	var systemText string

	for _, msg := range input.Messages {
		if msg.Role == port.RoleSystem {
			for _, p := range msg.Parts {
				systemText += p.Text
			}
			continue
		}

		var blocks []map[string]interface{}
		for _, p := range msg.Parts {
			if p.Image != nil {
				blocks = append(blocks, map[string]interface{}{
					"type": "image",
					"source": map[string]interface{}{
						"type":       "base64",
						"media_type": p.Image.MimeType,
						"data":       p.Image.Base64,
					},
				})
			}
			if p.Text != "" {
				blocks = append(blocks, map[string]interface{}{
					"type": "text",
					"text": p.Text,
				})
			}
		}
		messages = append(messages, map[string]interface{}{
			"role":    "user",
			"content": blocks,
		})
	}

	if schemaJSON, err := json.Marshal(input.Schema); err == nil && len(messages) > 0 {
		last := messages[len(messages)-1]
		blocks := last["content"].([]map[string]interface{})
		last["content"] = append(blocks, map[string]interface{}{
			"type": "text",
			"text": "Respond with a single JSON value conforming exactly to this JSON Schema, with no markdown fences:\n" + string(schemaJSON),
		})
	}

	return messages, systemText
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, schema map[string]any) (json.RawMessage, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}
	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	text := generator.StripCodeFences(resp.Content[0].Text)
	if err := generator.ValidateAgainstSchema(schema, []byte(text)); err != nil {
		return nil, err
	}
	return json.RawMessage(text), nil
}
