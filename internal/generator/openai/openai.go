package openai

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

const apiURL = "https://api.openai.com/v1/chat/completions"

// Generator implements port.StructuredGenerator using the OpenAI Chat
// Completions API with json_schema structured outputs.
type Generator struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGenerator creates an OpenAI-based structured generator from a provider config.
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
		model = "gpt-4o"
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
	schemaName := input.SchemaName
	if schemaName == "" {
		schemaName = "output"
	}

	reqBody := map[string]interface{}{
		"model":                 g.model,
		"max_completion_tokens": 16384,
		"messages":              buildMessages(input.Messages),
		"response_format": map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   schemaName,
				"schema": input.Schema,
				"strict": false,
			},
		},
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
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := generator.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, generator.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, input.Schema)
}

func buildMessages(messages []port.Message) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == port.RoleSystem {
			// System messages are always plain text.
			var text string
			for _, p := range msg.Parts {
				text += p.Text
			}
			out = append(out, map[string]interface{}{
				"role":    "system",
				"content": text,
			})
			continue
		}

		var blocks []map[string]interface{}
		for _, p := range msg.Parts {
			if p.Image != nil {
				dataURI := fmt.Sprintf("data:%s;base64,%s", p.Image.MimeType, p.Image.Base64)
				blocks = append(blocks, map[string]interface{}{
					"type": "image_url",
					"image_url": map[string]interface{}{
						"url": dataURI,
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
		out = append(out, map[string]interface{}{
			"role":    "user",
			"content": blocks,
		})
	}
	return out
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, schema map[string]any) (json.RawMessage, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	text := generator.StripCodeFences(resp.Choices[0].Message.Content)
	if err := generator.ValidateAgainstSchema(schema, []byte(text)); err != nil {
		return nil, err
	}
	return json.RawMessage(text), nil
}
