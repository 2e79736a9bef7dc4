package gemini

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

const apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Generator implements port.StructuredGenerator using Google's Gemini API.
// Gemini is asked for JSON output via responseMimeType; conformance is
// enforced locally against the request schema.
type Generator struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGenerator creates a Gemini-based structured generator.
func NewGenerator(cfg *config.GeneratorProviderConfig) *Generator {
	return newGenerator(cfg, "")
}

// NewGeneratorWithEndpoint creates a generator pointing at a custom API endpoint (for testing).
func NewGeneratorWithEndpoint(cfg *config.GeneratorProviderConfig, endpoint string) *Generator {
	return newGenerator(cfg, endpoint)
}

func newGenerator(cfg *config.GeneratorProviderConfig, endpoint string) *Generator {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Generator{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (json.RawMessage, error) {
	contents, systemText := buildContents(input)

	reqBody := map[string]interface{}{
		"contents": contents,
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  16384,
		},
	}
	if systemText != "" {
		reqBody["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]interface{}{
				{"text": systemText},
			},
		}
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
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := generator.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, generator.NewRateLimitError("gemini", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, input.Schema)
}

// buildContents converts messages to Gemini contents. The system message is
// pulled out into a systemInstruction; the schema the output must follow is
// appended to the last user message so the model sees it. Conformance is
// still checked locally.
func buildContents(input port.GenerateInput) ([]map[string]interface{}, string) {
	var contents []map[string]interface{}
	var systemText string

	for _, msg := range input.Messages {
		if msg.Role == port.RoleSystem {
			for _, p := range msg.Parts {
				systemText += p.Text
			}
			continue
		}

		var parts []map[string]interface{}
		for _, p := range msg.Parts {
			if p.Image != nil {
				parts = append(parts, map[string]interface{}{
					"inline_data": map[string]interface{}{
						"mime_type": p.Image.MimeType,
						"data":      p.Image.Base64,
					},
				})
			}
			if p.Text != "" {
				parts = append(parts, map[string]interface{}{
					"text": p.Text,
				})
			}
		}
		contents = append(contents, map[string]interface{}{
			"role":  "user",
			"parts": parts,
		})
	}

	if schemaJSON, err := json.Marshal(input.Schema); err == nil && len(contents) > 0 {
		last := contents[len(contents)-1]
		parts := last["parts"].([]map[string]interface{})
		last["parts"] = append(parts, map[string]interface{}{
			"text": "Respond with a single JSON value conforming exactly to this JSON Schema:\n" + string(schemaJSON),
		})
	}

	return contents, systemText
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, schema map[string]any) (json.RawMessage, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from API: no parts")
	}

	text := generator.StripCodeFences(resp.Candidates[0].Content.Parts[0].Text)
	if err := generator.ValidateAgainstSchema(schema, []byte(text)); err != nil {
		return nil, err
	}
	return json.RawMessage(text), nil
}
