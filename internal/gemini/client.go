// Package gemini is a minimal client for the Generative Language REST API.
// The client is constructed once with its credentials and passed by
// reference; nothing here is process-global.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/taskhub-dev/taskhub/internal/reports"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GenerationConfig mirrors the API's generationConfig object.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationConfig matches the deployment this service reports for.
var DefaultGenerationConfig = GenerationConfig{
	Temperature:     1,
	TopP:            0.95,
	TopK:            40,
	MaxOutputTokens: 8192,
}

type Client struct {
	apiKey     string
	model      string
	baseURL    string
	config     GenerationConfig
	httpClient *http.Client
}

func NewClient(apiKey, model string, config GenerationConfig) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		config:     config,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL points the client at a different endpoint. Tests use it with
// httptest servers.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Summarize sends prompt as the newest user turn, preceded by the replayed
// history, and returns the model's text. A non-empty config overrides the
// client's generation config for this call only.
func (c *Client) Summarize(ctx context.Context, systemInstruction string, config json.RawMessage, history []reports.Exchange, prompt string) (string, error) {
	generation := c.config

	if len(config) > 0 {
		if err := json.Unmarshal(config, &generation); err != nil {
			return "", fmt.Errorf("invalid generation config: %w", err)
		}
	}

	contents := make([]content, 0, len(history)*2+1)

	for _, exchange := range history {
		contents = append(contents,
			content{Role: "user", Parts: []part{{Text: exchange.Prompt}}},
			content{Role: "model", Parts: []part{{Text: exchange.Response}}},
		)
	}

	contents = append(contents, content{Role: "user", Parts: []part{{Text: prompt}}})

	payload := generateRequest{
		Contents:         contents,
		GenerationConfig: generation,
	}

	if systemInstruction != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: systemInstruction}}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal Gemini payload: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("Gemini returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed generateResponse

	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode Gemini response: %w", err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("Gemini error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("Gemini returned no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
