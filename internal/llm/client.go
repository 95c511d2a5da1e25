package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	openAIURL    = "https://api.openai.com/v1/chat/completions"
	anthropicURL = "https://api.anthropic.com/v1/messages"

	anthropicMaxTokens = 5000
)

// Friendly model names routed to each provider. The pipeline config speaks
// these names so a stage can be repointed without touching provider ids.
var gptModels = map[string]string{
	"gpt-4.1":      "gpt-4.1",
	"gpt-4.1-mini": "gpt-4.1-mini",
	"gpt-5":        "gpt-5",
	"gpt-5-mini":   "gpt-5-mini",
}

var claudeModels = map[string]string{
	"claude-4.5-sonnet": "claude-sonnet-4-5",
	"claude-4.5-haiku":  "claude-haiku-4-5",
	"claude-4.5-opus":   "claude-opus-4-5",
}

// Part is one element of a multimodal prompt: either text or a JPEG image.
type Part struct {
	Text     string
	ImageB64 string
}

func TextPart(s string) Part {
	return Part{Text: s}
}

// ImagePart wraps raw JPEG bytes as a base64 image part.
func ImagePart(jpeg []byte) Part {
	return Part{ImageB64: base64.StdEncoding.EncodeToString(jpeg)}
}

// Schema is a provider-enforced structured-output contract. Only OpenAI
// supports it; the Anthropic route ignores it and relies on prompt discipline.
type Schema struct {
	Name   string
	Schema json.RawMessage
}

// Caller is the model-call contract every pipeline stage depends on.
type Caller interface {
	Complete(ctx context.Context, parts []Part, model string, schema *Schema) (string, error)
}

type Client struct {
	openAIKey    string
	anthropicKey string
	openAIURL    string
	anthropicURL string
	client       *http.Client
}

func NewClient(openAIKey, anthropicKey string) *Client {
	return &Client{
		openAIKey:    openAIKey,
		anthropicKey: anthropicKey,
		openAIURL:    openAIURL,
		anthropicURL: anthropicURL,
		client:       &http.Client{Timeout: 300 * time.Second},
	}
}

// SetTestTransport points both provider endpoints at a test server.
func (c *Client) SetTestTransport(baseURL string) {
	c.openAIURL = baseURL
	c.anthropicURL = baseURL
}

// Complete routes the prompt to the provider owning the friendly model name
// and returns the text of the first response block.
func (c *Client) Complete(ctx context.Context, parts []Part, model string, schema *Schema) (string, error) {
	if id, ok := gptModels[model]; ok {
		return c.completeOpenAI(ctx, parts, id, schema)
	}
	if id, ok := claudeModels[model]; ok {
		return c.completeAnthropic(ctx, parts, id)
	}
	return "", fmt.Errorf("model %q not supported", model)
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	ResponseFormat any             `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content []any  `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openAIError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) completeOpenAI(ctx context.Context, parts []Part, model string, schema *Schema) (string, error) {
	content := make([]any, 0, len(parts))
	for _, p := range parts {
		if p.ImageB64 != "" {
			content = append(content, map[string]any{
				"type": "image_url",
				"image_url": map[string]string{
					"url": "data:image/jpeg;base64," + p.ImageB64,
				},
			})
			continue
		}
		content = append(content, map[string]any{"type": "text", "text": p.Text})
	}

	reqBody := openAIRequest{
		Model:    model,
		Messages: []openAIMessage{{Role: "user", Content: content}},
	}
	if schema != nil {
		reqBody.ResponseFormat = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schema.Name,
				"strict": true,
				"schema": schema.Schema,
			},
		}
	}

	respBody, err := c.post(ctx, c.openAIURL, reqBody, map[string]string{
		"Authorization": "Bearer " + c.openAIKey,
	})
	if err != nil {
		return "", err
	}

	var apiResp openAIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response choices")
	}
	return apiResp.Choices[0].Message.Content, nil
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content []any  `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (c *Client) completeAnthropic(ctx context.Context, parts []Part, model string) (string, error) {
	content := make([]any, 0, len(parts))
	for _, p := range parts {
		if p.ImageB64 != "" {
			content = append(content, map[string]any{
				"type": "image",
				"source": map[string]string{
					"type":       "base64",
					"media_type": "image/jpeg",
					"data":       p.ImageB64,
				},
			})
			continue
		}
		content = append(content, map[string]any{"type": "text", "text": p.Text})
	}

	reqBody := anthropicRequest{
		Model:     model,
		MaxTokens: anthropicMaxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: content}},
	}

	respBody, err := c.post(ctx, c.anthropicURL, reqBody, map[string]string{
		"x-api-key":         c.anthropicKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		return "", err
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response content")
	}
	return apiResp.Content[0].Text, nil
}

func (c *Client) post(ctx context.Context, url string, reqBody any, headers map[string]string) ([]byte, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp openAIError
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("api error %d (%s): %s", resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
