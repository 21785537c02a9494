package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const defaultDeepSeekModel = "deepseek-chat"

// DeepSeekClient calls the OpenAI-compatible chat completions endpoint.
type DeepSeekClient struct {
	baseURL string
	apiKey  string
	model   string
	hc      *http.Client
}

func NewDeepSeekClient(baseURL, apiKey, model string, hc *http.Client) *DeepSeekClient {
	if model == "" {
		model = defaultDeepSeekModel
	}
	return &DeepSeekClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  CleanAPIKey(apiKey),
		model:   model,
		hc:      hc,
	}
}

func (c *DeepSeekClient) WithModel(model string) *DeepSeekClient {
	model = strings.TrimSpace(model)
	if model == "" || model == c.model {
		return c
	}
	clone := *c
	clone.model = model
	return &clone
}

func (c *DeepSeekClient) Name() string { return DeepSeek }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate ignores structured; the prompts already demand JSON and the
// endpoint's JSON mode rejects top-level arrays.
func (c *DeepSeekClient) Generate(ctx context.Context, systemPrompt, userPrompt string, structured bool) (string, error) {
	if c.apiKey == "" {
		return "", configError(DeepSeek, "DeepSeek API key is missing or invalid")
	}

	var out chatResponse
	err := postJSON(ctx, c.hc, DeepSeek, c.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.apiKey},
		chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: userPrompt},
			},
		}, &out)
	if err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", parseError(DeepSeek, errors.New("empty choices in response"))
	}
	return out.Choices[0].Message.Content, nil
}
