package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

const (
	defaultQwenTTSModel = "qwen3-tts-flash-2025-11-27"
	qwenVoice           = "sohee"
	qwenLanguage        = "Korean"
	qwenGenerationPath  = "/api/v1/services/aigc/multimodal-generation/generation"
)

// QwenClient synthesises speech through DashScope. The API answers with a
// short-lived URL which is downloaded immediately.
type QwenClient struct {
	baseURL string
	apiKey  string
	model   string
	hc      *http.Client
}

func NewQwenClient(baseURL, apiKey, model string, hc *http.Client) *QwenClient {
	if model == "" {
		model = defaultQwenTTSModel
	}
	return &QwenClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  CleanAPIKey(apiKey),
		model:   model,
		hc:      hc,
	}
}

func (c *QwenClient) WithModel(model string) *QwenClient {
	model = strings.TrimSpace(model)
	if model == "" || model == c.model {
		return c
	}
	clone := *c
	clone.model = model
	return &clone
}

func (c *QwenClient) Name() string { return Qwen }

type qwenRequest struct {
	Model string `json:"model"`
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Parameters struct {
		Voice        string `json:"voice"`
		LanguageType string `json:"language_type"`
	} `json:"parameters"`
}

type qwenResponse struct {
	Output struct {
		Audio *struct {
			URL string `json:"url"`
		} `json:"audio"`
		Choices []struct {
			Message struct {
				Content []struct {
					Audio string `json:"audio"`
				} `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
}

func (r qwenResponse) audioURL() string {
	if r.Output.Audio != nil && r.Output.Audio.URL != "" {
		return r.Output.Audio.URL
	}
	if len(r.Output.Choices) > 0 && len(r.Output.Choices[0].Message.Content) > 0 {
		return r.Output.Choices[0].Message.Content[0].Audio
	}
	return ""
}

func (c *QwenClient) Synthesize(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		return "", configError(Qwen, "Qwen (DashScope) API key is required for speech")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", configError(Qwen, "text is empty")
	}

	var req qwenRequest
	req.Model = c.model
	req.Input.Text = text
	req.Parameters.Voice = qwenVoice
	req.Parameters.LanguageType = qwenLanguage

	var out qwenResponse
	err := postJSON(ctx, c.hc, Qwen, c.baseURL+qwenGenerationPath, map[string]string{
		"Authorization":   "Bearer " + c.apiKey,
		"X-DashScope-SSE": "disable",
	}, req, &out)
	if err != nil {
		return "", err
	}

	url := out.audioURL()
	if url == "" {
		return "", parseError(Qwen, errors.New("no audio URL found in response"))
	}
	audio, err := fetch(ctx, c.hc, Qwen, url)
	if err != nil {
		return "", err
	}
	if len(audio) == 0 {
		return "", parseError(Qwen, errors.New("downloaded audio is empty"))
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}
