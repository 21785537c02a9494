package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	defaultGeminiModel    = "gemini-3-flash-preview"
	defaultGeminiTTSModel = "gemini-2.5-flash-preview-tts"
	geminiVoice           = "Kore"
	geminiSecondVoice     = "Fenrir"
)

// GeminiClient implements both text generation and speech synthesis.
type GeminiClient struct {
	baseURL  string
	apiKey   string
	model    string
	ttsModel string
	hc       *http.Client
}

func NewGeminiClient(baseURL, apiKey, model, ttsModel string, hc *http.Client) *GeminiClient {
	if model == "" {
		model = defaultGeminiModel
	}
	if ttsModel == "" {
		ttsModel = defaultGeminiTTSModel
	}
	return &GeminiClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   CleanAPIKey(apiKey),
		model:    model,
		ttsModel: ttsModel,
		hc:       hc,
	}
}

// WithModel returns a copy using model for text generation. An empty model
// returns the receiver unchanged.
func (c *GeminiClient) WithModel(model string) *GeminiClient {
	model = strings.TrimSpace(model)
	if model == "" || model == c.model {
		return c
	}
	clone := *c
	clone.model = model
	return &clone
}

func (c *GeminiClient) Name() string { return Gemini }

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiVoiceConfig struct {
	PrebuiltVoiceConfig struct {
		VoiceName string `json:"voiceName"`
	} `json:"prebuiltVoiceConfig"`
}

type geminiSpeakerVoice struct {
	Speaker     string            `json:"speaker"`
	VoiceConfig geminiVoiceConfig `json:"voiceConfig"`
}

type geminiMultiSpeaker struct {
	SpeakerVoiceConfigs []geminiSpeakerVoice `json:"speakerVoiceConfigs"`
}

type geminiSpeechConfig struct {
	VoiceConfig             *geminiVoiceConfig  `json:"voiceConfig,omitempty"`
	MultiSpeakerVoiceConfig *geminiMultiSpeaker `json:"multiSpeakerVoiceConfig,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType   string              `json:"responseMimeType,omitempty"`
	ResponseModalities []string            `json:"responseModalities,omitempty"`
	SpeechConfig       *geminiSpeechConfig `json:"speechConfig,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func voice(name string) geminiVoiceConfig {
	var v geminiVoiceConfig
	v.PrebuiltVoiceConfig.VoiceName = name
	return v
}

func (c *GeminiClient) call(ctx context.Context, model string, body geminiRequest) (geminiResponse, error) {
	var out geminiResponse
	if c.apiKey == "" {
		return out, configError(Gemini, "Gemini API key is missing or invalid")
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model)
	err := postJSON(ctx, c.hc, Gemini, url, map[string]string{"x-goog-api-key": c.apiKey}, body, &out)
	return out, err
}

func (c *GeminiClient) Generate(ctx context.Context, systemPrompt, userPrompt string, structured bool) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: userPrompt}}}},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	}
	if structured {
		req.GenerationConfig = &geminiGenerationConfig{ResponseMimeType: "application/json"}
	}

	resp, err := c.call(ctx, c.model, req)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", parseError(Gemini, errors.New("no candidates in response"))
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", parseError(Gemini, errors.New("empty text in response"))
	}
	return b.String(), nil
}

// Synthesize returns inline audio. Text containing both A and B speaker
// labels is voiced by two speakers.
func (c *GeminiClient) Synthesize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", configError(Gemini, "text is empty")
	}

	speech := &geminiSpeechConfig{}
	if isDialogue(text) {
		speech.MultiSpeakerVoiceConfig = &geminiMultiSpeaker{
			SpeakerVoiceConfigs: []geminiSpeakerVoice{
				{Speaker: "A", VoiceConfig: voice(geminiVoice)},
				{Speaker: "B", VoiceConfig: voice(geminiSecondVoice)},
			},
		}
	} else {
		v := voice(geminiVoice)
		speech.VoiceConfig = &v
	}

	resp, err := c.call(ctx, c.ttsModel, geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: text}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig:       speech,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", parseError(Gemini, errors.New("no audio data received"))
	}

	part := resp.Candidates[0].Content.Parts[0]
	if part.InlineData == nil || part.InlineData.Data == "" {
		if part.Text != "" {
			return "", &Error{Kind: KindProvider, Provider: Gemini, Status: http.StatusOK, Body: part.Text,
				Err: errors.New("returned text instead of audio")}
		}
		return "", parseError(Gemini, errors.New("no audio data received"))
	}
	return part.InlineData.Data, nil
}

func isDialogue(text string) bool {
	hasA := strings.Contains(text, "A:") || strings.Contains(text, "A：")
	hasB := strings.Contains(text, "B:") || strings.Contains(text, "B：")
	return hasA && hasB
}
