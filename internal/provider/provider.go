// Package provider talks to the hosted text and speech models.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Provider identifiers as stored in config and learner settings.
const (
	Gemini   = "GEMINI"
	DeepSeek = "DEEPSEEK"
	Qwen     = "QWEN"
)

// TextGenerator produces text for a system/user prompt pair. When
// structured is set the model is asked for JSON output where supported.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, userPrompt string, structured bool) (string, error)
}

// SpeechSynthesizer turns text into base64 audio of unspecified encoding.
type SpeechSynthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string) (string, error)
}

// CleanAPIKey strips non-ASCII characters and surrounding whitespace that
// sneak in when keys are pasted.
func CleanAPIKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// postJSON sends body and decodes a 2xx JSON response into out.
func postJSON(ctx context.Context, hc *http.Client, provider, url string, headers map[string]string, body, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return parseError(provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return configError(provider, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	raw, err := do(hc, provider, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return parseError(provider, err)
	}
	return nil
}

// fetch downloads a URL and returns the body.
func fetch(ctx context.Context, hc *http.Client, provider, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, parseError(provider, err)
	}
	return do(hc, provider, req)
}

func do(hc *http.Client, provider string, req *http.Request) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, transportError(provider, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, transportError(provider, readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(provider, resp.StatusCode, raw)
	}
	return raw, nil
}
