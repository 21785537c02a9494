package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanAPIKey(t *testing.T) {
	require.Equal(t, "sk-abc", CleanAPIKey("  sk-abc\u200b\n"))
	require.Equal(t, "", CleanAPIKey("密钥"))
}

func TestGemini_GenerateStructured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("x-goog-api-key"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gen := body["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", gen["responseMimeType"])
		sys := body["systemInstruction"].(map[string]any)["parts"].([]any)[0].(map[string]any)
		assert.Equal(t, "sys", sys["text"])

		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"[1,"},{"text":"2]"}]}}]}`)
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "key-1", "gemini-test", "", srv.Client())
	out, err := c.Generate(context.Background(), "sys", "user", true)
	require.NoError(t, err)
	require.Equal(t, "[1,2]", out)
}

func TestGemini_MissingKeyFailsBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, " ", "", "", srv.Client())
	_, err := c.Generate(context.Background(), "s", "u", false)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindConfig, kind)
	require.False(t, called)
}

func TestGemini_SynthesizeDialogueUsesTwoSpeakers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "tts-model")
		var body geminiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"AUDIO"}, body.GenerationConfig.ResponseModalities)
		assert.NotNil(t, body.GenerationConfig.SpeechConfig.MultiSpeakerVoiceConfig)
		voices := body.GenerationConfig.SpeechConfig.MultiSpeakerVoiceConfig.SpeakerVoiceConfigs
		assert.Equal(t, "Kore", voices[0].VoiceConfig.PrebuiltVoiceConfig.VoiceName)
		assert.Equal(t, "Fenrir", voices[1].VoiceConfig.PrebuiltVoiceConfig.VoiceName)

		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"audio/L16;rate=24000","data":"AAEC"}}]}}]}`)
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "k", "", "tts-model", srv.Client())
	out, err := c.Synthesize(context.Background(), "A: 안녕하세요\nB: 네, 안녕하세요")
	require.NoError(t, err)
	require.Equal(t, "AAEC", out)
}

func TestGemini_SynthesizeTextInsteadOfAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body geminiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotNil(t, body.GenerationConfig.SpeechConfig.VoiceConfig)
		assert.Nil(t, body.GenerationConfig.SpeechConfig.MultiSpeakerVoiceConfig)
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"I cannot do that"}]}}]}`)
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "k", "", "", srv.Client())
	_, err := c.Synthesize(context.Background(), "안녕하세요")

	var pe *Error
	require.ErrorAs(t, err, &pe)
	require.Equal(t, KindProvider, pe.Kind)
	require.Equal(t, "I cannot do that", pe.Body)
}

func TestDeepSeek_StatusErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer ds-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer srv.Close()

	c := NewDeepSeekClient(srv.URL, "ds-key", "", srv.Client())
	_, err := c.Generate(context.Background(), "s", "u", true)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	require.Equal(t, KindProvider, pe.Kind)
	require.Equal(t, http.StatusTooManyRequests, pe.HTTPStatusCode())
	require.Contains(t, pe.Body, "rate limited")
}

func TestDeepSeek_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "deepseek-reasoner", body.Model)
		assert.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"안녕"}}]}`)
	}))
	defer srv.Close()

	c := NewDeepSeekClient(srv.URL, "k", "", srv.Client()).WithModel("deepseek-reasoner")
	out, err := c.Generate(context.Background(), "s", "u", false)
	require.NoError(t, err)
	require.Equal(t, "안녕", out)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewDeepSeekClient(url, "k", "", &http.Client{Timeout: time.Second})
	_, err := c.Generate(context.Background(), "s", "u", false)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	require.Equal(t, KindTransport, pe.Kind)
	require.NotEmpty(t, pe.Hint)
}

func TestQwen_DownloadsAudioURL(t *testing.T) {
	audio := []byte("ID3fake-mp3-bytes")
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc(qwenGenerationPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "disable", r.Header.Get("X-DashScope-SSE"))
		var body qwenRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sohee", body.Parameters.Voice)
		assert.Equal(t, "Korean", body.Parameters.LanguageType)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"output": map[string]any{
				"choices": []any{map[string]any{
					"message": map[string]any{"content": []any{map[string]any{"audio": srv.URL + "/files/a.mp3"}}},
				}},
			},
		})
	})
	mux.HandleFunc("/files/a.mp3", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(audio)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := NewQwenClient(srv.URL, "k", "", srv.Client())
	out, err := c.Synthesize(context.Background(), "안녕하세요")
	require.NoError(t, err)
	require.Equal(t, base64.StdEncoding.EncodeToString(audio), out)
}

func TestQwen_MissingURLIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"output":{}}`)
	}))
	defer srv.Close()

	_, err := NewQwenClient(srv.URL, "k", "", srv.Client()).Synthesize(context.Background(), "x")
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindParse, kind)
}

func TestRegistry_ResolvesSelection(t *testing.T) {
	r := NewRegistry(config.ProviderConfig{
		TextProvider: "gemini",
		TTSProvider:  "GEMINI",
		GeminiKey:    "g",
		Timeout:      time.Second,
	}, zerolog.Nop())

	tg, err := r.Text(Selection{})
	require.NoError(t, err)
	require.Equal(t, Gemini, tg.Name())

	tg, err = r.Text(Selection{TextProvider: "deepseek", DeepSeekModel: "deepseek-reasoner"})
	require.NoError(t, err)
	require.Equal(t, DeepSeek, tg.Name())
	require.Equal(t, "deepseek-reasoner", tg.(*DeepSeekClient).model)

	ss, err := r.Speech(Selection{TTSProvider: "qwen"})
	require.NoError(t, err)
	require.Equal(t, Qwen, ss.Name())

	_, err = r.Text(Selection{TextProvider: "other"})
	kind, _ := KindOf(err)
	require.Equal(t, KindConfig, kind)
}

func TestIsDialogue(t *testing.T) {
	require.True(t, isDialogue("A: 안녕\nB: 네"))
	require.True(t, isDialogue("A：你好\nB：好"))
	require.False(t, isDialogue("A: 혼자"))
}
