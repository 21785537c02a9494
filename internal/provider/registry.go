package provider

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/config"
)

// Selection is the provider choice for one learner. Empty fields fall back
// to the server defaults.
type Selection struct {
	TextProvider  string
	TTSProvider   string
	GeminiModel   string
	DeepSeekModel string
	QwenTTSModel  string
}

// Registry holds one client per vendor and resolves learner selections.
type Registry struct {
	defaults Selection
	gemini   *GeminiClient
	deepseek *DeepSeekClient
	qwen     *QwenClient
	log      zerolog.Logger
}

func NewRegistry(cfg config.ProviderConfig, log zerolog.Logger) *Registry {
	hc := &http.Client{Timeout: cfg.Timeout}
	r := &Registry{
		defaults: Selection{
			TextProvider:  strings.ToUpper(cfg.TextProvider),
			TTSProvider:   strings.ToUpper(cfg.TTSProvider),
			GeminiModel:   cfg.GeminiModel,
			DeepSeekModel: cfg.DeepSeekModel,
			QwenTTSModel:  cfg.QwenTTSModel,
		},
		gemini:   NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiKey, cfg.GeminiModel, cfg.GeminiTTSModel, hc),
		deepseek: NewDeepSeekClient(cfg.DeepSeekURL, cfg.DeepSeekKey, cfg.DeepSeekModel, hc),
		qwen:     NewQwenClient(cfg.QwenBaseURL, cfg.QwenKey, cfg.QwenTTSModel, hc),
		log:      log.With().Str("component", "provider_registry").Logger(),
	}
	r.log.Info().
		Str("text_provider", r.defaults.TextProvider).
		Str("tts_provider", r.defaults.TTSProvider).
		Bool("gemini_key", r.gemini.apiKey != "").
		Bool("deepseek_key", r.deepseek.apiKey != "").
		Bool("qwen_key", r.qwen.apiKey != "").
		Msg("AI providers configured")
	return r
}

// Defaults returns the server-wide selection.
func (r *Registry) Defaults() Selection { return r.defaults }

// Resolve overlays non-empty fields of sel on the defaults.
func (r *Registry) Resolve(sel Selection) Selection {
	out := r.defaults
	if v := strings.ToUpper(strings.TrimSpace(sel.TextProvider)); v != "" {
		out.TextProvider = v
	}
	if v := strings.ToUpper(strings.TrimSpace(sel.TTSProvider)); v != "" {
		out.TTSProvider = v
	}
	if v := strings.TrimSpace(sel.GeminiModel); v != "" {
		out.GeminiModel = v
	}
	if v := strings.TrimSpace(sel.DeepSeekModel); v != "" {
		out.DeepSeekModel = v
	}
	if v := strings.TrimSpace(sel.QwenTTSModel); v != "" {
		out.QwenTTSModel = v
	}
	return out
}

// Text returns the text generator for sel.
func (r *Registry) Text(sel Selection) (TextGenerator, error) {
	sel = r.Resolve(sel)
	switch sel.TextProvider {
	case Gemini:
		return r.gemini.WithModel(sel.GeminiModel), nil
	case DeepSeek:
		return r.deepseek.WithModel(sel.DeepSeekModel), nil
	default:
		return nil, configError(sel.TextProvider, "unknown text provider")
	}
}

// Speech returns the speech synthesizer for sel.
func (r *Registry) Speech(sel Selection) (SpeechSynthesizer, error) {
	sel = r.Resolve(sel)
	switch sel.TTSProvider {
	case Gemini:
		return r.gemini, nil
	case Qwen:
		return r.qwen.WithModel(sel.QwenTTSModel), nil
	default:
		return nil, configError(sel.TTSProvider, "unknown speech provider")
	}
}
