package model

import "time"

// LearnerSetting is a single key/value preference row.
type LearnerSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preference keys accepted by the settings endpoint.
const (
	SettingTextProvider  = "text_provider"
	SettingTTSProvider   = "tts_provider"
	SettingGeminiModel   = "gemini_model"
	SettingDeepSeekModel = "deepseek_model"
	SettingQwenTTSModel  = "qwen_tts_model"
)

// UpdateSettingsRequest is the payload for updating learner preferences.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required,dive,keys,oneof=text_provider tts_provider gemini_model deepseek_model qwen_tts_model,endkeys,max=100"`
}
