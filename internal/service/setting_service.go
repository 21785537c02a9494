package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/hanyu-backend/internal/model"
	"github.com/stemsi/hanyu-backend/internal/provider"
)

var ErrInvalidSetting = errors.New("invalid setting value")

// SettingStore is the preference persistence used by SettingService.
type SettingStore interface {
	GetAll(ctx context.Context, learnerID uuid.UUID) ([]model.LearnerSetting, error)
	UpsertMany(ctx context.Context, learnerID uuid.UUID, values map[string]string) error
}

type SettingService struct {
	settingRepo SettingStore
	log         zerolog.Logger
}

func NewSettingService(settingRepo SettingStore, log zerolog.Logger) *SettingService {
	return &SettingService{
		settingRepo: settingRepo,
		log:         log.With().Str("component", "setting_service").Logger(),
	}
}

func (s *SettingService) GetAllSettings(ctx context.Context, learnerID uuid.UUID) (map[string]string, error) {
	settingsList, err := s.settingRepo.GetAll(ctx, learnerID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get all settings")
		return nil, err
	}

	settingsMap := make(map[string]string)
	for _, setting := range settingsList {
		settingsMap[setting.Key] = setting.Value
	}
	return settingsMap, nil
}

// UpdateSettings validates provider names and writes all values at once.
// An empty value resets the key to the server default.
func (s *SettingService) UpdateSettings(ctx context.Context, learnerID uuid.UUID, settingsMap map[string]string) error {
	clean := make(map[string]string, len(settingsMap))
	for key, value := range settingsMap {
		value = strings.TrimSpace(value)
		switch key {
		case model.SettingTextProvider:
			value = strings.ToUpper(value)
			if value != "" && value != provider.Gemini && value != provider.DeepSeek {
				return fmt.Errorf("%w: %s=%s", ErrInvalidSetting, key, value)
			}
		case model.SettingTTSProvider:
			value = strings.ToUpper(value)
			if value != "" && value != provider.Gemini && value != provider.Qwen {
				return fmt.Errorf("%w: %s=%s", ErrInvalidSetting, key, value)
			}
		}
		clean[key] = value
	}

	if err := s.settingRepo.UpsertMany(ctx, learnerID, clean); err != nil {
		s.log.Error().Err(err).Msg("failed to update settings")
		return err
	}
	return nil
}

// Selection returns the learner's provider choice. Lookup failures fall back
// to the server defaults.
func (s *SettingService) Selection(ctx context.Context, learnerID uuid.UUID) provider.Selection {
	settings, err := s.GetAllSettings(ctx, learnerID)
	if err != nil {
		return provider.Selection{}
	}
	return provider.Selection{
		TextProvider:  settings[model.SettingTextProvider],
		TTSProvider:   settings[model.SettingTTSProvider],
		GeminiModel:   settings[model.SettingGeminiModel],
		DeepSeekModel: settings[model.SettingDeepSeekModel],
		QwenTTSModel:  settings[model.SettingQwenTTSModel],
	}
}
