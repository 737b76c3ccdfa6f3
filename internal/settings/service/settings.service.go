package service

import (
	"bytes"
	"context"
	"encoding/json"

	"lexivo/internal/settings/model"
	"lexivo/internal/settings/repository"
	"lexivo/pkg/apperr"
)

var emptyObject = json.RawMessage(`{}`)

type SettingsService struct {
	Repo *repository.SettingsRepository
}

func NewSettingsService(repo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{Repo: repo}
}

// GetSettings returns the stored settings or empty defaults.
func (s *SettingsService) GetSettings(ctx context.Context, userID string) (*model.Settings, error) {
	settings, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return &model.Settings{UserID: userID, Preferences: emptyObject, NotificationSettings: emptyObject}, nil
	}
	return settings, nil
}

func (s *SettingsService) UpdateSettings(ctx context.Context, userID string, req model.UpdateSettingsRequest) (*model.Settings, error) {
	prefs, err := objectOrNil(req.Preferences, "preferences")
	if err != nil {
		return nil, err
	}
	notifications, err := objectOrNil(req.NotificationSettings, "notification_settings")
	if err != nil {
		return nil, err
	}
	if prefs == nil && notifications == nil {
		return nil, apperr.Validation("preferences or notification_settings is required")
	}
	return s.Repo.Upsert(ctx, userID, prefs, notifications)
}

// objectOrNil treats a missing or null blob as "keep the stored value" and
// rejects anything that is not a JSON object.
func objectOrNil(raw json.RawMessage, field string) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var obj map[string]any
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &obj) != nil {
		return nil, apperr.Validation("%s must be a JSON object", field)
	}
	return trimmed, nil
}
