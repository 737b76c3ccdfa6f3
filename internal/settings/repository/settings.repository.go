package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lexivo/internal/settings/model"
	"lexivo/pkg/logger"
)

type SettingsRepository struct {
	DB *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

// Get returns the stored row, or nil when the user has never saved settings.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*model.Settings, error) {
	s := model.Settings{UserID: userID}
	var prefs, notifications []byte
	var updatedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx,
		`SELECT preferences, notification_settings, updated_at FROM user_settings WHERE user_id = $1`, userID).
		Scan(&prefs, &notifications, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get settings for user %s: %v", userID, err)
		return nil, err
	}
	s.Preferences = prefs
	s.NotificationSettings = notifications
	if updatedAt.Valid {
		s.UpdatedAt = &updatedAt.Time
	}
	return &s, nil
}

// Upsert writes the given blobs. A nil blob leaves the stored column as it is
// and defaults to an empty object on first insert.
func (r *SettingsRepository) Upsert(ctx context.Context, userID string, prefs, notifications []byte) (*model.Settings, error) {
	var storedPrefs, storedNotifications []byte
	var updatedAt time.Time
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO user_settings (user_id, preferences, notification_settings, updated_at)
		VALUES ($1, COALESCE($2::jsonb, '{}'::jsonb), COALESCE($3::jsonb, '{}'::jsonb), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			preferences = COALESCE($2::jsonb, user_settings.preferences),
			notification_settings = COALESCE($3::jsonb, user_settings.notification_settings),
			updated_at = NOW()
		RETURNING preferences, notification_settings, updated_at`,
		userID, nullableJSON(prefs), nullableJSON(notifications)).
		Scan(&storedPrefs, &storedNotifications, &updatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to save settings for user %s: %v", userID, err)
		return nil, err
	}
	return &model.Settings{
		UserID:               userID,
		Preferences:          storedPrefs,
		NotificationSettings: storedNotifications,
		UpdatedAt:            &updatedAt,
	}, nil
}

func nullableJSON(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
