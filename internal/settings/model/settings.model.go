package model

import (
	"encoding/json"
	"time"
)

// Settings holds per-user JSON blobs. The server does not interpret them.
type Settings struct {
	UserID               string          `json:"user_id"`
	Preferences          json.RawMessage `json:"preferences"`
	NotificationSettings json.RawMessage `json:"notification_settings"`
	UpdatedAt            *time.Time      `json:"updated_at"`
}

// UpdateSettingsRequest is partial; an omitted blob keeps its stored value.
type UpdateSettingsRequest struct {
	Preferences          json.RawMessage `json:"preferences"`
	NotificationSettings json.RawMessage `json:"notification_settings"`
}
