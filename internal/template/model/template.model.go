package model

import (
	"encoding/json"
	"time"
)

// Template is a brand voice preset. A nil UserID marks a system template.
type Template struct {
	ID           string          `json:"id"`
	UserID       *string         `json:"user_id,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	IsPublic     bool            `json:"is_public"`
	VoiceProfile json.RawMessage `json:"voice_profile"`
	UsageCount   int             `json:"usage_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// VoiceProfile is the shape prompts read out of Template.VoiceProfile.
// Unknown keys are kept in the raw JSON and ignored here.
type VoiceProfile struct {
	Tone       string   `json:"tone"`
	Style      string   `json:"style"`
	Audience   string   `json:"audience"`
	Vocabulary []string `json:"vocabulary"`
	Avoid      []string `json:"avoid"`
}

type CreateTemplateRequest struct {
	Name         string          `json:"name" validate:"required,max=100"`
	Description  string          `json:"description" validate:"max=500"`
	VoiceProfile json.RawMessage `json:"voice_profile" validate:"required"`
}
