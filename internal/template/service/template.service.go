package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"lexivo/internal/template/model"
	"lexivo/internal/template/repository"
	"lexivo/pkg/apperr"
)

type TemplateService struct {
	Repo *repository.TemplateRepository
}

func NewTemplateService(repo *repository.TemplateRepository) *TemplateService {
	return &TemplateService{Repo: repo}
}

func (s *TemplateService) ListTemplates(ctx context.Context, userID string) ([]model.Template, error) {
	return s.Repo.ListAccessible(ctx, userID)
}

func (s *TemplateService) GetTemplate(ctx context.Context, templateID, userID string) (*model.Template, error) {
	if err := checkID(templateID); err != nil {
		return nil, err
	}
	return s.Repo.GetAccessible(ctx, templateID, userID)
}

func (s *TemplateService) CreateTemplate(ctx context.Context, userID string, req model.CreateTemplateRequest) (*model.Template, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if !IsJSONObject(req.VoiceProfile) {
		return nil, apperr.Validation("voice_profile must be a JSON object")
	}
	owner := userID
	return s.Repo.Create(ctx, &model.Template{
		ID:           uuid.NewString(),
		UserID:       &owner,
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		VoiceProfile: req.VoiceProfile,
	})
}

// UseTemplate records one use of the template and returns it.
func (s *TemplateService) UseTemplate(ctx context.Context, templateID, userID string) (*model.Template, error) {
	if err := checkID(templateID); err != nil {
		return nil, err
	}
	return s.Repo.IncrementUsage(ctx, templateID, userID)
}

// IsJSONObject reports whether raw decodes to a JSON object.
func IsJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var m map[string]any
	return json.Unmarshal(trimmed, &m) == nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Validation("Invalid template id")
	}
	return nil
}
