package repository

import (
	"context"
	"database/sql"
	"errors"

	"lexivo/internal/template/model"
	"lexivo/pkg/apperr"
	"lexivo/pkg/logger"
)

const templateColumns = `id, user_id, name, description, is_public, voice_profile, usage_count, created_at, updated_at`

// accessible is the visibility rule: public templates, system templates and
// the caller's own.
const accessible = `(is_public OR user_id IS NULL OR user_id = $2)`

type TemplateRepository struct {
	DB *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*model.Template, error) {
	var t model.Template
	var userID sql.NullString
	var profile []byte
	if err := row.Scan(&t.ID, &userID, &t.Name, &t.Description, &t.IsPublic, &profile, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		t.UserID = &userID.String
	}
	if len(profile) == 0 {
		profile = []byte("{}")
	}
	t.VoiceProfile = profile
	return &t, nil
}

func (r *TemplateRepository) ListAccessible(ctx context.Context, userID string) ([]model.Template, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+templateColumns+` FROM brand_voice_templates
		WHERE is_public OR user_id IS NULL OR user_id = $1
		ORDER BY usage_count DESC, name ASC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list templates for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan template row: %v", err)
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// GetAccessible returns the template if userID may use it.
func (r *TemplateRepository) GetAccessible(ctx context.Context, templateID, userID string) (*model.Template, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM brand_voice_templates WHERE id = $1 AND `+accessible, templateID, userID)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Template")
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get template %s: %v", templateID, err)
		return nil, err
	}
	return t, nil
}

func (r *TemplateRepository) Create(ctx context.Context, t *model.Template) (*model.Template, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO brand_voice_templates (id, user_id, name, description, is_public, voice_profile, usage_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, 0, NOW(), NOW())
		RETURNING `+templateColumns,
		t.ID, t.UserID, t.Name, t.Description, string(t.VoiceProfile))
	created, err := scanTemplate(row)
	if err != nil {
		logger.Sugar.Errorf("Failed to create template: %v", err)
		return nil, err
	}
	return created, nil
}

// IncrementUsage bumps usage_count on an accessible template and returns the new row.
func (r *TemplateRepository) IncrementUsage(ctx context.Context, templateID, userID string) (*model.Template, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE brand_voice_templates SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = $1 AND `+accessible+`
		RETURNING `+templateColumns, templateID, userID)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Template")
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to increment usage of template %s: %v", templateID, err)
		return nil, err
	}
	return t, nil
}
