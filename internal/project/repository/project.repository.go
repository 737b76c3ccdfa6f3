package repository

import (
	"context"
	"database/sql"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"

	"lexivo/internal/project/model"
	"lexivo/pkg/apperr"
	"lexivo/pkg/logger"
)

const projectColumns = `p.id, p.user_id, p.title, p.template_id, p.document_id,
	(SELECT COUNT(*) FROM slides s WHERE s.project_id = p.id), p.created_at, p.updated_at`

const slideColumns = `id, project_id, slide_number, title, content, char_count, tone, created_at, updated_at`

// touchProject bumps a project's updated_at. Every slide write runs it or an
// equivalent CTE.
const touchProject = `UPDATE carousel_projects SET updated_at = NOW() WHERE id = $1`

type ProjectRepository struct {
	DB *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	var templateID, documentID sql.NullString
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &templateID, &documentID, &p.SlideCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if templateID.Valid {
		p.TemplateID = &templateID.String
	}
	if documentID.Valid {
		p.DocumentID = &documentID.String
	}
	return &p, nil
}

func scanSlide(row rowScanner) (*model.Slide, error) {
	var s model.Slide
	if err := row.Scan(&s.ID, &s.ProjectID, &s.SlideNumber, &s.Title, &s.Content, &s.CharCount, &s.Tone, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO carousel_projects AS p (id, user_id, title, template_id, document_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING `+projectColumns,
		p.ID, p.UserID, p.Title, p.TemplateID, p.DocumentID)
	created, err := scanProject(row)
	if err != nil {
		logger.Sugar.Errorf("Failed to create project: %v", err)
		return nil, err
	}
	return created, nil
}

// Get returns the project only if userID owns it.
func (r *ProjectRepository) Get(ctx context.Context, projectID, userID string) (*model.Project, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM carousel_projects p WHERE p.id = $1 AND p.user_id = $2`, projectID, userID)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Project")
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get project %s: %v", projectID, err)
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+projectColumns+` FROM carousel_projects p WHERE p.user_id = $1 ORDER BY p.updated_at DESC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to get projects for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan project row: %v", err)
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) (*model.Project, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE carousel_projects AS p SET title = $1, template_id = $2, updated_at = NOW()
		WHERE p.id = $3 AND p.user_id = $4
		RETURNING `+projectColumns,
		p.Title, p.TemplateID, p.ID, p.UserID)
	updated, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Project")
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update project %s: %v", p.ID, err)
		return nil, err
	}
	return updated, nil
}

// Delete removes the project; its slides go with it through the foreign key.
func (r *ProjectRepository) Delete(ctx context.Context, projectID, userID string) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM carousel_projects WHERE id = $1 AND user_id = $2", projectID, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete project %s: %v", projectID, err)
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("Project")
	}
	return nil
}

func (r *ProjectRepository) ListSlides(ctx context.Context, projectID string) ([]model.Slide, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+slideColumns+` FROM slides WHERE project_id = $1 ORDER BY slide_number ASC, created_at ASC`, projectID)
	if err != nil {
		logger.Sugar.Errorf("Failed to get slides for project %s: %v", projectID, err)
		return nil, err
	}
	defer rows.Close()

	slides := []model.Slide{}
	for rows.Next() {
		s, err := scanSlide(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan slide row: %v", err)
			return nil, err
		}
		slides = append(slides, *s)
	}
	return slides, rows.Err()
}

func (r *ProjectRepository) GetSlide(ctx context.Context, projectID, slideID string) (*model.Slide, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+slideColumns+` FROM slides WHERE id = $1 AND project_id = $2`, slideID, projectID)
	s, err := scanSlide(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Slide")
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get slide %s: %v", slideID, err)
		return nil, err
	}
	return s, nil
}

// CreateSlide inserts s. A zero SlideNumber appends after the current last slide.
func (r *ProjectRepository) CreateSlide(ctx context.Context, s *model.Slide) (*model.Slide, error) {
	var number *int
	if s.SlideNumber > 0 {
		number = &s.SlideNumber
	}
	row := r.DB.QueryRowContext(ctx, `
		WITH touched AS (
			UPDATE carousel_projects SET updated_at = NOW() WHERE id = $2
		)
		INSERT INTO slides (id, project_id, slide_number, title, content, char_count, tone, created_at, updated_at)
		VALUES ($1, $2, COALESCE($3::int, (SELECT COALESCE(MAX(slide_number), 0) + 1 FROM slides WHERE project_id = $2)), $4, $5, $6, $7, NOW(), NOW())
		RETURNING `+slideColumns,
		s.ID, s.ProjectID, number, s.Title, s.Content, s.CharCount, s.Tone)
	created, err := scanSlide(row)
	if err != nil {
		logger.Sugar.Errorf("Failed to create slide in project %s: %v", s.ProjectID, err)
		return nil, err
	}
	return created, nil
}

func (r *ProjectRepository) UpdateSlide(ctx context.Context, s *model.Slide) (*model.Slide, error) {
	row := r.DB.QueryRowContext(ctx, `
		WITH updated AS (
			UPDATE slides SET slide_number = $1, title = $2, content = $3, char_count = $4, tone = $5, updated_at = NOW()
			WHERE id = $6 AND project_id = $7
			RETURNING `+slideColumns+`
		), touched AS (
			UPDATE carousel_projects SET updated_at = NOW() WHERE id IN (SELECT project_id FROM updated)
		)
		SELECT `+slideColumns+` FROM updated`,
		s.SlideNumber, s.Title, s.Content, s.CharCount, s.Tone, s.ID, s.ProjectID)
	updated, err := scanSlide(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Slide")
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update slide %s: %v", s.ID, err)
		return nil, err
	}
	return updated, nil
}

// DeleteSlide removes the slide and touches its project. The statement affects
// one project row exactly when a slide was deleted.
func (r *ProjectRepository) DeleteSlide(ctx context.Context, projectID, slideID string) error {
	result, err := r.DB.ExecContext(ctx, `
		WITH deleted AS (
			DELETE FROM slides WHERE id = $1 AND project_id = $2 RETURNING project_id
		)
		UPDATE carousel_projects SET updated_at = NOW() WHERE id IN (SELECT project_id FROM deleted)`,
		slideID, projectID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete slide %s: %v", slideID, err)
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("Slide")
	}
	return nil
}

// ReorderSlides numbers the project's slides 1..n in the order of slideIDs.
// slideIDs must name every slide of the project exactly once.
func (r *ProjectRepository) ReorderSlides(ctx context.Context, projectID string, slideIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		logger.Sugar.Errorf("Failed to begin reorder for project %s: %v", projectID, err)
		return err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "SELECT id FROM slides WHERE project_id = $1 FOR UPDATE", projectID)
	if err != nil {
		logger.Sugar.Errorf("Failed to lock slides of project %s: %v", projectID, err)
		return err
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		existing[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(existing) != len(slideIDs) {
		return apperr.Validation("slide_ids must list every slide of the project exactly once")
	}
	seen := make(map[string]bool, len(slideIDs))
	for _, id := range slideIDs {
		if !existing[id] || seen[id] {
			return apperr.Validation("slide_ids must list every slide of the project exactly once")
		}
		seen[id] = true
	}

	for i, id := range slideIDs {
		if _, err := tx.ExecContext(ctx, "UPDATE slides SET slide_number = $1, updated_at = NOW() WHERE id = $2 AND project_id = $3", i+1, id, projectID); err != nil {
			logger.Sugar.Errorf("Failed to renumber slide %s: %v", id, err)
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, touchProject, projectID); err != nil {
		logger.Sugar.Errorf("Failed to touch project %s: %v", projectID, err)
		return err
	}
	return tx.Commit()
}

// ReplaceSlides swaps all slides of the project for the given ones in one transaction.
func (r *ProjectRepository) ReplaceSlides(ctx context.Context, projectID string, slides []model.NewSlide) ([]model.Slide, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		logger.Sugar.Errorf("Failed to begin slide replace for project %s: %v", projectID, err)
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM slides WHERE project_id = $1", projectID); err != nil {
		logger.Sugar.Errorf("Failed to clear slides of project %s: %v", projectID, err)
		return nil, err
	}

	created := make([]model.Slide, 0, len(slides))
	for i, ns := range slides {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO slides (id, project_id, slide_number, title, content, char_count, tone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING `+slideColumns,
			uuid.NewString(), projectID, i+1, ns.Title, ns.Content, utf8.RuneCountInString(ns.Content), ns.Tone)
		s, err := scanSlide(row)
		if err != nil {
			logger.Sugar.Errorf("Failed to insert generated slide %d for project %s: %v", i+1, projectID, err)
			return nil, err
		}
		created = append(created, *s)
	}

	if _, err := tx.ExecContext(ctx, touchProject, projectID); err != nil {
		logger.Sugar.Errorf("Failed to touch project %s: %v", projectID, err)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		logger.Sugar.Errorf("Failed to commit slide replace for project %s: %v", projectID, err)
		return nil, err
	}
	return created, nil
}
