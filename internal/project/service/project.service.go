package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	docmodel "lexivo/internal/document/model"
	"lexivo/internal/project/model"
	"lexivo/internal/project/repository"
	templatemodel "lexivo/internal/template/model"
	"lexivo/pkg/apperr"
	"lexivo/pkg/logger"
	"lexivo/socket"
)

const defaultTone = "professional"

// DocumentLookup finds a document owned by the user.
type DocumentLookup interface {
	Get(ctx context.Context, docID, userID string) (*docmodel.Document, error)
}

// TemplateLookup finds a template the user may use.
type TemplateLookup interface {
	GetAccessible(ctx context.Context, templateID, userID string) (*templatemodel.Template, error)
}

// Publisher fans project events out to live subscribers.
type Publisher interface {
	Publish(projectID, eventType, userID string, payload any)
	CloseProject(projectID string)
}

type ProjectService struct {
	Repo      *repository.ProjectRepository
	Documents DocumentLookup
	Templates TemplateLookup
	Hub       Publisher
}

func NewProjectService(repo *repository.ProjectRepository, docs DocumentLookup, templates TemplateLookup, hub Publisher) *ProjectService {
	return &ProjectService{Repo: repo, Documents: docs, Templates: templates, Hub: hub}
}

func (s *ProjectService) CreateProject(ctx context.Context, userID string, req model.CreateProjectRequest) (*model.Project, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if req.DocumentID != nil {
		if _, err := s.Documents.Get(ctx, *req.DocumentID, userID); err != nil {
			return nil, err
		}
	}
	if req.TemplateID != nil {
		if _, err := s.Templates.GetAccessible(ctx, *req.TemplateID, userID); err != nil {
			return nil, err
		}
	}
	return s.Repo.Create(ctx, &model.Project{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		TemplateID: req.TemplateID,
		DocumentID: req.DocumentID,
	})
}

func (s *ProjectService) ListProjects(ctx context.Context, userID string) ([]model.Project, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Project returns the bare project row after the ownership check.
func (s *ProjectService) Project(ctx context.Context, projectID, userID string) (*model.Project, error) {
	if err := checkID(projectID, "project"); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, projectID, userID)
}

// Authorize lets the realtime hub admit only the project's owner.
func (s *ProjectService) Authorize(ctx context.Context, projectID, userID string) error {
	_, err := s.Project(ctx, projectID, userID)
	return err
}

// GetProject returns the project with its ordered slides and, if still
// accessible, its template.
func (s *ProjectService) GetProject(ctx context.Context, projectID, userID string) (*model.ProjectDetail, error) {
	p, err := s.Project(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	slides, err := s.Repo.ListSlides(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	detail := &model.ProjectDetail{Project: *p, Slides: slides}
	if p.TemplateID != nil {
		t, err := s.Templates.GetAccessible(ctx, *p.TemplateID, userID)
		switch {
		case err == nil:
			detail.Template = t
		case errors.Is(err, apperr.ErrNotFound):
			logger.Sugar.Warnf("Project %s links template %s that is no longer accessible", p.ID, *p.TemplateID)
		default:
			return nil, err
		}
	}
	return detail, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, projectID, userID string, req model.UpdateProjectRequest) (*model.Project, error) {
	if req.Title == nil && req.TemplateID == nil {
		return nil, apperr.Validation("title or template_id is required")
	}
	p, err := s.Project(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		p.Title = title
	}
	if req.TemplateID != nil {
		if *req.TemplateID == "" {
			p.TemplateID = nil
		} else {
			if err := checkID(*req.TemplateID, "template"); err != nil {
				return nil, err
			}
			if _, err := s.Templates.GetAccessible(ctx, *req.TemplateID, userID); err != nil {
				return nil, err
			}
			p.TemplateID = req.TemplateID
		}
	}

	updated, err := s.Repo.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	s.Hub.Publish(updated.ID, socket.ProjectUpdatedType, userID, updated)
	return updated, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, projectID, userID string) error {
	if err := checkID(projectID, "project"); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, projectID, userID); err != nil {
		return err
	}
	s.Hub.CloseProject(projectID)
	return nil
}

func (s *ProjectService) ListSlides(ctx context.Context, projectID, userID string) ([]model.Slide, error) {
	p, err := s.Project(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListSlides(ctx, p.ID)
}

func (s *ProjectService) CreateSlide(ctx context.Context, projectID, userID string, req model.CreateSlideRequest) (*model.Slide, error) {
	if err := checkContent(req.Content); err != nil {
		return nil, err
	}
	p, err := s.Project(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	slide := &model.Slide{
		ID:        uuid.NewString(),
		ProjectID: p.ID,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		CharCount: utf8.RuneCountInString(req.Content),
		Tone:      req.Tone,
	}
	if slide.Tone == "" {
		slide.Tone = defaultTone
	}
	if req.SlideNumber != nil {
		slide.SlideNumber = *req.SlideNumber
	}

	created, err := s.Repo.CreateSlide(ctx, slide)
	if err != nil {
		return nil, err
	}
	s.Hub.Publish(p.ID, socket.SlideCreatedType, userID, created)
	return created, nil
}

// UpdateSlide applies a partial update and recomputes char_count.
func (s *ProjectService) UpdateSlide(ctx context.Context, projectID, slideID, userID string, req model.UpdateSlideRequest) (*model.Slide, error) {
	if req.Title == nil && req.Content == nil && req.Tone == nil && req.SlideNumber == nil {
		return nil, apperr.Validation("nothing to update")
	}
	if err := checkID(slideID, "slide"); err != nil {
		return nil, err
	}
	p, err := s.Project(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	slide, err := s.Repo.GetSlide(ctx, p.ID, slideID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		slide.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		if err := checkContent(*req.Content); err != nil {
			return nil, err
		}
		slide.Content = *req.Content
	}
	if req.Tone != nil {
		slide.Tone = *req.Tone
	}
	if req.SlideNumber != nil {
		slide.SlideNumber = *req.SlideNumber
	}
	slide.CharCount = utf8.RuneCountInString(slide.Content)

	updated, err := s.Repo.UpdateSlide(ctx, slide)
	if err != nil {
		return nil, err
	}
	s.Hub.Publish(p.ID, socket.SlideUpdatedType, userID, updated)
	return updated, nil
}

func (s *ProjectService) DeleteSlide(ctx context.Context, projectID, slideID, userID string) error {
	if err := checkID(slideID, "slide"); err != nil {
		return err
	}
	p, err := s.Project(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteSlide(ctx, p.ID, slideID); err != nil {
		return err
	}
	s.Hub.Publish(p.ID, socket.SlideDeletedType, userID, map[string]string{"id": slideID})
	return nil
}

func (s *ProjectService) ReorderSlides(ctx context.Context, projectID, userID string, req model.ReorderSlidesRequest) ([]model.Slide, error) {
	p, err := s.Project(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.ReorderSlides(ctx, p.ID, req.SlideIDs); err != nil {
		return nil, err
	}
	slides, err := s.Repo.ListSlides(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	s.Hub.Publish(p.ID, socket.SlidesReorderedType, userID, slides)
	return slides, nil
}

// ReplaceSlides stores generated slides in place of the project's current ones.
func (s *ProjectService) ReplaceSlides(ctx context.Context, projectID, userID string, slides []model.NewSlide) ([]model.Slide, error) {
	p, err := s.Project(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	for i := range slides {
		if slides[i].Tone == "" {
			slides[i].Tone = defaultTone
		}
	}
	created, err := s.Repo.ReplaceSlides(ctx, p.ID, slides)
	if err != nil {
		return nil, err
	}
	s.Hub.Publish(p.ID, socket.SlidesGeneratedType, userID, created)
	return created, nil
}

func checkContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.Validation("content is required")
	}
	if utf8.RuneCountInString(content) > model.MaxSlideChars {
		return apperr.Validation("content must be at most %d characters", model.MaxSlideChars)
	}
	return nil
}

func checkID(id, kind string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Validation("Invalid %s id", kind)
	}
	return nil
}
