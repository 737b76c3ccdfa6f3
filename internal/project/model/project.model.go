package model

import (
	"time"

	templatemodel "lexivo/internal/template/model"
)

// Tones a slide can be written in.
var Tones = []string{"professional", "casual", "educational", "inspirational", "humorous"}

// MaxSlideChars is the Instagram caption limit, applied per slide.
const MaxSlideChars = 2200

type Project struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	TemplateID *string   `json:"template_id"`
	DocumentID *string   `json:"document_id"`
	SlideCount int       `json:"slide_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProjectDetail is a project with its ordered slides and template.
type ProjectDetail struct {
	Project
	Slides   []Slide                  `json:"slides"`
	Template *templatemodel.Template `json:"template"`
}

type Slide struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	SlideNumber int       `json:"slide_number"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CharCount   int       `json:"char_count"`
	Tone        string    `json:"tone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateProjectRequest struct {
	Title      string  `json:"title" validate:"required,max=200"`
	TemplateID *string `json:"template_id" validate:"omitempty,uuid"`
	DocumentID *string `json:"document_id" validate:"omitempty,uuid"`
}

// UpdateProjectRequest is partial. An empty template_id string unlinks the template.
type UpdateProjectRequest struct {
	Title      *string `json:"title" validate:"omitempty,max=200"`
	TemplateID *string `json:"template_id"`
}

type CreateSlideRequest struct {
	Title       string `json:"title" validate:"max=200"`
	Content     string `json:"content" validate:"required,max=2200"`
	Tone        string `json:"tone" validate:"omitempty,oneof=professional casual educational inspirational humorous"`
	SlideNumber *int   `json:"slide_number" validate:"omitempty,gte=1"`
}

type UpdateSlideRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Content     *string `json:"content" validate:"omitempty,max=2200"`
	Tone        *string `json:"tone" validate:"omitempty,oneof=professional casual educational inspirational humorous"`
	SlideNumber *int    `json:"slide_number" validate:"omitempty,gte=1"`
}

type ReorderSlidesRequest struct {
	SlideIDs []string `json:"slide_ids" validate:"required,min=1,dive,uuid"`
}

// NewSlide is what generation or creation hands to the repository.
type NewSlide struct {
	Title   string
	Content string
	Tone    string
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}
