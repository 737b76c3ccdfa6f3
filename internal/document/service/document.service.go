package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"lexivo/internal/document/model"
	"lexivo/internal/document/repository"
	"lexivo/pkg/apperr"
	"lexivo/pkg/textstats"
)

// NewDocumentID is the placeholder id the editor uses for an unsaved draft.
const NewDocumentID = "new"

const snippetLength = 100

type DocumentService struct {
	Repo *repository.DocumentRepository
}

func NewDocumentService(repo *repository.DocumentRepository) *DocumentService {
	return &DocumentService{Repo: repo}
}

func (s *DocumentService) CreateDocument(ctx context.Context, userID string, req model.CreateDocRequest) (*model.Document, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	counts := textstats.Count(req.Content)
	return s.Repo.Create(ctx, &model.Document{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   req.Content,
		WordCount: counts.Words,
		CharCount: counts.Chars,
	})
}

func (s *DocumentService) GetDocument(ctx context.Context, docID, userID string) (*model.Document, error) {
	if err := checkID(docID); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, docID, userID)
}

func (s *DocumentService) GetDocuments(ctx context.Context, userID string) ([]model.DocumentMetadata, error) {
	docs, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.DocumentMetadata, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.DocumentMetadata{
			ID:        d.ID,
			Title:     d.Title,
			Snippet:   textstats.Snippet(d.Content, snippetLength),
			WordCount: d.WordCount,
			CharCount: d.CharCount,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}
	return out, nil
}

// UpdateDocument applies a partial update. Counts are always recomputed from
// the content that ends up stored.
func (s *DocumentService) UpdateDocument(ctx context.Context, docID, userID string, req model.UpdateDocRequest) (*model.Document, error) {
	if docID == NewDocumentID {
		return nil, apperr.Validation("Cannot update a document that has not been created yet")
	}
	if err := checkID(docID); err != nil {
		return nil, err
	}
	if req.Title == nil && req.Content == nil {
		return nil, apperr.Validation("title or content is required")
	}

	doc, err := s.Repo.Get(ctx, docID, userID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		doc.Title = title
	}
	if req.Content != nil {
		doc.Content = *req.Content
	}
	counts := textstats.Count(doc.Content)
	doc.WordCount = counts.Words
	doc.CharCount = counts.Chars

	return s.Repo.Update(ctx, doc)
}

func (s *DocumentService) DeleteDocument(ctx context.Context, docID, userID string) error {
	if err := checkID(docID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, docID, userID)
}

// checkID rejects ids that cannot be a row key, so Postgres never sees a
// malformed uuid literal.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Validation("Invalid document id")
	}
	return nil
}
