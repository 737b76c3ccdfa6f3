package repository

import (
	"context"
	"database/sql"
	"errors"

	"lexivo/internal/document/model"
	"lexivo/pkg/apperr"
	"lexivo/pkg/logger"
)

const documentColumns = `id, user_id, title, content, word_count, char_count, created_at, updated_at`

type DocumentRepository struct {
	DB *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(&d.ID, &d.UserID, &d.Title, &d.Content, &d.WordCount, &d.CharCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepository) Create(ctx context.Context, d *model.Document) (*model.Document, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO documents (id, user_id, title, content, word_count, char_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING `+documentColumns,
		d.ID, d.UserID, d.Title, d.Content, d.WordCount, d.CharCount)
	created, err := scanDocument(row)
	if err != nil {
		logger.Sugar.Errorf("Failed to create document: %v", err)
		return nil, err
	}
	return created, nil
}

// Get returns the document only if userID owns it.
func (r *DocumentRepository) Get(ctx context.Context, docID, userID string) (*model.Document, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 AND user_id = $2`, docID, userID)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Document")
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get document %s: %v", docID, err)
		return nil, err
	}
	return d, nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]model.Document, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to get documents for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan document row: %v", err)
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// Update writes title, content and the recomputed counts in one statement,
// scoped to the owner.
func (r *DocumentRepository) Update(ctx context.Context, d *model.Document) (*model.Document, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE documents SET title = $1, content = $2, word_count = $3, char_count = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING `+documentColumns,
		d.Title, d.Content, d.WordCount, d.CharCount, d.ID, d.UserID)
	updated, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Document")
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update doc %s: %v", d.ID, err)
		return nil, err
	}
	return updated, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, docID, userID string) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM documents WHERE id = $1 AND user_id = $2", docID, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete doc %s: %v", docID, err)
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("Document")
	}
	return nil
}
