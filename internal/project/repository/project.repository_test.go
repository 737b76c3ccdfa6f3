package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexivo/internal/project/model"
	"lexivo/pkg/apperr"
)

var (
	projectCols = []string{"id", "user_id", "title", "template_id", "document_id", "slide_count", "created_at", "updated_at"}
	slideCols   = []string{"id", "project_id", "slide_number", "title", "content", "char_count", "tone", "created_at", "updated_at"}
)

func newRepo(t *testing.T) (*ProjectRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProjectRepository(db), mock
}

func TestProjectRepository_GetScansNullableLinks(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM carousel_projects p WHERE p.id = $1 AND p.user_id = $2")).
		WithArgs("proj-1", "user-1").
		WillReturnRows(sqlmock.NewRows(projectCols).AddRow("proj-1", "user-1", "Launch", nil, "doc-1", 3, now, now))

	p, err := repo.Get(context.Background(), "proj-1", "user-1")
	require.NoError(t, err)
	assert.Nil(t, p.TemplateID)
	require.NotNil(t, p.DocumentID)
	assert.Equal(t, "doc-1", *p.DocumentID)
	assert.Equal(t, 3, p.SlideCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_GetOtherOwnerIsNotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM carousel_projects p WHERE p.id = $1")).
		WithArgs("proj-1", "user-2").
		WillReturnRows(sqlmock.NewRows(projectCols))

	_, err := repo.Get(context.Background(), "proj-1", "user-2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProjectRepository_DeleteNotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM carousel_projects WHERE id = $1 AND user_id = $2")).
		WithArgs("proj-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "proj-1", "user-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateSlideAppendsByDefault(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE($3::int, (SELECT COALESCE(MAX(slide_number), 0) + 1")).
		WithArgs("slide-1", "proj-1", nil, "Hook", "Stop scrolling", 14, "casual").
		WillReturnRows(sqlmock.NewRows(slideCols).AddRow("slide-1", "proj-1", 4, "Hook", "Stop scrolling", 14, "casual", now, now))

	s, err := repo.CreateSlide(context.Background(), &model.Slide{
		ID: "slide-1", ProjectID: "proj-1", Title: "Hook", Content: "Stop scrolling", CharCount: 14, Tone: "casual",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, s.SlideNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateSlideTouchesProject(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`WITH touched AS \( UPDATE carousel_projects SET updated_at = NOW\(\) WHERE id = \$2 \) INSERT INTO slides`).
		WithArgs("slide-1", "proj-1", 2, "", "Body", 4, "professional").
		WillReturnRows(sqlmock.NewRows(slideCols).AddRow("slide-1", "proj-1", 2, "", "Body", 4, "professional", now, now))

	_, err := repo.CreateSlide(context.Background(), &model.Slide{
		ID: "slide-1", ProjectID: "proj-1", SlideNumber: 2, Content: "Body", CharCount: 4, Tone: "professional",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_UpdateSlideTouchesProject(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE carousel_projects SET updated_at = NOW() WHERE id IN (SELECT project_id FROM updated)")).
		WithArgs(1, "Hook", "New body", 8, "casual", "slide-1", "proj-1").
		WillReturnRows(sqlmock.NewRows(slideCols).AddRow("slide-1", "proj-1", 1, "Hook", "New body", 8, "casual", now, now))

	s, err := repo.UpdateSlide(context.Background(), &model.Slide{
		ID: "slide-1", ProjectID: "proj-1", SlideNumber: 1, Title: "Hook", Content: "New body", CharCount: 8, Tone: "casual",
	})
	require.NoError(t, err)
	assert.Equal(t, "New body", s.Content)

	mock.ExpectQuery(regexp.QuoteMeta("FROM updated")).
		WillReturnRows(sqlmock.NewRows(slideCols))
	_, err = repo.UpdateSlide(context.Background(), &model.Slide{ID: "slide-9", ProjectID: "proj-1"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_DeleteSlideTouchesProject(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE carousel_projects SET updated_at = NOW() WHERE id IN (SELECT project_id FROM deleted)")).
		WithArgs("slide-1", "proj-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteSlide(context.Background(), "proj-1", "slide-1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM slides WHERE id = $1 AND project_id = $2")).
		WithArgs("slide-9", "proj-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteSlide(context.Background(), "proj-1", "slide-9"), apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_ReorderSlides(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM slides WHERE project_id = $1 FOR UPDATE")).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b").AddRow("c"))
	for i, id := range []string{"c", "a", "b"} {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE slides SET slide_number = $1")).
			WithArgs(i+1, id, "proj-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE carousel_projects SET updated_at = NOW() WHERE id = $1")).
		WithArgs("proj-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReorderSlides(context.Background(), "proj-1", []string{"c", "a", "b"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_ReorderSlidesRejectsMismatch(t *testing.T) {
	cases := map[string][]string{
		"missing":   {"a", "b"},
		"duplicate": {"a", "a", "b"},
		"foreign":   {"a", "b", "z"},
	}
	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			repo, mock := newRepo(t)
			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM slides")).
				WithArgs("proj-1").
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b").AddRow("c"))
			mock.ExpectRollback()

			err := repo.ReorderSlides(context.Background(), "proj-1", ids)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProjectRepository_ReplaceSlides(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM slides WHERE project_id = $1")).
		WithArgs("proj-1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO slides")).
		WithArgs(sqlmock.AnyArg(), "proj-1", 1, "One", "first", 5, "casual").
		WillReturnRows(sqlmock.NewRows(slideCols).AddRow("s1", "proj-1", 1, "One", "first", 5, "casual", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO slides")).
		WithArgs(sqlmock.AnyArg(), "proj-1", 2, "Two", "second", 6, "casual").
		WillReturnRows(sqlmock.NewRows(slideCols).AddRow("s2", "proj-1", 2, "Two", "second", 6, "casual", now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE carousel_projects SET updated_at = NOW()")).
		WithArgs("proj-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	slides, err := repo.ReplaceSlides(context.Background(), "proj-1", []model.NewSlide{
		{Title: "One", Content: "first", Tone: "casual"},
		{Title: "Two", Content: "second", Tone: "casual"},
	})
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, 2, slides[1].SlideNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_ReplaceSlidesRollsBack(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM slides")).
		WithArgs("proj-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO slides")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.ReplaceSlides(context.Background(), "proj-1", []model.NewSlide{{Title: "One", Content: "x"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
