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
)

func newRepo(t *testing.T) (*SettingsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSettingsRepository(db), mock
}

func TestSettingsRepository_GetMissingRow(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_settings WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"preferences", "notification_settings", "updated_at"}))

	s, err := repo.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepository_Get(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_settings WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"preferences", "notification_settings", "updated_at"}).
			AddRow([]byte(`{"theme":"dark"}`), []byte(`{}`), now))

	s, err := repo.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.JSONEq(t, `{"theme":"dark"}`, string(s.Preferences))
	require.NotNil(t, s.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepository_UpsertKeepsOmittedBlob(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id) DO UPDATE")).
		WithArgs("user-1", `{"theme":"light"}`, nil).
		WillReturnRows(sqlmock.NewRows([]string{"preferences", "notification_settings", "updated_at"}).
			AddRow([]byte(`{"theme":"light"}`), []byte(`{"email":true}`), now))

	s, err := repo.Upsert(context.Background(), "user-1", []byte(`{"theme":"light"}`), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":true}`, string(s.NotificationSettings))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepository_UpsertError(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_settings")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Upsert(context.Background(), "user-1", nil, []byte(`{}`))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
