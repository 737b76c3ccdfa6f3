package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"lexivo/pkg/cache"
)

func newDB(t *testing.T) (Pinger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCache(client, ""), mr
}

func serve(h *HealthHandler) (*httptest.ResponseRecorder, Report) {
	rr := httptest.NewRecorder()
	mux := http.NewServeMux()
	h.Register(mux)
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	var report Report
	_ = json.Unmarshal(rr.Body.Bytes(), &report)
	return rr, report
}

func TestHealth_Healthy(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectPing()
	c, _ := newCache(t)

	h := NewHealthHandler(db, c, true, "1.2.3")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	rr, report := serve(h)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, "1.2.3", report.Version)
	assert.True(t, fixed.Equal(report.Timestamp))
	assert.Equal(t, map[string]string{"database": "ok", "ai": "ok", "cache": "ok"}, report.Checks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealth_CacheDisabledIsNotAFailure(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectPing()

	rr, report := serve(NewHealthHandler(db, nil, true, "dev"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "disabled", report.Checks["cache"])
}

func TestHealth_DegradedOnAnyFailure(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	c, mr := newCache(t)
	mr.Close()

	h := NewHealthHandler(db, c, false, "dev")
	rr, report := serve(h)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, map[string]string{"database": "down", "ai": "down", "cache": "down"}, report.Checks)
	assert.NotContains(t, rr.Body.String(), "connection refused", "driver errors stay in the log")
}

func TestHealth_CheckCombinesErrors(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectPing().WillReturnError(errors.New("timeout"))

	_, err := NewHealthHandler(db, nil, false, "dev").Check(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "database: timeout")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
