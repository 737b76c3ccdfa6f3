package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"lexivo/pkg/logger"
	"lexivo/pkg/response"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	checkOK       = "ok"
	checkDisabled = "disabled"
	checkDown     = "down"
)

const pingTimeout = time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger is satisfied by *cache.RedisCache.
type CachePinger interface {
	Ping(ctx context.Context) error
}

type Report struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks"`
}

type HealthHandler struct {
	DB        Pinger
	Cache     CachePinger
	AIEnabled bool
	Version   string
	now       func() time.Time
}

// NewHealthHandler builds the handler. cache may be nil when Redis is not configured.
func NewHealthHandler(db Pinger, cache CachePinger, aiEnabled bool, version string) *HealthHandler {
	return &HealthHandler{DB: db, Cache: cache, AIEnabled: aiEnabled, Version: version, now: time.Now}
}

func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/health", h)
}

// Check runs every probe and reports the combined failure, if any.
func (h *HealthHandler) Check(ctx context.Context) (Report, error) {
	report := Report{
		Status:    StatusHealthy,
		Timestamp: h.now().UTC(),
		Version:   h.Version,
		Checks:    make(map[string]string, 3),
	}
	var errs error

	dbCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := h.DB.PingContext(dbCtx)
	cancel()
	errs = multierr.Append(errs, record(report.Checks, "database", err))

	if h.AIEnabled {
		report.Checks["ai"] = checkOK
	} else {
		errs = multierr.Append(errs, record(report.Checks, "ai", errors.New("OPENAI_API_KEY is not set")))
	}

	if h.Cache == nil {
		report.Checks["cache"] = checkDisabled
	} else {
		cacheCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := h.Cache.Ping(cacheCtx)
		cancel()
		errs = multierr.Append(errs, record(report.Checks, "cache", err))
	}

	if errs != nil {
		report.Status = StatusDegraded
	}
	return report, errs
}

func record(checks map[string]string, name string, err error) error {
	if err != nil {
		checks[name] = checkDown
		return errors.New(name + ": " + err.Error())
	}
	checks[name] = checkOK
	return nil
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report, err := h.Check(r.Context())
	if err != nil {
		logger.Sugar.Warnw("Health check degraded", "failures", len(multierr.Errors(err)), "error", err)
		response.JSON(w, http.StatusServiceUnavailable, report)
		return
	}
	response.JSON(w, http.StatusOK, report)
}
