package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"lexivo/internal/export/service"
	"lexivo/middleware"
	"lexivo/pkg/logger"
	"lexivo/pkg/response"
)

type ExportHandler struct {
	Service *service.ExportService
}

func NewExportHandler(service *service.ExportService) *ExportHandler {
	return &ExportHandler{Service: service}
}

func (h *ExportHandler) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.Handle("POST /api/projects/{id}/export/pdf", auth(http.HandlerFunc(h.ExportPDF)))
	mux.Handle("POST /api/projects/{id}/export/images", auth(http.HandlerFunc(h.ExportImages)))
}

// ExportPDF streams the carousel as a PDF attachment. X-Export-Mode tells the
// client whether the text fallback was used.
func (h *ExportHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	file, err := h.Service.PDF(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Header().Set("X-Export-Mode", file.Mode)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		logger.Sugar.Warnf("Failed to stream export %s: %v", file.Filename, err)
	}
}

func (h *ExportHandler) ExportImages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	result, err := h.Service.Images(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, result)
}
