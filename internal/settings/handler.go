package handler

import (
	"net/http"

	"lexivo/internal/settings/model"
	"lexivo/internal/settings/service"
	"lexivo/middleware"
	"lexivo/pkg/response"
)

type SettingsHandler struct {
	Service *service.SettingsService
}

func NewSettingsHandler(service *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{Service: service}
}

func (h *SettingsHandler) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.Handle("GET /api/user/settings", auth(http.HandlerFunc(h.GetSettings)))
	mux.Handle("PUT /api/user/settings", auth(http.HandlerFunc(h.UpdateSettings)))
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	settings, err := h.Service.GetSettings(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	var req model.UpdateSettingsRequest
	if err := response.Decode(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	settings, err := h.Service.UpdateSettings(r.Context(), userID, req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, settings)
}
