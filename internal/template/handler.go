package handler

import (
	"net/http"

	"lexivo/internal/template/model"
	"lexivo/internal/template/service"
	"lexivo/middleware"
	"lexivo/pkg/response"
)

type TemplateHandler struct {
	Service *service.TemplateService
}

func NewTemplateHandler(service *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{Service: service}
}

func (h *TemplateHandler) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.Handle("GET /api/templates", auth(http.HandlerFunc(h.ListTemplates)))
	mux.Handle("POST /api/templates", auth(http.HandlerFunc(h.CreateTemplate)))
	mux.Handle("GET /api/templates/{id}", auth(http.HandlerFunc(h.GetTemplate)))
	mux.Handle("POST /api/templates/{id}/use", auth(http.HandlerFunc(h.UseTemplate)))
}

func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	templates, err := h.Service.ListTemplates(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, templates)
}

func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	t, err := h.Service.GetTemplate(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, t)
}

func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	var req model.CreateTemplateRequest
	if err := response.Decode(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	t, err := h.Service.CreateTemplate(r.Context(), userID, req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, t)
}

func (h *TemplateHandler) UseTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	t, err := h.Service.UseTemplate(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, t)
}
