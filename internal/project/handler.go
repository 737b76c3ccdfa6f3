package handler

import (
	"net/http"

	"lexivo/internal/project/model"
	"lexivo/internal/project/service"
	"lexivo/middleware"
	"lexivo/pkg/response"
)

type ProjectHandler struct {
	Service *service.ProjectService
}

func NewProjectHandler(service *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

// Register mounts the project and slide routes on mux behind auth.
func (h *ProjectHandler) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.Handle("GET /api/projects", auth(http.HandlerFunc(h.GetProjects)))
	mux.Handle("POST /api/projects", auth(http.HandlerFunc(h.CreateProject)))
	mux.Handle("GET /api/projects/{id}", auth(http.HandlerFunc(h.GetProject)))
	mux.Handle("PUT /api/projects/{id}", auth(http.HandlerFunc(h.UpdateProject)))
	mux.Handle("DELETE /api/projects/{id}", auth(http.HandlerFunc(h.DeleteProject)))

	mux.Handle("GET /api/projects/{id}/slides", auth(http.HandlerFunc(h.GetSlides)))
	mux.Handle("POST /api/projects/{id}/slides", auth(http.HandlerFunc(h.CreateSlide)))
	mux.Handle("POST /api/projects/{id}/slides/reorder", auth(http.HandlerFunc(h.ReorderSlides)))
	mux.Handle("PUT /api/projects/{id}/slides/{slideId}", auth(http.HandlerFunc(h.UpdateSlide)))
	mux.Handle("DELETE /api/projects/{id}/slides/{slideId}", auth(http.HandlerFunc(h.DeleteSlide)))
}

func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	projects, err := h.Service.ListProjects(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, projects)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	var req model.CreateProjectRequest
	if err := response.Decode(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	p, err := h.Service.CreateProject(r.Context(), userID, req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, p)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	detail, err := h.Service.GetProject(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, detail)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	var req model.UpdateProjectRequest
	if err := response.Decode(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	p, err := h.Service.UpdateProject(r.Context(), r.PathValue("id"), userID, req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, p)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteProject(r.Context(), r.PathValue("id"), userID); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, model.DeleteResponse{Deleted: true})
}

func (h *ProjectHandler) GetSlides(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	slides, err := h.Service.ListSlides(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, slides)
}

func (h *ProjectHandler) CreateSlide(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	var req model.CreateSlideRequest
	if err := response.Decode(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	slide, err := h.Service.CreateSlide(r.Context(), r.PathValue("id"), userID, req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, slide)
}

func (h *ProjectHandler) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	var req model.UpdateSlideRequest
	if err := response.Decode(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	slide, err := h.Service.UpdateSlide(r.Context(), r.PathValue("id"), r.PathValue("slideId"), userID, req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, slide)
}

func (h *ProjectHandler) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteSlide(r.Context(), r.PathValue("id"), r.PathValue("slideId"), userID); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, model.DeleteResponse{Deleted: true})
}

func (h *ProjectHandler) ReorderSlides(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	var req model.ReorderSlidesRequest
	if err := response.Decode(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	slides, err := h.Service.ReorderSlides(r.Context(), r.PathValue("id"), userID, req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, slides)
}
