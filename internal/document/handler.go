package handler

import (
	"net/http"

	"lexivo/internal/document/model"
	"lexivo/internal/document/service"
	"lexivo/middleware"
	"lexivo/pkg/response"
)

type DocumentHandler struct {
	Service *service.DocumentService
}

func NewDocumentHandler(service *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Service: service}
}

// Register mounts the document routes on mux behind auth.
func (h *DocumentHandler) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.Handle("GET /api/documents", auth(http.HandlerFunc(h.GetDocuments)))
	mux.Handle("POST /api/documents", auth(http.HandlerFunc(h.CreateDocument)))
	mux.Handle("GET /api/documents/{id}", auth(http.HandlerFunc(h.GetDocument)))
	mux.Handle("PUT /api/documents/{id}", auth(http.HandlerFunc(h.UpdateDocument)))
	mux.Handle("DELETE /api/documents/{id}", auth(http.HandlerFunc(h.DeleteDocument)))
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	docs, err := h.Service.GetDocuments(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, docs)
}

func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateDocRequest
	if err := response.Decode(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}

	doc, err := h.Service.CreateDocument(r.Context(), userID, req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	doc, err := h.Service.GetDocument(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, doc)
}

func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	docID := r.PathValue("id")
	if docID == service.NewDocumentID {
		response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, "Cannot update a document that has not been created yet")
		return
	}

	var req model.UpdateDocRequest
	if err := response.Decode(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}

	doc, err := h.Service.UpdateDocument(r.Context(), docID, userID, req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteDocument(r.Context(), r.PathValue("id"), userID); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, model.DeleteResponse{Deleted: true})
}
