package handler

import (
	"net/http"

	"lexivo/internal/ai/model"
	"lexivo/internal/ai/service"
	"lexivo/middleware"
	"lexivo/pkg/response"
)

type AIHandler struct {
	Service *service.AIService
}

func NewAIHandler(service *service.AIService) *AIHandler {
	return &AIHandler{Service: service}
}

// Register mounts the AI routes behind auth and then the per-user limiter.
func (h *AIHandler) Register(mux *http.ServeMux, auth, limit func(http.Handler) http.Handler) {
	wrap := func(f http.HandlerFunc) http.Handler { return auth(limit(f)) }
	mux.Handle("POST /api/ai/grammar-check", wrap(h.GrammarCheck))
	mux.Handle("POST /api/ai/variations", wrap(h.Variations))
	mux.Handle("POST /api/projects/{id}/generate", wrap(h.GenerateSlides))
}

func (h *AIHandler) GrammarCheck(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.RequireUser(w, r); !ok {
		return
	}
	var req model.GrammarCheckRequest
	if err := response.Decode(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	result, err := h.Service.CheckGrammar(r.Context(), req.Text)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, result)
}

func (h *AIHandler) Variations(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.RequireUser(w, r); !ok {
		return
	}
	var req model.VariationsRequest
	if err := response.Decode(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	result, err := h.Service.GenerateVariations(r.Context(), req.Text)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, result)
}

func (h *AIHandler) GenerateSlides(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}
	var req model.GenerateSlidesRequest
	if err := response.DecodeOptional(r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}
	result, err := h.Service.GenerateSlides(r.Context(), r.PathValue("id"), userID, req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, result)
}
