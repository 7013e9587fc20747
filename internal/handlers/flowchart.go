package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/crucial707/flowchart-api/internal/metrics"
	"github.com/crucial707/flowchart-api/internal/middleware"
	"github.com/crucial707/flowchart-api/internal/models"
	"github.com/crucial707/flowchart-api/internal/repo"
)

type FlowchartHandler struct {
	Repo *repo.FlowchartRepo
}

//
// ==========================
// Create Flowchart
// ==========================
//

func (h *FlowchartHandler) CreateFlowchart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		Title       string          `json:"title" validate:"required,min=1,max=255"`
		Description *string         `json:"description"`
		Data        json.RawMessage `json:"data" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	flowchart, err := h.Repo.Create(r.Context(), user.ID, input.Title, input.Description, input.Data)
	if err != nil {
		slog.Error("create flowchart failed", "error", err, "user_id", user.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncFlowchartsCreated()
	JSON(w, http.StatusCreated, flowchart)
}

//
// ==========================
// List Flowcharts
// ==========================
//

// ListFlowcharts returns the caller's flowcharts, most recently updated first.
func (h *FlowchartHandler) ListFlowcharts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	flowcharts, err := h.Repo.ListByOwner(r.Context(), user.ID)
	if err != nil {
		slog.Error("list flowcharts failed", "error", err, "user_id", user.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, flowcharts)
}

//
// ==========================
// Get Flowchart By ID
// ==========================
//

func (h *FlowchartHandler) GetFlowchart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	flowchart, err := h.Repo.GetByIDAndOwner(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "flowchart not found", http.StatusNotFound)
			return
		}
		slog.Error("get flowchart failed", "error", err, "user_id", user.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, flowchart)
}

//
// ==========================
// Update Flowchart
// ==========================
//

// UpdateFlowchart applies a partial update: only the fields present in the
// body change, and updated_at is bumped in the same statement.
func (h *FlowchartHandler) UpdateFlowchart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	var patch models.FlowchartPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if patch.Title != nil {
		if err := validator.New().Var(*patch.Title, "min=1,max=255"); err != nil {
			JSONValidationError(w, "validation failed", map[string]string{"title": "must be between 1 and 255 characters"}, http.StatusBadRequest)
			return
		}
	}

	flowchart, err := h.Repo.UpdateByIDAndOwner(r.Context(), id, user.ID, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "flowchart not found", http.StatusNotFound)
			return
		}
		slog.Error("update flowchart failed", "error", err, "user_id", user.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, flowchart)
}

//
// ==========================
// Delete Flowchart
// ==========================
//

func (h *FlowchartHandler) DeleteFlowchart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.Repo.DeleteByIDAndOwner(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			JSONError(w, "flowchart not found", http.StatusNotFound)
			return
		}
		slog.Error("delete flowchart failed", "error", err, "user_id", user.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
