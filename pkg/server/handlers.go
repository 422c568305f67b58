package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fdqms/gallery-backend/pkg/deletion"
)

// userIDRules constrains the {id} path segment.
const userIDRules = "required,max=128,printascii"

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`

	// Deadline is the deadline already in place on a 409.
	Deadline *time.Time `json:"deadline,omitempty"`
}

// CancelResponse is the body of a cancellation.
type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

type deletionHandler struct {
	service  DeletionService
	validate *validator.Validate
	logger   *slog.Logger
}

func (h *deletionHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if err := h.validate.Var(id, userIDRules); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: deletion.ErrInvalidUserID.Error()})
		return "", false
	}
	return id, true
}

// request handles POST /v1/users/{id}/deletion.
func (h *deletionHandler) request(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	pending, err := h.service.RequestDeletion(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, deletion.ErrAlreadyScheduled):
			resp := ErrorResponse{Error: err.Error()}
			var schedErr *deletion.ScheduleError
			if errors.As(err, &schedErr) && !schedErr.Existing.IsZero() {
				resp.Deadline = &schedErr.Existing
			}
			writeJSON(w, http.StatusConflict, resp)
		case errors.Is(err, deletion.ErrInvalidUserID):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			h.logger.ErrorContext(r.Context(), "deletion request failed", "user_id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusAccepted, pending)
}

// cancel handles DELETE /v1/users/{id}/deletion.
func (h *deletionHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, CancelResponse{Cancelled: h.service.CancelDeletion(r.Context(), id)})
}

// get handles GET /v1/users/{id}/deletion.
func (h *deletionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	pending, ok := h.service.Pending(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no pending deletion"})
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
