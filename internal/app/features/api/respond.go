// internal/app/features/api/respond.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// errorBody is the JSON shape for every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// statusFor maps the error taxonomy to HTTP status codes. Unclassified
// errors are infrastructure failures and become 500s.
func statusFor(err error) (int, string) {
	switch apperr.Kind(err) {
	case apperr.ErrValidation:
		return http.StatusBadRequest, "validation"
	case apperr.ErrPermissionDenied:
		return http.StatusForbidden, "permission_denied"
	case apperr.ErrNotFound:
		return http.StatusNotFound, "not_found"
	case apperr.ErrDuplicateApplication:
		return http.StatusConflict, "duplicate_application"
	case apperr.ErrConflict:
		return http.StatusConflict, "conflict"
	case apperr.ErrCapacityExceeded:
		return http.StatusConflict, "capacity_exceeded"
	case apperr.ErrInvalidTransition:
		return http.StatusConflict, "invalid_transition"
	case apperr.ErrNotEligible:
		return http.StatusUnprocessableEntity, "not_eligible"
	}
	return http.StatusInternalServerError, ""
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, kind := statusFor(err)
	body := errorBody{Error: err.Error(), Kind: kind}
	if status == http.StatusInternalServerError {
		h.Log.Error("internal error", zap.Error(err))
		body.Error = "internal error"
	}
	h.writeJSON(w, status, body)
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.E(apperr.ErrValidation, "malformed request body")
	}
	return nil
}

var errMissingActor = errors.New("actor profile is required")
