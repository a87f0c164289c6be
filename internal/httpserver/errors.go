package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"messagely/internal/domain"
)

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors onto HTTP statuses. Anything outside the
// taxonomy (driver failures, connection loss) surfaces as a 500 without
// leaking details.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrDuplicateUser):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrMessageNotFound):
		status = http.StatusNotFound
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
