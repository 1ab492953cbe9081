package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"RentalLedger/internal/backup"
	"RentalLedger/internal/calendar"
	"RentalLedger/internal/reports"
	"RentalLedger/internal/services"
)

// maxBodyBytes bounds request bodies. Orders carry proof images as data URLs
// and a restore carries every order, so this is generous.
const maxBodyBytes = 32 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, backup.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrMalformedBackup):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, reports.ErrInvalidMonth),
		errors.Is(err, calendar.ErrInvalidPolicy):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Internal errors are logged and not
// echoed to the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error(op+" failed", zapRequest(r, err)...)
		writeError(w, status, op+" failed")
		return
	}
	writeError(w, status, err.Error())
}
