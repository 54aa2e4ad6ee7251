package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"accredia/internal/auth"
)

// Success responses wrap the payload as {"data": ...}; failures as
// {"error": "..."}.

func respondData(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(map[string]interface{}{"data": v})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// respondServiceError maps service sentinel errors onto the status taxonomy.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, auth.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
