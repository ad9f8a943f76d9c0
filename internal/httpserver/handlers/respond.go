package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emberhav/pricewatch/internal/tracker"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeTrackerError maps the tracker's sentinel errors onto HTTP
// statuses; anything unrecognized is a 500 with a generic body.
func writeTrackerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "invalid listing url")
	case errors.Is(err, tracker.ErrDuplicate):
		writeError(w, http.StatusConflict, "item already tracked")
	case errors.Is(err, tracker.ErrLimitReached):
		writeError(w, http.StatusConflict, "tracked item limit reached")
	case errors.Is(err, tracker.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
