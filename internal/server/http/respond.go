package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/osokin/talkie/internal/errs"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain sentinels to the wire messages clients
// surface verbatim.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidPhone),
		errors.Is(err, errs.ErrInvalidNickname),
		errors.Is(err, errs.ErrInvalidUsername),
		errors.Is(err, errs.ErrSelfFriend):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, "Nickname or username already taken")
	case errors.Is(err, errs.ErrCodeRejected):
		writeError(w, http.StatusBadRequest, "Invalid or expired code")
	case errors.Is(err, errs.ErrTooManyAttempts):
		writeError(w, http.StatusBadRequest, "Too many failed attempts")
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}
