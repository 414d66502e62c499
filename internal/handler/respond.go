package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/hostelgrub/api/internal/service"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps service errors to status codes. Anything unrecognized is
// logged with op and reported as a 500.
func writeError(w http.ResponseWriter, op string, err error) {
	var (
		ve *service.ValidationError
		ae *service.AuthError
		ne *service.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Message)
	case errors.As(err, &ae):
		writeMessage(w, http.StatusUnauthorized, ae.Message)
	case errors.As(err, &ne):
		writeMessage(w, http.StatusNotFound, ne.Message)
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
