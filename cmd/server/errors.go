package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/Simplici0/quotedesk/internal/goals"
	"github.com/Simplici0/quotedesk/internal/quotes"
	"github.com/Simplici0/quotedesk/internal/store"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeFieldError(w, r, "", message, code, status)
}

func writeFieldError(w http.ResponseWriter, r *http.Request, field, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:     message,
		Code:      code,
		Field:     field,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into dst and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		writeError(w, r, msg, "INVALID_JSON", http.StatusBadRequest)
		return false
	}
	return true
}

var goalFields = map[error]string{
	goals.ErrGoalType:   "goal_type",
	goals.ErrPeriodType: "period_type",
	goals.ErrTarget:     "target_value",
	goals.ErrPeriod:     "period_end",
}

// fail maps service and store errors onto HTTP responses. Unexpected errors
// are logged with op and hidden from the client.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *quotes.ValidationError
	if errors.As(err, &verr) {
		writeFieldError(w, r, verr.Field, verr.Error(), "VALIDATION", http.StatusBadRequest)
		return
	}
	for target, field := range goalFields {
		if errors.Is(err, target) {
			writeFieldError(w, r, field, err.Error(), "VALIDATION", http.StatusBadRequest)
			return
		}
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, "not found", "NOT_FOUND", http.StatusNotFound)
		return
	}

	log.Printf("%s: %v request_id=%s", op, err, requestIDFromContext(r.Context()))
	writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
}

func invalidField(w http.ResponseWriter, r *http.Request, field, message string) {
	writeFieldError(w, r, field, field+": "+message, "VALIDATION", http.StatusBadRequest)
}
