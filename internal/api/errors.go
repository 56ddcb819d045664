package api

import (
	"encoding/json"
	"net/http"

	llmerrors "github.com/ahrav/exam-grader/internal/llm/errors"
)

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail names the failure kind and a message safe to show a student.
type ErrorDetail struct {
	Kind    llmerrors.Kind `json:"kind"`
	Message string         `json:"message"`
}

// statusFor maps a grading failure kind to an HTTP status.
func statusFor(kind llmerrors.Kind) int {
	switch kind {
	case llmerrors.KindMissingCredential:
		return http.StatusUnauthorized
	case llmerrors.KindInvalidCredentialFormat,
		llmerrors.KindInvalidModel,
		llmerrors.KindValidation:
		return http.StatusBadRequest
	case llmerrors.KindProvider,
		llmerrors.KindEmptyReply,
		llmerrors.KindTransport:
		return http.StatusBadGateway
	case llmerrors.KindCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, kind llmerrors.Kind, msg string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Kind: kind, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
