package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"worktimer/internal/errors"
	"worktimer/internal/validation"
)

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation, errors.ErrorTypeImport:
		return http.StatusUnprocessableEntity
	case errors.ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypePermission:
		return http.StatusForbidden
	case errors.ErrorTypeUnauthenticated:
		return http.StatusUnauthorized
	case errors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.ShouldLogError(err) {
		s.log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}

	writeJSON(w, StatusFor(err), errorBody{
		Error:  errors.GetUserMessage(err),
		Code:   errors.GetErrorCode(err),
		Fields: validation.FieldMessagesOf(err),
	})
}
