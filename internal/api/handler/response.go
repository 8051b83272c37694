package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"customer-engine/internal/api/handler/dto"
	"customer-engine/internal/pkg/apperrors"
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError maps domain error kinds onto HTTP statuses. Messages of
// unexpected errors are not echoed to the client.
func respondError(w http.ResponseWriter, err error) {
	status, code, message, field := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Default().Error("Unhandled internal error", "error", err)
	}
	respondJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
	})
}

func statusFor(err error) (status int, code, message, field string) {
	var validationError *apperrors.ValidationError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error(), ""
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return http.StatusConflict, "ALREADY_EXISTS", err.Error(), ""
	case errors.As(err, &validationError):
		return http.StatusBadRequest, "VALIDATION_FAILED", validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), ""
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), ""
	default:
		return http.StatusInternalServerError, "INTERNAL", "An unexpected error occurred.", ""
	}
}

// isClientError reports whether err is the caller's fault, for log levels.
func isClientError(err error) bool {
	status, _, _, _ := statusFor(err)
	return status < http.StatusInternalServerError
}
