package handlers

import (
	"errors"
	"net/http"
	"strings"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/logger"
	"heartbridge/internal/validation"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Err(err).Int("status", status).Msg(logMsg)
	}

	http.Error(w, userMsg, status)
}

// StatusFor maps a domain error to an HTTP status and a message safe to show users
func StatusFor(err error) (int, string) {
	var (
		verr     validation.ValidationError
		rejected *apperrors.ContentRejected
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.As(err, &rejected):
		return http.StatusBadRequest, "Your text contains words that are not allowed: " + strings.Join(rejected.Words, ", ")
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid nickname or password"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, ErrForbiddenMsg
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, ErrNotFoundMsg
	case errors.Is(err, apperrors.ErrDuplicateNickname):
		return http.StatusConflict, "That nickname is already taken"
	case errors.Is(err, apperrors.ErrRequestAlreadyDecided):
		return http.StatusConflict, "That request has already been decided"
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, ErrUnavailable
	default:
		return http.StatusInternalServerError, ErrInternalServerError
	}
}

// respondWithServiceError writes the status mapped from err
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	status, msg := StatusFor(err)
	respondWithError(w, status, msg, logMsg, err)
}

// userMessage returns a message for re-rendering a form, and whether err is
// a user mistake rather than a server fault.
func userMessage(err error) (string, bool) {
	status, msg := StatusFor(err)
	return msg, status < http.StatusInternalServerError
}
