package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"heartbridge/internal/apperrors"
	"heartbridge/internal/logger"
	"heartbridge/internal/validation"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}

	body := strings.TrimSpace(recorder.Body.String())
	if body != "Teapot" {
		t.Fatalf("expected body 'Teapot', got %q", body)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger.Configure(logger.Config{Level: logger.InfoLevel, Output: &buf})
	defer logger.Configure(logger.Config{Level: logger.InfoLevel})

	recorder := httptest.NewRecorder()
	err := errors.New("boom")

	respondWithError(recorder, 500, "Internal server error", "", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Internal server error") {
		t.Fatalf("expected log to include user message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", validation.ValidationError{Field: "content", Message: "too long"}, http.StatusBadRequest},
		{"content rejected", &apperrors.ContentRejected{Words: []string{"darn"}}, http.StatusBadRequest},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", apperrors.Forbidden("nope"), http.StatusForbidden},
		{"not found", apperrors.NotFound("post"), http.StatusNotFound},
		{"duplicate", apperrors.ErrDuplicateNickname, http.StatusConflict},
		{"decided", apperrors.ErrRequestAlreadyDecided, http.StatusConflict},
		{"storage", apperrors.Storage("query failed", errors.New("disk I/O")), http.StatusServiceUnavailable},
		{"unknown", errors.New("???"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := StatusFor(tt.err)
			if got != tt.want {
				t.Errorf("StatusFor() = %d, want %d", got, tt.want)
			}
			if msg == "" {
				t.Error("StatusFor() returned an empty message")
			}
		})
	}

	_, msg := StatusFor(apperrors.Storage("query failed", errors.New("secret dsn")))
	if strings.Contains(msg, "secret") {
		t.Errorf("storage message leaks detail: %q", msg)
	}
}
