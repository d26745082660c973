package model

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/hitoshi/taskhub/internal/message"
)

func TestAPIErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantCode   string
		wantMsg    message.Code
		wantStatus int
	}{
		{"validation", NewValidationError(map[string]string{"name": `"name" is required`}), ErrCodeValidation, message.ValidationFailed, http.StatusBadRequest},
		{"malformed body", NewMalformedBodyError(), ErrCodeMalformedBody, message.MalformedBody, http.StatusBadRequest},
		{"duplicate email", NewDuplicateEmailError(), ErrCodeDuplicateEmail, message.DuplicateEmail, http.StatusBadRequest},
		{"creation failed", NewCreationFailedError(), ErrCodeCreationFailed, message.UserCreationFailed, http.StatusBadRequest},
		{"user not found", NewUserNotFoundError(), ErrCodeUserNotFound, message.UserNotFound, http.StatusBadRequest},
		{"task not found", NewTaskNotFoundError(), ErrCodeTaskNotFound, message.TaskNotFound, http.StatusBadRequest},
		{"internal", NewInternalError(), ErrCodeInternal, message.InternalError, http.StatusInternalServerError},
		{"rate limited", NewRateLimitError(), ErrCodeRateLimited, message.TooManyRequests, http.StatusTooManyRequests},
		{"route not found", NewRouteNotFoundError(), ErrCodeRouteNotFound, message.RouteNotFound, http.StatusNotFound},
		{"method not allowed", NewMethodNotAllowedError(), ErrCodeMethodNotAllowed, message.MethodNotAllowed, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.MsgCode != tt.wantMsg {
				t.Errorf("MsgCode = %q, want %q", tt.err.MsgCode, tt.wantMsg)
			}
			if tt.err.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.wantStatus)
			}
			if tt.err.Message != message.Get(tt.wantMsg) {
				t.Errorf("Message = %q, want catalog text %q", tt.err.Message, message.Get(tt.wantMsg))
			}
		})
	}
}

// TestNewStoreFaultError_PassesCauseThrough は原因のメッセージがそのまま使われることを検証する。
func TestNewStoreFaultError_PassesCauseThrough(t *testing.T) {
	err := NewStoreFaultError(errors.New("connection reset by peer"))

	if err.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want %d", err.StatusCode, http.StatusInternalServerError)
	}
	if err.MsgCode != message.InternalError {
		t.Errorf("MsgCode = %q, want %q", err.MsgCode, message.InternalError)
	}
	if err.Message != "connection reset by peer" {
		t.Errorf("Message = %q, want cause message", err.Message)
	}
}

func TestNewStoreFaultError_NilCause(t *testing.T) {
	err := NewStoreFaultError(nil)
	if err.Message != message.Get(message.InternalError) {
		t.Errorf("Message = %q, want catalog text", err.Message)
	}
}

func TestAPIError_Error(t *testing.T) {
	err := NewValidationError(map[string]string{"email": `"email" must be a valid email`})
	if !strings.Contains(err.Error(), ErrCodeValidation) || !strings.Contains(err.Error(), "email") {
		t.Errorf("Error() = %q", err.Error())
	}

	var target *APIError
	if !errors.As(error(NewTaskNotFoundError()), &target) {
		t.Error("errors.As should match *APIError")
	}
}
