package model

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/hitoshi/taskhub/internal/message"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"User@Example.COM", "user@example.com"},
		{"  alice@example.com  ", "alice@example.com"},
		{"bob@example.com", "bob@example.com"},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewUser_Defaults(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	u := NewUser("  Reyansh Joshi ", " Reyansh@Example.com", now)

	if u.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if u.Name != "Reyansh Joshi" {
		t.Errorf("Name = %q, want trimmed", u.Name)
	}
	if u.Email != "reyansh@example.com" {
		t.Errorf("Email = %q, want normalized", u.Email)
	}
	if !u.IsActive {
		t.Error("expected IsActive true")
	}
	if u.Tasks == nil || len(u.Tasks) != 0 {
		t.Errorf("Tasks = %v, want empty", u.Tasks)
	}
}

func TestUser_Profile_ExcludesTasks(t *testing.T) {
	u := NewUser("n", "e@example.com", time.Now())
	u.Tasks = append(u.Tasks, Task{ID: "t1"})

	p := u.Profile()
	if p.ID != u.ID || p.Email != u.Email || p.Name != u.Name {
		t.Errorf("Profile = %+v, want fields copied from user", p)
	}
}

func TestUser_FindTask_ReturnsPointerIntoSlice(t *testing.T) {
	u := &User{Tasks: []Task{{ID: "a"}, {ID: "b"}}}

	task := u.FindTask("b")
	if task == nil {
		t.Fatal("expected task b")
	}
	task.Subject = "changed"
	if u.Tasks[1].Subject != "changed" {
		t.Error("expected modification through pointer to be visible in User.Tasks")
	}

	if u.FindTask("missing") != nil {
		t.Error("expected nil for missing task")
	}
}

func TestAPIError_Constructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *APIError
		code    string
		msgCode message.Code
		status  int
	}{
		{"duplicate", NewDuplicateEmailError(), ErrCodeDuplicateEmail, message.DuplicateEmail, http.StatusBadRequest},
		{"creation", NewCreationFailedError(), ErrCodeCreationFailed, message.UserCreationFailed, http.StatusBadRequest},
		{"user", NewUserNotFoundError(), ErrCodeUserNotFound, message.UserNotFound, http.StatusBadRequest},
		{"task", NewTaskNotFoundError(), ErrCodeTaskNotFound, message.TaskNotFound, http.StatusBadRequest},
		{"body", NewMalformedBodyError(), ErrCodeMalformedBody, message.MalformedBody, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.MsgCode != tt.msgCode {
				t.Errorf("MsgCode = %q, want %q", tt.err.MsgCode, tt.msgCode)
			}
			if tt.err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.status)
			}
			if tt.err.Message != message.Get(tt.msgCode) {
				t.Errorf("Message = %q, want catalog text", tt.err.Message)
			}
		})
	}
}

func TestNewStoreFaultError_PassesMessageThrough(t *testing.T) {
	err := NewStoreFaultError(errors.New("connection refused"))
	if err.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", err.StatusCode)
	}
	if err.Message != "connection refused" {
		t.Errorf("Message = %q, want verbatim cause", err.Message)
	}
}

func TestNewValidationError_CarriesFields(t *testing.T) {
	err := NewValidationError(map[string]string{"email": `"email" must be a valid email`})
	if err.Fields["email"] == "" {
		t.Error("expected email field message")
	}

	var apiErr *APIError
	if !errors.As(error(err), &apiErr) {
		t.Fatal("expected errors.As to match *APIError")
	}
}
