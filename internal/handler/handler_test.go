package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskhub/internal/message"
	"github.com/hitoshi/taskhub/internal/model"
	"github.com/hitoshi/taskhub/internal/task"
)

// --- モック定義 ---

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	createUserFn func(ctx context.Context, name, email string) (*model.UserProfile, error)
}

func (m *mockUserService) CreateUser(ctx context.Context, name, email string) (*model.UserProfile, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, name, email)
	}
	return &model.UserProfile{}, nil
}

// mockTaskService はTaskServiceInterfaceのモック実装。
type mockTaskService struct {
	addTaskFn        func(ctx context.Context, userID string, fields model.TaskFields) (*model.Task, error)
	updateTaskFn     func(ctx context.Context, taskID string, fields model.TaskFields) (*model.Task, error)
	deleteTaskFn     func(ctx context.Context, taskID string) error
	listTasksFn      func(ctx context.Context, userID string) ([]model.Task, error)
	updateSubTasksFn func(ctx context.Context, taskID string, inputs []task.SubTaskInput) ([]model.SubTask, error)
	listSubTasksFn   func(ctx context.Context, taskID string) ([]model.SubTask, error)
}

func (m *mockTaskService) AddTask(ctx context.Context, userID string, fields model.TaskFields) (*model.Task, error) {
	if m.addTaskFn != nil {
		return m.addTaskFn(ctx, userID, fields)
	}
	return &model.Task{}, nil
}

func (m *mockTaskService) UpdateTask(ctx context.Context, taskID string, fields model.TaskFields) (*model.Task, error) {
	if m.updateTaskFn != nil {
		return m.updateTaskFn(ctx, taskID, fields)
	}
	return &model.Task{}, nil
}

func (m *mockTaskService) DeleteTask(ctx context.Context, taskID string) error {
	if m.deleteTaskFn != nil {
		return m.deleteTaskFn(ctx, taskID)
	}
	return nil
}

func (m *mockTaskService) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	if m.listTasksFn != nil {
		return m.listTasksFn(ctx, userID)
	}
	return []model.Task{}, nil
}

func (m *mockTaskService) UpdateSubTasks(ctx context.Context, taskID string, inputs []task.SubTaskInput) ([]model.SubTask, error) {
	if m.updateSubTasksFn != nil {
		return m.updateSubTasksFn(ctx, taskID, inputs)
	}
	return []model.SubTask{}, nil
}

func (m *mockTaskService) ListSubTasks(ctx context.Context, taskID string) ([]model.SubTask, error) {
	if m.listSubTasksFn != nil {
		return m.listSubTasksFn(ctx, taskID)
	}
	return []model.SubTask{}, nil
}

// --- テストヘルパー ---

const (
	testUserID = "0b7a6c1e-3d2f-4e8a-9b1c-2d3e4f5a6b7c"
	testTaskID = "5f1d2c3b-4a59-4e6f-8d7c-6b5a49382716"
)

// envelope はテストでレスポンスを検査するためのエンベロープ。
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Status     string          `json:"status"`
	MsgCode    message.Code    `json:"msgCode"`
	Msg        json.RawMessage `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

// parseEnvelope はレスポンスボディをエンベロープとしてパースし、HTTPステータスとの一致を検証する。
func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if env.StatusCode != w.Code {
		t.Errorf("envelope statusCode = %d, HTTP status = %d", env.StatusCode, w.Code)
	}
	return env
}

// fieldMessages はバリデーションエラーのmsgをフィールドマップとして取り出す。
func fieldMessages(t *testing.T, env envelope) map[string]string {
	t.Helper()
	var fields map[string]string
	if err := json.Unmarshal(env.Msg, &fields); err != nil {
		t.Fatalf("msg is not a field map: %s", env.Msg)
	}
	return fields
}

// assertErrorEnvelope はエラーエンベロープのステータスとメッセージコードを検証する。
func assertErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode message.Code) envelope {
	t.Helper()
	if w.Code != wantStatus {
		t.Errorf("status = %d, want %d (body: %s)", w.Code, wantStatus, w.Body.String())
	}
	env := parseEnvelope(t, w)
	if env.Status != "error" {
		t.Errorf("envelope status = %q, want %q", env.Status, "error")
	}
	if env.MsgCode != wantCode {
		t.Errorf("msgCode = %q, want %q", env.MsgCode, wantCode)
	}
	if env.Data != nil {
		t.Errorf("error envelope must not carry data, got %s", env.Data)
	}
	return env
}
