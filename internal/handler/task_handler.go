package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/taskhub/internal/message"
	"github.com/hitoshi/taskhub/internal/middleware"
	"github.com/hitoshi/taskhub/internal/model"
	"github.com/hitoshi/taskhub/internal/task"
	"github.com/hitoshi/taskhub/internal/validation"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	AddTask(ctx context.Context, userID string, fields model.TaskFields) (*model.Task, error)
	UpdateTask(ctx context.Context, taskID string, fields model.TaskFields) (*model.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	ListTasks(ctx context.Context, userID string) ([]model.Task, error)
	UpdateSubTasks(ctx context.Context, taskID string, inputs []task.SubTaskInput) ([]model.SubTask, error)
	ListSubTasks(ctx context.Context, taskID string) ([]model.SubTask, error)
}

// TaskHandler はタスクとサブタスクのHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

// addTaskRequest はタスク追加リクエストのボディ。
type addTaskRequest struct {
	Subject  string `json:"subject" validate:"required,notblank,plaintext"`
	Deadline string `json:"deadline" validate:"required,date"`
	Status   string `json:"status" validate:"omitempty,taskstatus"`
}

// updateTaskRequest はタスク更新リクエストのボディ。全フィールド任意。
type updateTaskRequest struct {
	Subject  *string `json:"subject" validate:"omitempty,plaintext"`
	Deadline *string `json:"deadline" validate:"omitempty,date"`
	Status   *string `json:"status"`
}

// updateSubTasksRequest はサブタスク更新リクエストのボディ。
type updateSubTasksRequest struct {
	SubTasks []subTaskRequest `json:"subTasks" validate:"required,dive"`
}

type subTaskRequest struct {
	ID       string `json:"_id"`
	Subject  string `json:"subject" validate:"required,notblank,plaintext"`
	Deadline string `json:"deadline" validate:"required,date"`
	Status   string `json:"status" validate:"omitempty,taskstatus"`
	IsActive *bool  `json:"isActive" validate:"required"`
}

// mergedSubTasksResponse はサブタスク更新のレスポンスデータ。
type mergedSubTasksResponse struct {
	MergedArray []model.SubTask `json:"mergedArray"`
}

// AddTask はユーザーにタスクを追加する。
// POST /users/add-task/{userId}
func (h *TaskHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var req addTaskRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		middleware.WriteError(w, apiErr)
		return
	}

	// validateタグで検証済みのためエラーにはならない
	deadline, _ := validation.ParseDate(req.Deadline)
	fields := model.TaskFields{
		Subject:  &req.Subject,
		Deadline: &deadline,
	}
	if req.Status != "" {
		status := model.TaskStatus(req.Status)
		fields.Status = &status
	}

	added, err := h.service.AddTask(r.Context(), userID, fields)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, message.TaskAdded, added)
}

// UpdateTask はタスクのsubject, deadline, statusを上書きする。
// PUT /users/update-task/{taskId}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}

	var req updateTaskRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		middleware.WriteError(w, apiErr)
		return
	}

	var fields model.TaskFields
	fields.Subject = req.Subject
	if req.Deadline != nil {
		deadline, _ := validation.ParseDate(*req.Deadline)
		fields.Deadline = &deadline
	}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		fields.Status = &status
	}

	updated, err := h.service.UpdateTask(r.Context(), taskID, fields)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, message.TaskUpdated, updated)
}

// DeleteTask はタスクを論理削除する。
// DELETE /users/delete-task/{taskId}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}

	if err := h.service.DeleteTask(r.Context(), taskID); err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, message.TaskDeleted, nil)
}

// ListTasks はユーザーの有効なタスク一覧を返す。
// GET /users/get-tasks/{userId}
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	tasks, err := h.service.ListTasks(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, message.TasksListed, tasks)
}

// UpdateSubTasks はタスクのサブタスク列を入力とマージする。
// PUT /users/update-sub-tasks/{taskId}
func (h *TaskHandler) UpdateSubTasks(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}

	var req updateSubTasksRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		middleware.WriteError(w, apiErr)
		return
	}

	merged, err := h.service.UpdateSubTasks(r.Context(), taskID, toSubTaskInputs(req.SubTasks))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, message.SubTasksUpdated, mergedSubTasksResponse{MergedArray: merged})
}

// ListSubTasks はタスクの有効なサブタスク一覧を返す。
// GET /users/list-sub-tasks/{taskId}
func (h *TaskHandler) ListSubTasks(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "taskId")
	if !ok {
		return
	}

	subTasks, err := h.service.ListSubTasks(r.Context(), taskID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, message.SubTasksListed, subTasks)
}

// --- ヘルパー関数 ---

func toSubTaskInputs(reqs []subTaskRequest) []task.SubTaskInput {
	inputs := make([]task.SubTaskInput, len(reqs))
	for i, req := range reqs {
		var deadline *time.Time
		if d, err := validation.ParseDate(req.Deadline); err == nil {
			deadline = &d
		}
		inputs[i] = task.SubTaskInput{
			ID:       req.ID,
			Subject:  req.Subject,
			Deadline: deadline,
			Status:   model.TaskStatus(req.Status),
			IsActive: req.IsActive != nil && *req.IsActive,
		}
	}
	return inputs
}
