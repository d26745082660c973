// Package task はタスクとサブタスクのライフサイクルを管理するドメインロジックを提供する。
//
// タスクとサブタスクは所有ユーザーのドキュメントに埋め込まれており、
// 削除は常にisActiveをfalseにする論理削除として行う。
package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/taskhub/internal/metrics"
	"github.com/hitoshi/taskhub/internal/model"
	"github.com/hitoshi/taskhub/internal/repository"
)

// Service はタスク管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
	metrics  metrics.MetricsCollector
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		userRepo: userRepo,
		metrics:  collector,
		now:      time.Now,
	}
}

// AddTask はユーザーのタスク列の末尾に新しいタスクを追加する。
// 未指定のフィールドにはデフォルト値（deadline=現在時刻, status=Pending）が適用される。
// 追加後のタスク列から採番したIDでタスクを引き直して返す。
func (s *Service) AddTask(ctx context.Context, userID string, fields model.TaskFields) (*model.Task, error) {
	now := s.now().UTC()
	task := model.NewTask(fields, now)

	tasks, err := s.userRepo.PushTask(ctx, userID, task, now)
	if err != nil {
		s.recordStoreError("push_task")
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, model.NewUserNotFoundError()
	}

	added := resolveAppended(tasks, task.ID)

	slog.Info("task added",
		slog.String("user_id", userID),
		slog.String("task_id", added.ID),
	)
	if s.metrics != nil {
		s.metrics.RecordTaskAdded()
	}
	return &added, nil
}

// resolveAppended は追加後のタスク列から追加したタスクを探す。
// 採番したIDが見つからない場合は末尾の要素を返す。
func resolveAppended(tasks []model.Task, taskID string) model.Task {
	for i := len(tasks) - 1; i >= 0; i-- {
		if tasks[i].ID == taskID {
			return tasks[i]
		}
	}
	return tasks[len(tasks)-1]
}

// UpdateTask はタスクのsubject, deadline, statusを上書きし、ユーザードキュメント全体を保存する。
//
// 部分更新ではない。fieldsでnilのフィールドは空の値（subjectは"", deadlineはnil, statusは""）で
// 上書きされる。定義外のstatusは保存前にStoreFaultとして拒否する。
func (s *Service) UpdateTask(ctx context.Context, taskID string, fields model.TaskFields) (*model.Task, error) {
	if fields.Status != nil && *fields.Status != "" && !fields.Status.Valid() {
		return nil, model.NewStoreFaultError(
			fmt.Errorf("task validation failed: status: %q is not a valid enum value", string(*fields.Status)),
		)
	}

	user, err := s.userRepo.FindByTaskID(ctx, taskID)
	if err != nil {
		s.recordStoreError("find_user_by_task")
		return nil, err
	}
	if user == nil {
		return nil, model.NewTaskNotFoundError()
	}
	task := user.FindTask(taskID)
	if task == nil {
		return nil, model.NewTaskNotFoundError()
	}

	now := s.now().UTC()
	task.Subject = ""
	if fields.Subject != nil {
		task.Subject = *fields.Subject
	}
	task.Deadline = nil
	if fields.Deadline != nil {
		d := *fields.Deadline
		task.Deadline = &d
	}
	task.Status = ""
	if fields.Status != nil {
		task.Status = *fields.Status
	}
	task.UpdatedAt = now
	user.UpdatedAt = now

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.recordStoreError("save_user")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTaskUpdated()
	}
	updated := *task
	return &updated, nil
}

// DeleteTask はタスクを論理削除する。配列内の位置やサブタスクは変更しない。
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	ok, err := s.userRepo.DeactivateTask(ctx, taskID, s.now().UTC())
	if err != nil {
		s.recordStoreError("deactivate_task")
		return err
	}
	if !ok {
		return model.NewTaskNotFoundError()
	}

	slog.Info("task soft-deleted", slog.String("task_id", taskID))
	if s.metrics != nil {
		s.metrics.RecordTaskDeleted()
	}
	return nil
}

// ListTasks はユーザーの有効なタスクを格納順で返す。各タスクのサブタスクも有効なものに絞り込む。
// ユーザーが存在しない場合と有効なタスクが1件もない場合は、どちらもUserNotFoundを返す。
func (s *Service) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	tasks, found, err := s.userRepo.FindActiveTasks(ctx, userID)
	if err != nil {
		s.recordStoreError("find_active_tasks")
		return nil, err
	}
	if !found || len(tasks) == 0 {
		return nil, model.NewUserNotFoundError()
	}
	return tasks, nil
}

// UpdateSubTasks はタスクのサブタスク列を入力とマージして保存し、マージ結果を返す。
//
// タスクが存在しない場合と入力が空の場合は、保存せずに空の結果を返す。
// どちらもエラーにはしない。
func (s *Service) UpdateSubTasks(ctx context.Context, taskID string, inputs []SubTaskInput) ([]model.SubTask, error) {
	if len(inputs) == 0 {
		return []model.SubTask{}, nil
	}

	user, err := s.userRepo.FindByTaskID(ctx, taskID)
	if err != nil {
		s.recordStoreError("find_user_by_task")
		return nil, err
	}
	if user == nil {
		return []model.SubTask{}, nil
	}
	task := user.FindTask(taskID)
	if task == nil {
		return []model.SubTask{}, nil
	}

	now := s.now().UTC()
	merged := MergeSubTasks(task.SubTasks, inputs, now)
	task.SubTasks = merged
	task.UpdatedAt = now
	user.UpdatedAt = now

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.recordStoreError("save_user")
		return nil, err
	}

	slog.Info("sub-tasks merged",
		slog.String("task_id", taskID),
		slog.Int("incoming", len(inputs)),
		slog.Int("merged", len(merged)),
	)
	if s.metrics != nil {
		s.metrics.RecordSubTasksMerged(len(merged))
	}
	return merged, nil
}

// ListSubTasks はタスクの有効なサブタスクを格納順で返す。
// タスクが存在しない場合と有効なサブタスクが1件もない場合は、どちらもTaskNotFoundを返す。
func (s *Service) ListSubTasks(ctx context.Context, taskID string) ([]model.SubTask, error) {
	subTasks, found, err := s.userRepo.FindActiveSubTasks(ctx, taskID)
	if err != nil {
		s.recordStoreError("find_active_sub_tasks")
		return nil, err
	}
	if !found || len(subTasks) == 0 {
		return nil, model.NewTaskNotFoundError()
	}
	return subTasks, nil
}

func (s *Service) recordStoreError(operation string) {
	if s.metrics != nil {
		s.metrics.RecordStoreError(operation)
	}
}
