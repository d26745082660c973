package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus はタスクおよびサブタスクの進捗状態を表す。
type TaskStatus string

const (
	// TaskStatusPending は未完了状態。デフォルト値。
	TaskStatusPending TaskStatus = "Pending"
	// TaskStatusCompleted は完了状態。
	TaskStatusCompleted TaskStatus = "Completed"
)

// Valid はステータスが定義済みの値かどうかを返す。
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// Task はユーザーに埋め込まれるタスク。
// IsActiveがfalseのタスクは論理削除済みとして扱い、配列からは除去しない。
type Task struct {
	ID        string     `json:"_id" bson:"_id"`
	Subject   string     `json:"subject" bson:"subject"`
	Deadline  *time.Time `json:"deadline,omitempty" bson:"deadline,omitempty"`
	Status    TaskStatus `json:"status,omitempty" bson:"status,omitempty"`
	IsActive  bool       `json:"isActive" bson:"isActive"`
	SubTasks  []SubTask  `json:"subTasks" bson:"subTasks"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// SubTask はタスクに埋め込まれるサブタスク。
type SubTask struct {
	ID        string     `json:"_id" bson:"_id"`
	Subject   string     `json:"subject" bson:"subject"`
	Deadline  *time.Time `json:"deadline,omitempty" bson:"deadline,omitempty"`
	Status    TaskStatus `json:"status,omitempty" bson:"status,omitempty"`
	IsActive  bool       `json:"isActive" bson:"isActive"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// TaskFields はタスク作成時に呼び出し側が指定できる項目。
// nilのフィールドは未指定を表し、NewTaskでデフォルト値が適用される。
type TaskFields struct {
	Subject  *string
	Deadline *time.Time
	Status   *TaskStatus
}

// NewTask はデフォルト値を適用したTaskを生成する。
// デフォルト値: deadline=now, status=Pending, isActive=true, subTasks=[]
func NewTask(fields TaskFields, now time.Time) Task {
	t := Task{
		ID:        uuid.NewString(),
		Status:    TaskStatusPending,
		IsActive:  true,
		SubTasks:  []SubTask{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if fields.Subject != nil {
		t.Subject = *fields.Subject
	}
	if fields.Deadline != nil {
		d := *fields.Deadline
		t.Deadline = &d
	} else {
		d := now
		t.Deadline = &d
	}
	if fields.Status != nil {
		t.Status = *fields.Status
	}
	return t
}

// NewSubTask はデフォルト値を適用したSubTaskを生成する。
// idが空の場合は新しいIDを採番する。
func NewSubTask(id, subject string, deadline *time.Time, status TaskStatus, isActive bool, now time.Time) SubTask {
	if id == "" {
		id = uuid.NewString()
	}
	if status == "" {
		status = TaskStatusPending
	}
	d := now
	if deadline != nil {
		d = *deadline
	}
	return SubTask{
		ID:        id,
		Subject:   subject,
		Deadline:  &d,
		Status:    status,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ActiveTasks はIsActiveがtrueのタスクのみを格納順で返す。
// 各タスクのサブタスクもIsActiveがtrueのものに絞り込む。元のスライスは変更しない。
func ActiveTasks(tasks []Task) []Task {
	result := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsActive {
			continue
		}
		t.SubTasks = ActiveSubTasks(t.SubTasks)
		result = append(result, t)
	}
	return result
}

// ActiveSubTasks はIsActiveがtrueのサブタスクのみを格納順で返す。
func ActiveSubTasks(subTasks []SubTask) []SubTask {
	result := make([]SubTask, 0, len(subTasks))
	for _, s := range subTasks {
		if s.IsActive {
			result = append(result, s)
		}
	}
	return result
}
