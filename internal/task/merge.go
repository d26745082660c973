package task

import (
	"time"

	"github.com/hitoshi/taskhub/internal/model"
)

// SubTaskInput はサブタスク一括更新の入力1件分。
// IDが空の場合は新規サブタスクとして扱う。
type SubTaskInput struct {
	ID       string
	Subject  string
	Deadline *time.Time
	Status   model.TaskStatus
	IsActive bool
}

// MergeSubTasks は既存のサブタスク列に入力列をIDで突き合わせてマージする。
//
// 入力を先頭から順に処理し、すでにマージ結果にあるIDなら内容を置き換え、なければ末尾に追加する。
// IDのない入力は常に新しいIDで追加される。その後、マージ結果に含まれない既存のサブタスクを
// 格納順のまま末尾に追加する。既存のサブタスクを置き換えた場合はcreatedAtを引き継ぎ、
// updatedAtをnowにする。
//
// existingとincomingは変更しない。
func MergeSubTasks(existing []model.SubTask, incoming []SubTaskInput, now time.Time) []model.SubTask {
	stored := make(map[string]model.SubTask, len(existing))
	for _, s := range existing {
		if _, ok := stored[s.ID]; !ok {
			stored[s.ID] = s
		}
	}

	merged := make([]model.SubTask, 0, len(existing)+len(incoming))
	position := make(map[string]int, len(existing)+len(incoming))

	for _, in := range incoming {
		if in.ID != "" {
			if i, ok := position[in.ID]; ok {
				createdAt := merged[i].CreatedAt
				merged[i] = subTaskFromInput(in, now)
				merged[i].CreatedAt = createdAt
				continue
			}
		}

		sub := subTaskFromInput(in, now)
		if prev, ok := stored[sub.ID]; ok && in.ID != "" {
			sub.CreatedAt = prev.CreatedAt
		}
		position[sub.ID] = len(merged)
		merged = append(merged, sub)
	}

	for _, s := range existing {
		if _, ok := position[s.ID]; ok {
			continue
		}
		position[s.ID] = len(merged)
		merged = append(merged, s)
	}

	return merged
}

func subTaskFromInput(in SubTaskInput, now time.Time) model.SubTask {
	return model.NewSubTask(in.ID, in.Subject, in.Deadline, in.Status, in.IsActive, now)
}
