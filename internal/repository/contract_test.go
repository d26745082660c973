package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/taskhub/internal/model"
)

// runUserRepositoryContract はUserRepository実装が共通して満たすべき振る舞いを検証する。
// PostgreSQLとMongoDBの両実装から呼び出される。
func runUserRepositoryContract(t *testing.T, repo UserRepository) {
	t.Helper()
	ctx := context.Background()
	// ストアの時刻精度（PostgreSQLはマイクロ秒、MongoDBはミリ秒）に合わせる
	now := time.Now().UTC().Truncate(time.Millisecond)

	alice := model.NewUser("Alice", "  Alice@Example.com ", now)
	created, err := repo.Create(ctx, alice)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created == nil {
		t.Fatal("Create returned nil user")
	}
	if created.Email != "alice@example.com" {
		t.Errorf("created.Email = %q, want %q", created.Email, "alice@example.com")
	}

	t.Run("FindByEmail_正規化して検索", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "ALICE@example.com ")
		if err != nil {
			t.Fatalf("FindByEmail returned error: %v", err)
		}
		if got == nil || got.ID != alice.ID {
			t.Fatalf("FindByEmail = %v, want user %s", got, alice.ID)
		}
		if got.Tasks == nil {
			t.Error("Tasks should be an empty slice, got nil")
		}
	})

	t.Run("FindByEmail_存在しない場合nil", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("FindByEmail returned error: %v", err)
		}
		if got != nil {
			t.Errorf("FindByEmail = %v, want nil", got)
		}
	})

	t.Run("Create_重複メールはErrDuplicateEmail", func(t *testing.T) {
		dup := model.NewUser("Other", "alice@example.com", now)
		_, err := repo.Create(ctx, dup)
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Errorf("Create duplicate error = %v, want ErrDuplicateEmail", err)
		}
	})

	t.Run("PushTask_存在しないユーザーはnil", func(t *testing.T) {
		task := model.NewTask(model.TaskFields{}, now)
		tasks, err := repo.PushTask(ctx, "00000000-0000-0000-0000-000000000000", task, now)
		if err != nil {
			t.Fatalf("PushTask returned error: %v", err)
		}
		if tasks != nil {
			t.Errorf("PushTask = %v, want nil", tasks)
		}
	})

	first := newContractTask("first", now)
	second := newContractTask("second", now)
	second.SubTasks = []model.SubTask{
		model.NewSubTask("", "active sub", nil, "", true, now),
		model.NewSubTask("", "inactive sub", nil, "", false, now),
	}

	t.Run("PushTask_末尾に追加", func(t *testing.T) {
		if _, err := repo.PushTask(ctx, alice.ID, first, now); err != nil {
			t.Fatalf("PushTask(first) returned error: %v", err)
		}
		tasks, err := repo.PushTask(ctx, alice.ID, second, now)
		if err != nil {
			t.Fatalf("PushTask(second) returned error: %v", err)
		}
		if len(tasks) != 2 {
			t.Fatalf("len(tasks) = %d, want 2", len(tasks))
		}
		if tasks[0].ID != first.ID || tasks[1].ID != second.ID {
			t.Errorf("task order = [%s %s], want [%s %s]", tasks[0].ID, tasks[1].ID, first.ID, second.ID)
		}
		if len(tasks[1].SubTasks) != 2 {
			t.Errorf("len(second.SubTasks) = %d, want 2", len(tasks[1].SubTasks))
		}
	})

	t.Run("FindByTaskID", func(t *testing.T) {
		owner, err := repo.FindByTaskID(ctx, second.ID)
		if err != nil {
			t.Fatalf("FindByTaskID returned error: %v", err)
		}
		if owner == nil || owner.ID != alice.ID {
			t.Fatalf("FindByTaskID owner = %v, want %s", owner, alice.ID)
		}

		missing, err := repo.FindByTaskID(ctx, "00000000-0000-0000-0000-000000000000")
		if err != nil {
			t.Fatalf("FindByTaskID returned error: %v", err)
		}
		if missing != nil {
			t.Errorf("FindByTaskID(missing) = %v, want nil", missing)
		}
	})

	t.Run("Save_ドキュメント全体を上書き", func(t *testing.T) {
		owner, err := repo.FindByTaskID(ctx, first.ID)
		if err != nil || owner == nil {
			t.Fatalf("FindByTaskID returned (%v, %v)", owner, err)
		}
		task := owner.FindTask(first.ID)
		task.Subject = "first (edited)"
		task.Status = model.TaskStatusCompleted
		owner.UpdatedAt = now.Add(time.Second)

		if err := repo.Save(ctx, owner); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}

		reloaded, err := repo.FindByTaskID(ctx, first.ID)
		if err != nil || reloaded == nil {
			t.Fatalf("FindByTaskID returned (%v, %v)", reloaded, err)
		}
		got := reloaded.FindTask(first.ID)
		if got.Subject != "first (edited)" || got.Status != model.TaskStatusCompleted {
			t.Errorf("saved task = %+v", got)
		}
		if len(reloaded.Tasks) != 2 {
			t.Errorf("len(Tasks) = %d, want 2", len(reloaded.Tasks))
		}
	})

	t.Run("FindActiveSubTasks_有効なものだけ", func(t *testing.T) {
		subs, found, err := repo.FindActiveSubTasks(ctx, second.ID)
		if err != nil {
			t.Fatalf("FindActiveSubTasks returned error: %v", err)
		}
		if !found {
			t.Fatal("FindActiveSubTasks found = false, want true")
		}
		if len(subs) != 1 || subs[0].Subject != "active sub" {
			t.Errorf("FindActiveSubTasks = %+v, want only the active sub-task", subs)
		}

		_, found, err = repo.FindActiveSubTasks(ctx, "00000000-0000-0000-0000-000000000000")
		if err != nil {
			t.Fatalf("FindActiveSubTasks returned error: %v", err)
		}
		if found {
			t.Error("FindActiveSubTasks(missing) found = true, want false")
		}
	})

	t.Run("DeactivateTask_論理削除", func(t *testing.T) {
		ok, err := repo.DeactivateTask(ctx, first.ID, now)
		if err != nil {
			t.Fatalf("DeactivateTask returned error: %v", err)
		}
		if !ok {
			t.Fatal("DeactivateTask returned false, want true")
		}

		owner, err := repo.FindByTaskID(ctx, first.ID)
		if err != nil || owner == nil {
			t.Fatalf("FindByTaskID returned (%v, %v)", owner, err)
		}
		if len(owner.Tasks) != 2 {
			t.Fatalf("soft delete must keep the task in the sequence, len = %d", len(owner.Tasks))
		}
		if owner.Tasks[0].ID != first.ID || owner.Tasks[0].IsActive {
			t.Errorf("Tasks[0] = %+v, want inactive %s", owner.Tasks[0], first.ID)
		}
		if owner.Tasks[0].Subject != "first (edited)" {
			t.Errorf("DeactivateTask must not change other fields, subject = %q", owner.Tasks[0].Subject)
		}
		if !owner.Tasks[1].IsActive {
			t.Error("DeactivateTask must not change other tasks")
		}

		ok, err = repo.DeactivateTask(ctx, "00000000-0000-0000-0000-000000000000", now)
		if err != nil {
			t.Fatalf("DeactivateTask returned error: %v", err)
		}
		if ok {
			t.Error("DeactivateTask(missing) returned true, want false")
		}
	})

	t.Run("FindActiveTasks_有効なタスクとサブタスクだけ", func(t *testing.T) {
		tasks, found, err := repo.FindActiveTasks(ctx, alice.ID)
		if err != nil {
			t.Fatalf("FindActiveTasks returned error: %v", err)
		}
		if !found {
			t.Fatal("FindActiveTasks found = false, want true")
		}
		if len(tasks) != 1 || tasks[0].ID != second.ID {
			t.Fatalf("FindActiveTasks = %+v, want only %s", tasks, second.ID)
		}
		if len(tasks[0].SubTasks) != 1 || !tasks[0].SubTasks[0].IsActive {
			t.Errorf("SubTasks = %+v, want only the active sub-task", tasks[0].SubTasks)
		}

		_, found, err = repo.FindActiveTasks(ctx, "00000000-0000-0000-0000-000000000000")
		if err != nil {
			t.Fatalf("FindActiveTasks returned error: %v", err)
		}
		if found {
			t.Error("FindActiveTasks(missing) found = true, want false")
		}
	})

	t.Run("FindActiveTasks_タスクなしは空スライス", func(t *testing.T) {
		bob := model.NewUser("Bob", "bob@example.com", now)
		if _, err := repo.Create(ctx, bob); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		tasks, found, err := repo.FindActiveTasks(ctx, bob.ID)
		if err != nil {
			t.Fatalf("FindActiveTasks returned error: %v", err)
		}
		if !found {
			t.Error("FindActiveTasks found = false, want true")
		}
		if tasks == nil || len(tasks) != 0 {
			t.Errorf("FindActiveTasks = %v, want empty slice", tasks)
		}
	})
}

func newContractTask(subject string, now time.Time) model.Task {
	return model.NewTask(model.TaskFields{Subject: &subject}, now)
}
