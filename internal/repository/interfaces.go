// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/taskhub/internal/model"
)

// ErrDuplicateEmail はストアの一意制約によりユーザー作成が拒否されたことを表す。
// アプリケーション側の事前チェックをすり抜けた同時作成をここで検出する。
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository はユーザードキュメント（埋め込みタスク・サブタスクを含む）の永続化インターフェース。
// 実装はPostgreSQL(JSONB)とMongoDBの2種類。
type UserRepository interface {
	// FindByEmail は正規化済みメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、保存されたユーザーを返す。
	// メールアドレスが一意制約に違反した場合はErrDuplicateEmailを返す。
	// ストアが結果を返さなかった場合は(nil, nil)を返す。
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// PushTask はユーザーのタスク列の末尾にタスクを追加し、更新後のタスク列を返す。
	// 単一ドキュメントへのアトミックな更新として実行する。
	// ユーザーが見つからない場合はnilを返す。
	PushTask(ctx context.Context, userID string, task model.Task, now time.Time) ([]model.Task, error)

	// FindByTaskID は指定IDのタスクを所有するユーザーを取得する。見つからない場合はnilを返す。
	FindByTaskID(ctx context.Context, taskID string) (*model.User, error)

	// Save はユーザードキュメント全体を上書き保存する。
	// 楽観ロックは行わないため、同一ユーザーへの同時更新は後勝ちになる。
	Save(ctx context.Context, user *model.User) error

	// DeactivateTask は指定IDに最初に一致したタスクのisActiveをfalseにする。
	// 配列内の位置、サブタスク、その他のフィールドは変更しない。
	// 一致するタスクがなかった場合はfalseを返す。
	DeactivateTask(ctx context.Context, taskID string, now time.Time) (bool, error)

	// FindActiveTasks はユーザーの有効なタスクを格納順で返す。
	// 各タスクのサブタスクも有効なものに絞り込まれる。
	// ユーザーが存在しない場合はfoundにfalseを返す。
	FindActiveTasks(ctx context.Context, userID string) (tasks []model.Task, found bool, err error)

	// FindActiveSubTasks は指定タスクの有効なサブタスクを格納順で返す。
	// タスクが存在しない場合はfoundにfalseを返す。
	FindActiveSubTasks(ctx context.Context, taskID string) (subTasks []model.SubTask, found bool, err error)

	// Ping はストアへの疎通を確認する。
	Ping(ctx context.Context) error
}
