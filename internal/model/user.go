// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User はタスクを所有するユーザーを表す。
// タスクとサブタスクはユーザードキュメントに埋め込まれ、独立したIDでは永続化されない。
type User struct {
	ID        string    `json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	IsActive  bool      `json:"isActive" bson:"isActive"`
	Tasks     []Task    `json:"tasks" bson:"tasks"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// UserProfile はタスク列を除いたユーザーの公開フィールド。
// ユーザー作成APIのレスポンスに使用する。
type UserProfile struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser はデフォルト値を適用したUserを生成する。
// メールアドレスは正規化され、タスク列は空で初期化される。
func NewUser(name, email string, now time.Time) *User {
	return &User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		IsActive:  true,
		Tasks:     []Task{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Profile はタスク列を除いたユーザー情報を返す。
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// FindTask は指定IDのタスクへのポインタを返す。見つからない場合はnilを返す。
// 返されたポインタ経由の変更はUser.Tasksに反映される。
func (u *User) FindTask(taskID string) *Task {
	for i := range u.Tasks {
		if u.Tasks[i].ID == taskID {
			return &u.Tasks[i]
		}
	}
	return nil
}

// NormalizeEmail はメールアドレスを前後の空白除去と小文字化で正規化する。
// 重複判定は正規化後の値で行う。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
