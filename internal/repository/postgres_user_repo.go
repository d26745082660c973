package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/taskhub/internal/model"
	"github.com/lib/pq"
)

// pqUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const pqUniqueViolation = "23505"

// PostgresUserRepo はPostgreSQLのJSONB列をドキュメントストアとして使用するユーザーリポジトリ。
// タスクとサブタスクはusers.tasks列にJSON配列として埋め込まれる。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, name, email, is_active, tasks, created_at, updated_at`

// FindByEmail は正規化済みメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		model.NormalizeEmail(email),
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成する。
// users_email_key制約に違反した場合はErrDuplicateEmailを返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	tasks, err := marshalTasks(user.Tasks)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, name, email, is_active, tasks, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.IsActive, tasks, user.CreatedAt, user.UpdatedAt,
	)
	created, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return created, nil
}

// PushTask はtasks配列の末尾にタスクを連結し、更新後のタスク列を返す。
// ユーザーが見つからない場合はnilを返す。
func (r *PostgresUserRepo) PushTask(ctx context.Context, userID string, task model.Task, now time.Time) ([]model.Task, error) {
	taskJSON, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}

	var raw []byte
	err = r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET tasks = tasks || jsonb_build_array($2::jsonb), updated_at = $3
		 WHERE id = $1
		 RETURNING tasks`,
		userID, string(taskJSON), now,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to push task: %w", err)
	}

	tasks, err := unmarshalTasks(raw)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByTaskID は指定IDのタスクを所有するユーザーを取得する。見つからない場合はnilを返す。
// tasks列のGINインデックス（jsonb_path_ops）による包含検索を使用する。
func (r *PostgresUserRepo) FindByTaskID(ctx context.Context, taskID string) (*model.User, error) {
	filter, err := taskIDContainment(taskID)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE tasks @> $1::jsonb
		 ORDER BY created_at
		 LIMIT 1`,
		filter,
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by task ID: %w", err)
	}
	return user, nil
}

// Save はユーザードキュメント全体を上書き保存する。
func (r *PostgresUserRepo) Save(ctx context.Context, user *model.User) error {
	tasks, err := marshalTasks(user.Tasks)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET name = $2, email = $3, is_active = $4, tasks = $5, updated_at = $6
		 WHERE id = $1`,
		user.ID, user.Name, user.Email, user.IsActive, tasks, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", user.ID)
	}
	return nil
}

// DeactivateTask は指定IDのタスクのisActiveを単一のUPDATE文でfalseにする。
// 配列の順序はWITH ORDINALITYで維持する。
func (r *PostgresUserRepo) DeactivateTask(ctx context.Context, taskID string, now time.Time) (bool, error) {
	filter, err := taskIDContainment(taskID)
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE users u
		 SET tasks = (
		     SELECT jsonb_agg(
		         CASE WHEN t.elem->>'_id' = $1
		              THEN jsonb_set(t.elem, '{isActive}', 'false'::jsonb)
		              ELSE t.elem
		         END
		         ORDER BY t.ord)
		     FROM jsonb_array_elements(u.tasks) WITH ORDINALITY AS t(elem, ord)
		 ),
		 updated_at = $2
		 WHERE u.id = (
		     SELECT id FROM users WHERE tasks @> $3::jsonb ORDER BY created_at LIMIT 1
		 )`,
		taskID, now, filter,
	)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// activeSubTasksExpr は t.elem の有効なサブタスクを格納順のJSON配列として返すSQL式。
// subTasksが配列でない場合は空配列として扱う。
const activeSubTasksExpr = `COALESCE((
    SELECT jsonb_agg(s.sub ORDER BY s.ord)
    FROM jsonb_array_elements(
        CASE WHEN jsonb_typeof(t.elem->'subTasks') = 'array' THEN t.elem->'subTasks' ELSE '[]'::jsonb END
    ) WITH ORDINALITY AS s(sub, ord)
    WHERE (s.sub->>'isActive')::boolean
), '[]'::jsonb)`

// FindActiveTasks は有効なタスクと各タスクの有効なサブタスクをSQL側で絞り込んで返す。
func (r *PostgresUserRepo) FindActiveTasks(ctx context.Context, userID string) ([]model.Task, bool, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE((
		     SELECT jsonb_agg(jsonb_set(t.elem, '{subTasks}', `+activeSubTasksExpr+`) ORDER BY t.ord)
		     FROM jsonb_array_elements(u.tasks) WITH ORDINALITY AS t(elem, ord)
		     WHERE (t.elem->>'isActive')::boolean
		 ), '[]'::jsonb)
		 FROM users u
		 WHERE u.id = $1`,
		userID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find active tasks: %w", err)
	}

	tasks, err := unmarshalTasks(raw)
	if err != nil {
		return nil, false, err
	}
	return tasks, true, nil
}

// FindActiveSubTasks は指定タスクの有効なサブタスクをSQL側で絞り込んで返す。
func (r *PostgresUserRepo) FindActiveSubTasks(ctx context.Context, taskID string) ([]model.SubTask, bool, error) {
	filter, err := taskIDContainment(taskID)
	if err != nil {
		return nil, false, err
	}

	var raw []byte
	err = r.db.QueryRowContext(ctx,
		`SELECT `+activeSubTasksExpr+`
		 FROM users u, jsonb_array_elements(u.tasks) AS t(elem)
		 WHERE u.tasks @> $1::jsonb AND t.elem->>'_id' = $2
		 ORDER BY u.created_at
		 LIMIT 1`,
		filter, taskID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find active sub-tasks: %w", err)
	}

	var subTasks []model.SubTask
	if err := json.Unmarshal(raw, &subTasks); err != nil {
		return nil, false, fmt.Errorf("failed to decode sub-tasks: %w", err)
	}
	if subTasks == nil {
		subTasks = []model.SubTask{}
	}
	return subTasks, true, nil
}

// Ping はデータベースへの疎通を確認する。
func (r *PostgresUserRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// --- ヘルパー関数 ---

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser はuserColumnsの順で1行を読み取る。
func scanUser(row rowScanner) (*model.User, error) {
	user := &model.User{}
	var tasksRaw []byte
	if err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.IsActive,
		&tasksRaw, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tasks, err := unmarshalTasks(tasksRaw)
	if err != nil {
		return nil, err
	}
	user.Tasks = tasks
	return user, nil
}

// marshalTasks はタスク列をJSONB列に格納する文字列に変換する。
// lib/pqは[]byteをbyteaとして送信するため、JSONB列には文字列で渡す。
// nilスライスはJSONのnullではなく空配列として格納する。
func marshalTasks(tasks []model.Task) (string, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tasks: %w", err)
	}
	return string(b), nil
}

// unmarshalTasks はJSONB列の値をタスク列に変換する。
func unmarshalTasks(raw []byte) ([]model.Task, error) {
	tasks := []model.Task{}
	if len(raw) == 0 {
		return tasks, nil
	}
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	for i := range tasks {
		if tasks[i].SubTasks == nil {
			tasks[i].SubTasks = []model.SubTask{}
		}
	}
	return tasks, nil
}

// taskIDContainment はtasks列の包含検索（@>）に渡すJSONを生成する。
func taskIDContainment(taskID string) (string, error) {
	b, err := json.Marshal([]map[string]string{{"_id": taskID}})
	if err != nil {
		return "", fmt.Errorf("failed to build task filter: %w", err)
	}
	return string(b), nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
