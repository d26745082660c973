package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/taskhub/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection はユーザードキュメントを格納するコレクション名。
const UsersCollection = "users"

// MongoUserRepo はMongoDBを使用するユーザーリポジトリ。
// タスクとサブタスクはユーザードキュメントのtasks配列に埋め込まれる。
type MongoUserRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoUserRepo はMongoUserRepoを生成する。
func NewMongoUserRepo(client *mongo.Client, db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{
		client: client,
		coll:   db.Collection(UsersCollection),
	}
}

// FindByEmail は正規化済みメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.coll.FindOne(ctx, bson.M{"email": model.NormalizeEmail(email)}).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成する。
// emailの一意インデックスに違反した場合はErrDuplicateEmailを返す。
func (r *MongoUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if user.Tasks == nil {
		user.Tasks = []model.Task{}
	}

	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	if res == nil || res.InsertedID == nil {
		return nil, nil
	}

	created := *user
	return &created, nil
}

// PushTask は$pushでtasks配列の末尾にタスクを追加し、更新後のタスク列を返す。
// ユーザーが見つからない場合はnilを返す。
func (r *MongoUserRepo) PushTask(ctx context.Context, userID string, task model.Task, now time.Time) ([]model.Task, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"tasks": 1})

	var updated struct {
		Tasks []model.Task `bson:"tasks"`
	}
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{"tasks": task},
			"$set":  bson.M{"updatedAt": now},
		},
		opts,
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to push task: %w", err)
	}
	return normalizeTasks(updated.Tasks), nil
}

// FindByTaskID は指定IDのタスクを所有するユーザーを取得する。見つからない場合はnilを返す。
func (r *MongoUserRepo) FindByTaskID(ctx context.Context, taskID string) (*model.User, error) {
	user := &model.User{}
	err := r.coll.FindOne(ctx, bson.M{"tasks._id": taskID}).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by task ID: %w", err)
	}
	user.Tasks = normalizeTasks(user.Tasks)
	return user, nil
}

// Save はユーザードキュメント全体をReplaceOneで上書き保存する。
func (r *MongoUserRepo) Save(ctx context.Context, user *model.User) error {
	user.Tasks = normalizeTasks(user.Tasks)

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user not found: %s", user.ID)
	}
	return nil
}

// DeactivateTask は位置演算子（tasks.$）で最初に一致したタスクのisActiveをfalseにする。
func (r *MongoUserRepo) DeactivateTask(ctx context.Context, taskID string, now time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"tasks._id": taskID},
		bson.M{"$set": bson.M{
			"tasks.$.isActive": false,
			"updatedAt":        now,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate task: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// activeFilter は配列inputのうちisActiveがtrueの要素のみを残す$filter式を返す。
func activeFilter(input any, as string) bson.M {
	return bson.M{"$filter": bson.M{
		"input": bson.M{"$ifNull": bson.A{input, bson.A{}}},
		"as":    as,
		"cond":  bson.M{"$eq": bson.A{"$$" + as + ".isActive", true}},
	}}
}

// FindActiveTasks は集約パイプラインで有効なタスクと有効なサブタスクを絞り込んで返す。
func (r *MongoUserRepo) FindActiveTasks(ctx context.Context, userID string) ([]model.Task, bool, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": userID}}},
		{{Key: "$project", Value: bson.M{
			"tasks": bson.M{"$map": bson.M{
				"input": activeFilter("$tasks", "task"),
				"as":    "task",
				"in": bson.M{"$mergeObjects": bson.A{
					"$$task",
					bson.M{"subTasks": activeFilter("$$task.subTasks", "sub")},
				}},
			}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, false, fmt.Errorf("failed to aggregate active tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Tasks []model.Task `bson:"tasks"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, false, fmt.Errorf("failed to decode active tasks: %w", err)
	}
	if len(docs) == 0 {
		return nil, false, nil
	}
	return normalizeTasks(docs[0].Tasks), true, nil
}

// FindActiveSubTasks は集約パイプラインで指定タスクの有効なサブタスクを絞り込んで返す。
func (r *MongoUserRepo) FindActiveSubTasks(ctx context.Context, taskID string) ([]model.SubTask, bool, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tasks._id": taskID}}},
		{{Key: "$unwind", Value: bson.M{"path": "$tasks"}}},
		{{Key: "$match", Value: bson.M{"tasks._id": taskID}}},
		{{Key: "$project", Value: bson.M{
			"subTasks": activeFilter("$tasks.subTasks", "sub"),
		}}},
		{{Key: "$limit", Value: 1}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, false, fmt.Errorf("failed to aggregate active sub-tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		SubTasks []model.SubTask `bson:"subTasks"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, false, fmt.Errorf("failed to decode active sub-tasks: %w", err)
	}
	if len(docs) == 0 {
		return nil, false, nil
	}
	subTasks := docs[0].SubTasks
	if subTasks == nil {
		subTasks = []model.SubTask{}
	}
	return subTasks, true, nil
}

// Ping はMongoDBへの疎通を確認する。
func (r *MongoUserRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// normalizeTasks はnilのタスク列・サブタスク列を空スライスに置き換える。
// JSONレスポンスでnullではなく[]を返すため。
func normalizeTasks(tasks []model.Task) []model.Task {
	if tasks == nil {
		return []model.Task{}
	}
	for i := range tasks {
		if tasks[i].SubTasks == nil {
			tasks[i].SubTasks = []model.SubTask{}
		}
	}
	return tasks
}

// compile-time interface check
var _ UserRepository = (*MongoUserRepo)(nil)
