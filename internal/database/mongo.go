package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// usersCollection はユーザードキュメントのコレクション名。
// repository.UsersCollectionと同じ値を使用する。
const usersCollection = "users"

// OpenMongo はMongoDBクライアントを生成し、疎通を確認する。
// PostgreSQLのOpenと異なり、接続確認まで行ってから返す。
func OpenMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

// MongoIndexModels はusersコレクションに作成するインデックス定義を返す。
// emailの一意インデックスがメールアドレス重複の最終的な防御線となる。
func MongoIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("users_email_key").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "tasks._id", Value: 1}},
			Options: options.Index().SetName("idx_users_tasks_id"),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_users_name"),
		},
	}
}

// EnsureMongoIndexes はusersコレクションのインデックスを作成する。
// 既存の同名・同定義のインデックスがある場合は何もしない。
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, MongoIndexModels()); err != nil {
		return fmt.Errorf("failed to create mongodb indexes: %w", err)
	}
	return nil
}
