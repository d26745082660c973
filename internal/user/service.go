// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/taskhub/internal/metrics"
	"github.com/hitoshi/taskhub/internal/model"
	"github.com/hitoshi/taskhub/internal/repository"
)

// Service はユーザー管理のサービス層。
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

// CreateUser はユーザーを作成し、タスク列を除いたプロフィールを返す。
//
// メールアドレスは正規化してから重複確認する。事前確認をすり抜けた同時作成は
// ストアの一意制約で検出し、同じくDuplicateEmailとして扱う。
// ストアが作成結果を返さなかった場合はCreationFailedを返す。
func (s *Service) CreateUser(ctx context.Context, name, email string) (*model.UserProfile, error) {
	normalized := model.NormalizeEmail(email)

	existing, err := s.userRepo.FindByEmail(ctx, normalized)
	if err != nil {
		s.recordStoreError("find_user_by_email")
		return nil, err
	}
	if existing != nil {
		return nil, model.NewDuplicateEmailError()
	}

	user := model.NewUser(name, normalized, s.now().UTC())

	created, err := s.userRepo.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, model.NewDuplicateEmailError()
	}
	if err != nil {
		s.recordStoreError("create_user")
		return nil, err
	}
	if created == nil {
		slog.Warn("store returned no user on create")
		return nil, model.NewCreationFailedError()
	}

	slog.Info("user created",
		slog.String("user_id", created.ID),
	)
	if s.metrics != nil {
		s.metrics.RecordUserCreated()
	}

	profile := created.Profile()
	return &profile, nil
}

func (s *Service) recordStoreError(operation string) {
	if s.metrics != nil {
		s.metrics.RecordStoreError(operation)
	}
}
