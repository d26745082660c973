package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/taskhub/internal/message"
	"github.com/hitoshi/taskhub/internal/middleware"
	"github.com/hitoshi/taskhub/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// CreateUser はユーザーを作成し、タスク列を除いたユーザー情報を返す。
	CreateUser(ctx context.Context, name, email string) (*model.UserProfile, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// createUserRequest はユーザー作成リクエストのボディ。
type createUserRequest struct {
	Name  string `json:"name" validate:"required,notblank,plaintext"`
	Email string `json:"email" validate:"required,email"`
}

// CreateUser はユーザーを作成する。
// POST /users/create-user
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		middleware.WriteError(w, apiErr)
		return
	}

	profile, err := h.service.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteSuccess(w, http.StatusCreated, message.UserCreated, profile)
}
