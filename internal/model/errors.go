package model

import (
	"fmt"
	"net/http"

	"github.com/hitoshi/taskhub/internal/message"
)

// APIError は統一レスポンスエンベロープで返すエラーを表す。
// StatusCodeはHTTPステータスとエンベロープのstatusCodeの両方に使われる。
type APIError struct {
	Code       string            // エラー種別
	MsgCode    message.Code      // メッセージカタログのコード
	Message    string            // 表示文言
	StatusCode int               // HTTPステータスコード
	Fields     map[string]string // バリデーションエラー時のフィールド別メッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Fields)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeMalformedBody    = "MALFORMED_BODY"
	ErrCodeDuplicateEmail   = "DUPLICATE_EMAIL"
	ErrCodeCreationFailed   = "CREATION_FAILED"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeTaskNotFound     = "TASK_NOT_FOUND"
	ErrCodeStoreFault       = "STORE_FAULT"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeRouteNotFound    = "ROUTE_NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

func newAPIError(code string, msgCode message.Code, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		MsgCode:    msgCode,
		Message:    message.Get(msgCode),
		StatusCode: statusCode,
	}
}

// NewValidationError は入力バリデーションエラーを生成する。
// fieldsはフィールド名からエラーメッセージへのマッピング。
func NewValidationError(fields map[string]string) *APIError {
	err := newAPIError(ErrCodeValidation, message.ValidationFailed, http.StatusBadRequest)
	err.Fields = fields
	return err
}

// NewMalformedBodyError はJSONとして解析できないリクエストボディのエラーを生成する。
func NewMalformedBodyError() *APIError {
	return newAPIError(ErrCodeMalformedBody, message.MalformedBody, http.StatusBadRequest)
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return newAPIError(ErrCodeDuplicateEmail, message.DuplicateEmail, http.StatusBadRequest)
}

// NewCreationFailedError は重複がないにもかかわらずユーザーが作成されなかった場合のエラーを生成する。
func NewCreationFailedError() *APIError {
	return newAPIError(ErrCodeCreationFailed, message.UserCreationFailed, http.StatusBadRequest)
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return newAPIError(ErrCodeUserNotFound, message.UserNotFound, http.StatusBadRequest)
}

// NewTaskNotFoundError はタスクが見つからない場合のエラーを生成する。
func NewTaskNotFoundError() *APIError {
	return newAPIError(ErrCodeTaskNotFound, message.TaskNotFound, http.StatusBadRequest)
}

// NewStoreFaultError はストアのI/O障害を表すエラーを生成する。
// 原因のメッセージをそのままクライアントに返す。
func NewStoreFaultError(cause error) *APIError {
	err := newAPIError(ErrCodeStoreFault, message.InternalError, http.StatusInternalServerError)
	if cause != nil {
		err.Message = cause.Error()
	}
	return err
}

// NewInternalError は原因をクライアントに返さない内部エラーを生成する。
// panicからの復帰時に使用する。
func NewInternalError() *APIError {
	return newAPIError(ErrCodeInternal, message.InternalError, http.StatusInternalServerError)
}

// NewRateLimitError はレート制限超過のエラーを生成する。
func NewRateLimitError() *APIError {
	return newAPIError(ErrCodeRateLimited, message.TooManyRequests, http.StatusTooManyRequests)
}

// NewRouteNotFoundError は存在しないルートへのリクエストのエラーを生成する。
func NewRouteNotFoundError() *APIError {
	return newAPIError(ErrCodeRouteNotFound, message.RouteNotFound, http.StatusNotFound)
}

// NewMethodNotAllowedError はルートが許可しないメソッドのエラーを生成する。
func NewMethodNotAllowedError() *APIError {
	return newAPIError(ErrCodeMethodNotAllowed, message.MethodNotAllowed, http.StatusMethodNotAllowed)
}
