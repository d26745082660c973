package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskhub/internal/message"
	"github.com/hitoshi/taskhub/internal/model"
)

// エンベロープのstatusフィールドの値
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SuccessBody は成功レスポンスの統一エンベロープ。
type SuccessBody struct {
	StatusCode int          `json:"statusCode"`
	Status     string       `json:"status"`
	MsgCode    message.Code `json:"msgCode"`
	Msg        string       `json:"msg"`
	Data       any          `json:"data"`
}

// ErrorBody は失敗レスポンスの統一エンベロープ。
// バリデーションエラーの場合、msgはフィールド名からメッセージへのオブジェクトになる。
type ErrorBody struct {
	StatusCode int          `json:"statusCode"`
	Status     string       `json:"status"`
	MsgCode    message.Code `json:"msgCode"`
	Msg        any          `json:"msg"`
}

// WriteSuccess は成功エンベロープを書き込む。HTTPステータスはstatusCodeと同じ値になる。
// dataがnilの場合は空オブジェクトを返す。
func WriteSuccess(w http.ResponseWriter, statusCode int, code message.Code, data any) {
	if data == nil {
		data = struct{}{}
	}
	writeJSON(w, statusCode, SuccessBody{
		StatusCode: statusCode,
		Status:     StatusSuccess,
		MsgCode:    code,
		Msg:        message.Get(code),
		Data:       data,
	})
}

// WriteError は失敗エンベロープを書き込む。
func WriteError(w http.ResponseWriter, apiErr *model.APIError) {
	var msg any = apiErr.Message
	if len(apiErr.Fields) > 0 {
		msg = apiErr.Fields
	}
	writeJSON(w, apiErr.StatusCode, ErrorBody{
		StatusCode: apiErr.StatusCode,
		Status:     StatusError,
		MsgCode:    apiErr.MsgCode,
		Msg:        msg,
	})
}

// WriteInternalServerError は内部エラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、クライアントにはカタログの一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteError(w, model.NewInternalError())
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
