package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskhub/internal/middleware"
	"github.com/hitoshi/taskhub/internal/model"
	"github.com/hitoshi/taskhub/internal/validation"
)

// decodeAndValidate はリクエストボディをJSONとしてdstにデコードし、validateタグで検証する。
// 空のボディは空オブジェクトとして扱い、必須フィールドの欠落として報告する。
func decodeAndValidate(r *http.Request, dst any) *model.APIError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return model.NewValidationError(map[string]string{
				typeErr.Field: fmt.Sprintf("%q must be a %s", typeErr.Field, jsonTypeName(typeErr.Type)),
			})
		}
		return model.NewMalformedBodyError()
	}

	if fields := validation.Struct(dst); fields != nil {
		return model.NewValidationError(fields)
	}
	return nil
}

// jsonTypeName はGoの型に対応するJSONの型名を返す。
func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "number"
	default:
		return t.String()
	}
}

// pathID はURLパスパラメータnameを取り出して検証する。
// 不正な場合はバリデーションエラーのレスポンスを書き込み、okにfalseを返す。
func pathID(w http.ResponseWriter, r *http.Request, name string) (id string, ok bool) {
	id = chi.URLParam(r, name)
	if fields := validation.PathID(name, id); fields != nil {
		middleware.WriteError(w, model.NewValidationError(fields))
		return "", false
	}
	return id, true
}

// handleServiceError はサービス層から返されたエラーをエンベロープに変換して書き込む。
// *model.APIError以外のエラーはStoreFaultとして扱い、原因のメッセージをそのまま返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteError(w, apiErr)
		return
	}

	slog.Error("store fault", slog.String("error", err.Error()))
	middleware.WriteError(w, model.NewStoreFaultError(err))
}
