// Package validation はリクエストペイロードの宣言的なスキーマ検証を提供する。
//
// 各操作のリクエスト型にvalidateタグでフィールドごとの制約を記述し、
// Structで一度だけ評価してフィールド名からエラーメッセージへのマッピングを得る。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hitoshi/taskhub/internal/model"
	"github.com/hitoshi/taskhub/internal/security"
)

// dateLayouts は日付として受け付けるフォーマット。先頭から順に試行する。
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

var validate *validator.Validate

var textPolicy = security.NewTextPolicy()

func init() {
	validate = validator.New()

	// エラーのフィールド名にはJSONのキー名を使う
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("taskstatus", validateTaskStatus)
	_ = validate.RegisterValidation("date", validateDate)
	_ = validate.RegisterValidation("notblank", validateNotBlank)
	_ = validate.RegisterValidation("plaintext", validatePlainText)
}

// validateTaskStatus はPending/Completedのいずれかであることを検証する。
func validateTaskStatus(fl validator.FieldLevel) bool {
	return model.TaskStatus(fl.Field().String()).Valid()
}

// validateDate はParseDateで解析できる日付文字列であることを検証する。
func validateDate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// validateNotBlank は空白以外の文字を含むことを検証する。
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validatePlainText はHTMLマークアップを含まないことを検証する。
// 値は書き換えずに保存するため、マークアップを含む入力はここで拒否する。
func validatePlainText(fl validator.FieldLevel) bool {
	return textPolicy.IsPlainText(fl.Field().String())
}

// ParseDate は日付文字列を解析する。
// RFC3339形式と日付のみの形式（2006-01-02）を受け付ける。タイムゾーンのない値はUTCとして扱う。
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", s)
}

// Struct はvalidateタグに従ってvを検証する。
// 問題がなければnilを、違反があればフィールドパスからメッセージへのマッピングを返す。
// 同じフィールドに複数の違反がある場合は最初の1件のみを含める。
func Struct(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe)
		if _, exists := fields[path]; exists {
			continue
		}
		fields[path] = describe(fe)
	}
	return fields
}

// PathID はURLパスパラメータのIDを検証する。
// 問題がなければnilを、不正な場合はパラメータ名をキーにしたマッピングを返す。
func PathID(name, value string) map[string]string {
	if err := validate.Var(value, "required,uuid"); err != nil {
		return map[string]string{name: fmt.Sprintf("%q must be a valid id", name)}
	}
	return nil
}

// fieldPath はルート構造体名を除いたフィールドパスを返す（例: subTasks[0].subject）。
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// describe はタグごとの利用者向けメッセージを組み立てる。
func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", name)
	case "email":
		return fmt.Sprintf("%q must be a valid email", name)
	case "date":
		return fmt.Sprintf("%q must be a valid date", name)
	case "taskstatus":
		return fmt.Sprintf("%q must be one of [%s, %s]", name, model.TaskStatusPending, model.TaskStatusCompleted)
	case "notblank":
		return fmt.Sprintf("%q must not be blank", name)
	case "plaintext":
		return fmt.Sprintf("%q must not contain markup", name)
	case "uuid":
		return fmt.Sprintf("%q must be a valid id", name)
	case "max":
		return fmt.Sprintf("%q must not exceed %s characters", name, fe.Param())
	default:
		return fmt.Sprintf("%q failed on the %q rule", name, fe.Tag())
	}
}
