package middleware

import (
	"context"
	"net/http"
	"time"
)

// NewRequestTimeoutMiddleware はリクエストのcontextにtimeoutの期限を設定するミドルウェアを返す。
//
// 期限切れ時にレスポンスは書かない。ストア呼び出しがcontext.DeadlineExceededを返し、
// ハンドラーがそれをStoreFaultのエンベロープとして1回だけ書き込む。
// timeoutが0以下の場合は何もしない。
func NewRequestTimeoutMiddleware(timeout time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
