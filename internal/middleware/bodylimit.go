package middleware

import "net/http"

// NewBodyLimitMiddleware はリクエストボディの読み取りをmaxBytesまでに制限するミドルウェアを返す。
// 上限を超えたボディはハンドラーのJSONデコードでエラーになる。
// maxBytesが0以下の場合は制限しない。
func NewBodyLimitMiddleware(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
