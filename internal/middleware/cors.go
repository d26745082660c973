package middleware

import "net/http"

// corsAllowedMethods はAPIが公開しているメソッド。
const corsAllowedMethods = "GET, POST, PUT, DELETE, OPTIONS"

// NewCORSMiddleware は指定されたオリジンからのクロスオリジン呼び出しを許可するミドルウェアを返す。
//
// APIはCookieや認証情報を使わないため、Access-Control-Allow-Credentialsは送らない。
// allowedOriginには"*"も指定できる。特定のオリジンを指定した場合はVary: Originを付ける。
// OPTIONSプリフライトリクエストには後続のハンドラーを呼ばずに204で応答する。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
				h.Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
