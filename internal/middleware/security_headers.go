package middleware

import "net/http"

// NewSecurityHeadersMiddleware はJSON APIのレスポンスに付けるセキュリティヘッダーを設定する。
//
// レスポンスはHTMLとして描画されることもキャッシュされることも想定しないため、
// CSPですべてのリソース読み込みとフレーム埋め込みを禁止し、Cache-Controlはno-storeとする。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Cache-Control", "no-store")
			h.Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}
