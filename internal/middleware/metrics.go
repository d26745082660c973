package middleware

import (
	"net/http"
	"time"

	"github.com/hitoshi/taskhub/internal/metrics"
)

// unmatchedRoute はchiのルートにマッチしなかったリクエストのラベル値。
const unmatchedRoute = "unmatched"

// NewMetricsMiddleware はHTTPリクエストの件数と処理時間を記録するミドルウェアを返す。
// routeラベルにはchiのルートパターンを使う。chiのルーター内（r.Use）に配置すること。
func NewMetricsMiddleware(collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			route := routePattern(r)
			if route == "" {
				route = unmatchedRoute
			}
			collector.RecordHTTPRequest(r.Method, route, rec.statusCode, time.Since(start))
		})
	}
}
