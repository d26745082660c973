package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker はストアへの疎通確認のインターフェース。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// healthCheckTimeout はヘルスチェック1回あたりのストア疎通確認の上限時間。
const healthCheckTimeout = 3 * time.Second

// NewHealthHandler はストアへの疎通を確認するヘルスチェックハンドラーを返す。
// 疎通できない場合は503を返す。
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK

		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := checker.Ping(ctx); err != nil {
				slog.Warn("health check failed", slog.String("error", err.Error()))
				status = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
