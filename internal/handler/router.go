package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/taskhub/internal/metrics"
	"github.com/hitoshi/taskhub/internal/middleware"
	"github.com/hitoshi/taskhub/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	RequestTimeout    time.Duration
	MaxBodyBytes      int64

	// 観測
	HealthChecker    HealthChecker
	MetricsCollector metrics.MetricsCollector
	MetricsGatherer  prometheus.Gatherer

	// APIのマウント先（例: /api/v1）。空文字列の場合はルートにマウントする。
	BasePath string

	UserService UserServiceInterface
	TaskService TaskServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Logging → Metrics → Recovery → SecurityHeaders → CORS
//	  → BodyLimit → Timeout → RateLimit(General)
//
// /healthと/metricsはBasePathの外に配置し、レート制限を適用しない。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.MetricsCollector != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsCollector))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, model.NewRouteNotFoundError())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, model.NewMethodNotAllowedError())
	})

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	userHandler := NewUserHandler(deps.UserService)
	taskHandler := NewTaskHandler(deps.TaskService)

	api := func(r chi.Router) {
		r.Use(middleware.NewBodyLimitMiddleware(deps.MaxBodyBytes))
		r.Use(middleware.NewRequestTimeoutMiddleware(deps.RequestTimeout))

		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Route("/users", func(r chi.Router) {
			// POST /users/create-user（ユーザー作成専用レート制限を追加）
			if deps.RateLimiter != nil {
				r.With(deps.RateLimiter.CreateUserMiddleware()).Post("/create-user", userHandler.CreateUser)
			} else {
				r.Post("/create-user", userHandler.CreateUser)
			}

			r.Post("/add-task/{userId}", taskHandler.AddTask)
			r.Put("/update-task/{taskId}", taskHandler.UpdateTask)
			r.Delete("/delete-task/{taskId}", taskHandler.DeleteTask)
			r.Get("/get-tasks/{userId}", taskHandler.ListTasks)

			r.Put("/update-sub-tasks/{taskId}", taskHandler.UpdateSubTasks)
			r.Get("/list-sub-tasks/{taskId}", taskHandler.ListSubTasks)
		})
	}

	if deps.BasePath == "" || deps.BasePath == "/" {
		r.Group(api)
	} else {
		r.Route(deps.BasePath, api)
	}

	return r
}
