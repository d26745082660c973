// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// HTTPミドルウェアとサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordUserCreated()
	RecordTaskAdded()
	RecordTaskUpdated()
	RecordTaskDeleted()
	RecordSubTasksMerged(count int)
	RecordStoreError(operation string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	usersCreated   prometheus.Counter
	tasksAdded     prometheus.Counter
	tasksUpdated   prometheus.Counter
	tasksDeleted   prometheus.Counter
	subTasksMerged prometheus.Counter
	storeErrors    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_http_requests_total",
			Help: "メソッド・ルート・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskhub_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_users_created_total",
			Help: "作成されたユーザーの合計数",
		}),
		tasksAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_tasks_added_total",
			Help: "追加されたタスクの合計数",
		}),
		tasksUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_tasks_updated_total",
			Help: "更新されたタスクの合計数",
		}),
		tasksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_tasks_deleted_total",
			Help: "論理削除されたタスクの合計数",
		}),
		subTasksMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskhub_subtasks_merged_total",
			Help: "マージ後に保存されたサブタスクの合計数",
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_store_errors_total",
			Help: "操作別のストアエラー数",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.usersCreated,
		c.tasksAdded,
		c.tasksUpdated,
		c.tasksDeleted,
		c.subTasksMerged,
		c.storeErrors,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
// routeにはchiのルートパターンを渡し、パスパラメータによるラベル数の増加を防ぐ。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordUserCreated はユーザー作成を記録する。
func (c *Collector) RecordUserCreated() {
	c.usersCreated.Inc()
}

// RecordTaskAdded はタスク追加を記録する。
func (c *Collector) RecordTaskAdded() {
	c.tasksAdded.Inc()
}

// RecordTaskUpdated はタスク更新を記録する。
func (c *Collector) RecordTaskUpdated() {
	c.tasksUpdated.Inc()
}

// RecordTaskDeleted はタスクの論理削除を記録する。
func (c *Collector) RecordTaskDeleted() {
	c.tasksDeleted.Inc()
}

// RecordSubTasksMerged はマージ後のサブタスク数を記録する。
func (c *Collector) RecordSubTasksMerged(count int) {
	c.subTasksMerged.Add(float64(count))
}

// RecordStoreError はストア操作のエラーを記録する。
func (c *Collector) RecordStoreError(operation string) {
	c.storeErrors.WithLabelValues(operation).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
