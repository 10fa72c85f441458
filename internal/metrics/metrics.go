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
// サービス層、リゾルバー、ミドルウェア、ワーカーから利用する。
type MetricsCollector interface {
	RecordAuthOutcome(operation, outcome string)
	RecordAuthLatency(duration time.Duration)
	RecordRegistrationLookup(kind string)
	RecordRegistrationFailure(kind string)
	RecordStaleDiscard()
	RecordHTTPStatus(statusCode int)
	RecordSessionsPurged(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	authOutcome        *prometheus.CounterVec
	authLatency        prometheus.Histogram
	registrationLookup *prometheus.CounterVec
	registrationFail   *prometheus.CounterVec
	staleDiscard       prometheus.Counter
	httpStatus         *prometheus.CounterVec
	sessionsPurged     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interiorly_auth_outcome_total",
			Help: "認証操作の結果別の合計数",
		}, []string{"operation", "outcome"}),
		authLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "interiorly_auth_backend_latency_seconds",
			Help:    "認証バックエンド呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		registrationLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interiorly_registration_lookup_total",
			Help: "登録状態の問い合わせ数",
		}, []string{"kind"}),
		registrationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interiorly_registration_lookup_fail_total",
			Help: "登録状態の問い合わせ失敗数（未登録として扱われたもの）",
		}, []string{"kind"}),
		staleDiscard: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interiorly_registration_stale_discard_total",
			Help: "世代が古いため破棄された登録状態の数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interiorly_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interiorly_sessions_purged_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.authOutcome,
		c.authLatency,
		c.registrationLookup,
		c.registrationFail,
		c.staleDiscard,
		c.httpStatus,
		c.sessionsPurged,
	)

	return c
}

// RecordAuthOutcome は認証操作の結果を記録する。
func (c *Collector) RecordAuthOutcome(operation, outcome string) {
	c.authOutcome.WithLabelValues(operation, outcome).Inc()
}

// RecordAuthLatency は認証バックエンド呼び出しのレイテンシを記録する。
func (c *Collector) RecordAuthLatency(duration time.Duration) {
	c.authLatency.Observe(duration.Seconds())
}

// RecordRegistrationLookup は登録状態の問い合わせを記録する。kindは designer または customer。
func (c *Collector) RecordRegistrationLookup(kind string) {
	c.registrationLookup.WithLabelValues(kind).Inc()
}

// RecordRegistrationFailure は登録状態の問い合わせ失敗を記録する。
func (c *Collector) RecordRegistrationFailure(kind string) {
	c.registrationFail.WithLabelValues(kind).Inc()
}

// RecordStaleDiscard は古い世代の結果を破棄したことを記録する。
func (c *Collector) RecordStaleDiscard() {
	c.staleDiscard.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSessionsPurged は削除したセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int64) {
	c.sessionsPurged.Add(float64(count))
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
