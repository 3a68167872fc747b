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
// データセットの読み込み処理とハンドラー層から利用する。
type MetricsCollector interface {
	RecordDatasetLoadSuccess(restaurants int, duration time.Duration)
	RecordDatasetLoadFailure(reason string)
	RecordValidationWarnings(count int)
	RecordHTTPStatus(statusCode int)
	RecordFilterLatency(duration time.Duration)
	RecordResultSize(view string, count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	loadSuccess        prometheus.Counter
	loadFail           *prometheus.CounterVec
	loadLatency        prometheus.Histogram
	restaurantsLoaded  prometheus.Gauge
	validationWarnings prometheus.Counter
	httpStatus         *prometheus.CounterVec
	filterLatency      prometheus.Histogram
	resultSize         *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loadSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nycbites_dataset_load_success_total",
			Help: "データセット読み込み成功の合計数",
		}),
		loadFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nycbites_dataset_load_fail_total",
			Help: "データセット読み込み失敗の合計数",
		}, []string{"reason"}),
		loadLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nycbites_dataset_load_duration_seconds",
			Help:    "データセット読み込みの所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		restaurantsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nycbites_restaurants_loaded",
			Help: "メモリ上に保持している店舗数",
		}),
		validationWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nycbites_dataset_validation_warnings_total",
			Help: "データセット検証警告の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nycbites_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		filterLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nycbites_filter_latency_seconds",
			Help:    "絞り込み処理のレイテンシ（秒）",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
		}),
		resultSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nycbites_filter_result_size",
			Help:    "絞り込み結果の件数",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"view"}),
	}

	reg.MustRegister(
		c.loadSuccess,
		c.loadFail,
		c.loadLatency,
		c.restaurantsLoaded,
		c.validationWarnings,
		c.httpStatus,
		c.filterLatency,
		c.resultSize,
	)

	return c
}

// RecordDatasetLoadSuccess は読み込み成功と店舗数を記録する。
func (c *Collector) RecordDatasetLoadSuccess(restaurants int, duration time.Duration) {
	c.loadSuccess.Inc()
	c.loadLatency.Observe(duration.Seconds())
	c.restaurantsLoaded.Set(float64(restaurants))
}

// RecordDatasetLoadFailure は読み込み失敗を記録する。店舗数は0になる。
func (c *Collector) RecordDatasetLoadFailure(reason string) {
	c.loadFail.WithLabelValues(reason).Inc()
	c.restaurantsLoaded.Set(0)
}

// RecordValidationWarnings は検証警告の件数を記録する。
func (c *Collector) RecordValidationWarnings(count int) {
	c.validationWarnings.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFilterLatency は絞り込み処理のレイテンシを記録する。
func (c *Collector) RecordFilterLatency(duration time.Duration) {
	c.filterLatency.Observe(duration.Seconds())
}

// RecordResultSize はビュー（list, markers）ごとの結果件数を記録する。
func (c *Collector) RecordResultSize(view string, count int) {
	c.resultSize.WithLabelValues(view).Observe(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
