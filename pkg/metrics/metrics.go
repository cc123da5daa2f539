package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics prometheus-коллекторы сервиса
// Единый набор для HTTP-слоя, слоя работы с БД и фонового sweep
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueriesTotal  *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec

	dbPoolOpenConns prometheus.Gauge
	dbPoolInUse     prometheus.Gauge
	dbPoolIdle      prometheus.Gauge

	sweepRunsTotal    *prometheus.CounterVec
	sweepActionsTotal *prometheus.CounterVec
	sweepDuration     prometheus.Histogram
}

// New создает и регистрирует все коллекторы сервиса
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		dbQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),

		dbQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		dbPoolOpenConns: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_open_connections",
			Help:        "Number of open connections in the pool",
			ConstLabels: constLabels,
		}),

		dbPoolInUse: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}),

		dbPoolIdle: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Number of idle connections in the pool",
			ConstLabels: constLabels,
		}),

		sweepRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "lifecycle_sweep_runs_total",
			Help:        "Total number of lifecycle sweep runs",
			ConstLabels: constLabels,
		}, []string{"status"}),

		sweepActionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "lifecycle_sweep_actions_total",
			Help:        "Total number of bookings transitioned by the lifecycle sweep",
			ConstLabels: constLabels,
		}, []string{"action"}),

		sweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:        "lifecycle_sweep_duration_seconds",
			Help:        "Lifecycle sweep duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}),
	}
}

// IncHTTPRequest увеличивает счетчик HTTP запросов
func (m *Metrics) IncHTTPRequest(method, path, status string) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveHTTPDuration записывает длительность HTTP запроса
func (m *Metrics) ObserveHTTPDuration(method, path string, seconds float64) {
	m.httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// IncDBQuery увеличивает счетчик запросов к БД
func (m *Metrics) IncDBQuery(operation, status string) {
	m.dbQueriesTotal.WithLabelValues(operation, status).Inc()
}

// ObserveDBDuration записывает длительность запроса к БД
func (m *Metrics) ObserveDBDuration(operation string, seconds float64) {
	m.dbQueryDuration.WithLabelValues(operation).Observe(seconds)
}

// SetDBPoolStats обновляет gauge-метрики connection pool
func (m *Metrics) SetDBPoolStats(open, inUse, idle int) {
	m.dbPoolOpenConns.Set(float64(open))
	m.dbPoolInUse.Set(float64(inUse))
	m.dbPoolIdle.Set(float64(idle))
}

// IncSweepRun увеличивает счетчик запусков sweep
func (m *Metrics) IncSweepRun(status string) {
	m.sweepRunsTotal.WithLabelValues(status).Inc()
}

// IncSweepAction увеличивает счетчик переходов, выполненных sweep
func (m *Metrics) IncSweepAction(action string) {
	m.sweepActionsTotal.WithLabelValues(action).Inc()
}

// ObserveSweepDuration записывает длительность прохода sweep
func (m *Metrics) ObserveSweepDuration(seconds float64) {
	m.sweepDuration.Observe(seconds)
}
