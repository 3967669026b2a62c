package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций с бронированиями
const (
	ResultSuccess        = "success"
	ResultConflict       = "conflict"
	ResultRejected       = "rejected"
	ResultPartialFailure = "partial_failure"
	ResultError          = "error"
)

// Metrics набор prometheus-метрик сервиса.
// Все методы безопасны для nil-получателя: при выключенных метриках передаётся nil
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration   *prometheus.HistogramVec
	dbQueryErrors     *prometheus.CounterVec
	dbOpenConnections *prometheus.GaugeVec
	dbInUse           *prometheus.GaugeVec
	dbIdle            *prometheus.GaugeVec
	dbWaitCount       *prometheus.GaugeVec

	reservationOperations *prometheus.CounterVec
	slotsServed           *prometheus.HistogramVec
	outboxPublished       *prometheus.CounterVec
}

// New создает метрики и регистрирует их в DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики и регистрирует их в указанном registerer
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		dbQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		dbOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}, []string{}),
		dbInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{}),
		dbIdle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}, []string{}),
		dbWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{}),
		reservationOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservation_operations_total",
			Help:        "Reservation lifecycle operations by result",
			ConstLabels: constLabels,
		}, []string{"operation", "result"}),
		slotsServed: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "available_slots_returned",
			Help:        "Number of available slots returned per request",
			ConstLabels: constLabels,
			Buckets:     []float64{0, 1, 5, 10, 20, 40, 80},
		}, []string{}),
		outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "outbox_events_published_total",
			Help:        "Events relayed from the outbox to the broker",
			ConstLabels: constLabels,
		}, []string{"event_type"}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.dbQueryErrors,
		m.dbOpenConnections,
		m.dbInUse,
		m.dbIdle,
		m.dbWaitCount,
		m.reservationOperations,
		m.slotsServed,
		m.outboxPublished,
	)

	return m
}

// ObserveHTTPRequest фиксирует HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует выполнение запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.dbQueryErrors.WithLabelValues(operation).Inc()
	}
}

// SetDBPoolStats обновляет показатели пула соединений
func (m *Metrics) SetDBPoolStats(open, inUse, idle int, waitCount int64) {
	if m == nil {
		return
	}
	m.dbOpenConnections.WithLabelValues().Set(float64(open))
	m.dbInUse.WithLabelValues().Set(float64(inUse))
	m.dbIdle.WithLabelValues().Set(float64(idle))
	m.dbWaitCount.WithLabelValues().Set(float64(waitCount))
}

// RecordReservationOperation фиксирует результат операции жизненного цикла бронирования
func (m *Metrics) RecordReservationOperation(operation, result string) {
	if m == nil {
		return
	}
	m.reservationOperations.WithLabelValues(operation, result).Inc()
}

// RecordSlotsServed фиксирует количество отданных слотов
func (m *Metrics) RecordSlotsServed(count int) {
	if m == nil {
		return
	}
	m.slotsServed.WithLabelValues().Observe(float64(count))
}

// RecordOutboxPublished фиксирует опубликованные события
func (m *Metrics) RecordOutboxPublished(eventType string, count int) {
	if m == nil {
		return
	}
	m.outboxPublished.WithLabelValues(eventType).Add(float64(count))
}
