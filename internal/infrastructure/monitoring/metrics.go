package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type CacheMetrics struct {
	LookupsTotal *prometheus.CounterVec
}

type BusinessMetrics struct {
	CustomersCreatedTotal prometheus.Counter
	CustomersUpdatedTotal prometheus.Counter
	CustomersDeletedTotal prometheus.Counter
	WritesRejectedTotal   *prometheus.CounterVec
	CustomersTotal        *prometheus.GaugeVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_engine_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Cache = CacheMetrics{
		LookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_engine_cache_lookups_total",
				Help: "Total number of customer cache lookups by result.",
			},
			[]string{"result"},
		),
	}

	Business = BusinessMetrics{
		CustomersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "customer_engine_customers_created_total",
				Help: "Total number of customers successfully created.",
			},
		),
		CustomersUpdatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "customer_engine_customers_updated_total",
				Help: "Total number of customers successfully updated.",
			},
		),
		CustomersDeletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "customer_engine_customers_deleted_total",
				Help: "Total number of customers deleted.",
			},
		),
		WritesRejectedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_engine_writes_rejected_total",
				Help: "Total number of customer writes rejected by a business rule.",
			},
			[]string{"reason"},
		),
		CustomersTotal: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "customer_engine_customers",
				Help: "Number of stored customers per membership segment, refreshed by the stats job.",
			},
			[]string{"segment"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordCacheLookup(result string) {
	Cache.LookupsTotal.WithLabelValues(result).Inc()
}

func RecordCustomerCreated() {
	Business.CustomersCreatedTotal.Inc()
}

func RecordCustomerUpdated() {
	Business.CustomersUpdatedTotal.Inc()
}

func RecordCustomerDeleted() {
	Business.CustomersDeletedTotal.Inc()
}

func RecordWriteRejected(reason string) {
	Business.WritesRejectedTotal.WithLabelValues(reason).Inc()
}

func SetCustomerCount(segment string, count int64) {
	Business.CustomersTotal.WithLabelValues(segment).Set(float64(count))
}
