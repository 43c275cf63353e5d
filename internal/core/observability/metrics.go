// Package observability exposes the Prometheus metrics the NLDI service
// emits for HTTP traffic, navigation, the database gateway, and the remote
// geoprocessing client.
package observability

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var enabled atomic.Bool

// Init registers all collectors against r. Call once at process start; a
// nil registerer or isEnabled=false leaves every Observe*/Inc* call a no-op.
func Init(r prometheus.Registerer, isEnabled bool) {
	enabled.Store(isEnabled)
	if !isEnabled || r == nil {
		return
	}
	initCollectors(r)
}

func Enabled() bool { return enabled.Load() }

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	navigationRequestsTotal   *prometheus.CounterVec
	navigationComidsReturned  *prometheus.HistogramVec
	navigationDurationSeconds *prometheus.HistogramVec

	dbQueryDurationSeconds *prometheus.HistogramVec
	dbPoolAcquireTotal     *prometheus.CounterVec
	dbPoolInUse            prometheus.Gauge

	remoteCallsTotal          *prometheus.CounterVec
	remoteCallDurationSeconds *prometheus.HistogramVec

	responseFeatureCountHist *prometheus.HistogramVec
)

func initCollectors(r prometheus.Registerer) {
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "nldi_http_requests_total", Help: "Total number of HTTP requests."},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "nldi_http_request_duration_seconds", Help: "Duration of HTTP requests in seconds.", Buckets: prometheus.ExponentialBuckets(0.005, 2, 12)},
		[]string{"method", "route", "status"},
	)

	navigationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "nldi_navigation_requests_total", Help: "Navigation calls by mode and outcome."},
		[]string{"mode", "outcome"},
	)
	navigationComidsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "nldi_navigation_comids_returned", Help: "Number of COMIDs returned by a navigation call.", Buckets: prometheus.ExponentialBuckets(1, 4, 10)},
		[]string{"mode"},
	)
	navigationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "nldi_navigation_duration_seconds", Help: "Latency of the nhdplus_navigation.navigate call, in seconds.", Buckets: prometheus.ExponentialBuckets(0.005, 2, 12)},
		[]string{"mode"},
	)

	dbQueryDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "nldi_db_query_duration_seconds", Help: "Latency of database queries in seconds.", Buckets: prometheus.ExponentialBuckets(0.001, 2, 15)},
		[]string{"plugin", "op", "outcome"},
	)
	dbPoolAcquireTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "nldi_db_pool_acquire_total", Help: "Connection pool acquisitions by outcome."},
		[]string{"outcome"},
	)
	dbPoolInUse = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "nldi_db_pool_in_use", Help: "Connections currently checked out of the pool."},
	)

	remoteCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "nldi_remote_geoprocessing_calls_total", Help: "Calls to the remote geoprocessing service by operation and outcome."},
		[]string{"op", "outcome"},
	)
	remoteCallDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "nldi_remote_geoprocessing_duration_seconds", Help: "Latency of remote geoprocessing calls in seconds.", Buckets: prometheus.ExponentialBuckets(0.01, 2, 12)},
		[]string{"op"},
	)

	responseFeatureCountHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "nldi_response_feature_count", Help: "Number of features in an emitted FeatureCollection.", Buckets: prometheus.ExponentialBuckets(1, 4, 10)},
		[]string{"endpoint"},
	)

	r.MustRegister(
		httpRequestsTotal, httpRequestDurationSeconds,
		navigationRequestsTotal, navigationComidsReturned, navigationDurationSeconds,
		dbQueryDurationSeconds, dbPoolAcquireTotal, dbPoolInUse,
		remoteCallsTotal, remoteCallDurationSeconds,
		responseFeatureCountHist,
	)
}

func ExposeBuildInfo(_ string) {}

// ObserveHTTP records one HTTP request's outcome.
func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	if !enabled.Load() || httpRequestsTotal == nil {
		return
	}
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

// ObserveNavigation records one call into the navigation engine.
func ObserveNavigation(mode string, comidCount int, durationSeconds float64, err error) {
	if !enabled.Load() || navigationRequestsTotal == nil {
		return
	}
	outcome := outcomeOf(err)
	navigationRequestsTotal.WithLabelValues(mode, outcome).Inc()
	navigationDurationSeconds.WithLabelValues(mode).Observe(durationSeconds)
	if err == nil {
		navigationComidsReturned.WithLabelValues(mode).Observe(float64(comidCount))
	}
}

// ObserveDBQuery records one lookup-plugin query.
func ObserveDBQuery(plugin, op string, durationSeconds float64, err error) {
	if !enabled.Load() || dbQueryDurationSeconds == nil {
		return
	}
	dbQueryDurationSeconds.WithLabelValues(plugin, op, outcomeOf(err)).Observe(durationSeconds)
}

// ObservePoolAcquire records one connection-pool checkout attempt.
func ObservePoolAcquire(err error) {
	if !enabled.Load() || dbPoolAcquireTotal == nil {
		return
	}
	dbPoolAcquireTotal.WithLabelValues(outcomeOf(err)).Inc()
}

// SetPoolInUse publishes the pool's current checked-out connection count.
func SetPoolInUse(n int32) {
	if !enabled.Load() || dbPoolInUse == nil {
		return
	}
	dbPoolInUse.Set(float64(n))
}

// ObserveRemoteCall records one outbound call to the geoprocessing service.
func ObserveRemoteCall(op string, durationSeconds float64, err error) {
	if !enabled.Load() || remoteCallsTotal == nil {
		return
	}
	remoteCallsTotal.WithLabelValues(op, outcomeOf(err)).Inc()
	remoteCallDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}

// ObserveResponseFeatureCount records the size of an emitted FeatureCollection.
func ObserveResponseFeatureCount(endpoint string, n int) {
	if !enabled.Load() || responseFeatureCountHist == nil {
		return
	}
	responseFeatureCountHist.WithLabelValues(endpoint).Observe(float64(n))
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
