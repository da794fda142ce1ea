// Package metrics collects load test results and exports them to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metric names.
const (
	MetricRequestsTotal          = "loadgen_requests_total"
	MetricRequestDurationSeconds = "loadgen_request_duration_seconds"
	MetricJourneysTotal          = "loadgen_journeys_total"
	MetricJourneysInFlight       = "loadgen_journeys_in_flight"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	Requests        int64
	FailedRequests  int64
	Journeys        int64
	FailedJourneys  int64
	AverageLatency  time.Duration
	StatusBreakdown map[int]int64
}

// SuccessRate returns the share of requests that succeeded, 0 when idle.
func (s Snapshot) SuccessRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Requests-s.FailedRequests) / float64(s.Requests)
}

// Collector records every step and journey of a run.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	journeysTotal   *prometheus.CounterVec
	inFlight        prometheus.Gauge

	requests       atomic.Int64
	failed         atomic.Int64
	journeys       atomic.Int64
	failedJourneys atomic.Int64
	latencyNanos   atomic.Int64

	mu       sync.Mutex
	statuses map[int]int64
}

// NewCollector creates a collector with its own Prometheus registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRequestsTotal,
			Help: "Storefront requests sent, by journey step and outcome.",
		}, []string{"step", "outcome", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricRequestDurationSeconds,
			Help:    "Storefront request latency by journey step.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step"}),
		journeysTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricJourneysTotal,
			Help: "Shopper journeys completed, by journey and outcome.",
		}, []string{"journey", "outcome"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricJourneysInFlight,
			Help: "Shopper journeys currently running.",
		}),
		statuses: make(map[int]int64),
	}
	c.registry.MustRegister(c.requestsTotal, c.requestDuration, c.journeysTotal, c.inFlight)
	return c
}

// Registry returns the collector's Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordStep records one HTTP request. A zero status means the request never
// got a response.
func (c *Collector) RecordStep(step string, status int, latency time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
		c.failed.Add(1)
	}
	c.requests.Add(1)
	c.latencyNanos.Add(int64(latency))

	c.requestsTotal.WithLabelValues(step, outcome, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(step).Observe(latency.Seconds())

	c.mu.Lock()
	c.statuses[status]++
	c.mu.Unlock()
}

// JourneyStarted marks a journey as in flight.
func (c *Collector) JourneyStarted() {
	c.inFlight.Inc()
}

// JourneyFinished records the outcome of a journey started with JourneyStarted.
func (c *Collector) JourneyFinished(journey string, err error) {
	c.inFlight.Dec()
	c.journeys.Add(1)
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
		c.failedJourneys.Add(1)
	}
	c.journeysTotal.WithLabelValues(journey, outcome).Inc()
}

// Snapshot returns the current counters.
func (c *Collector) Snapshot() Snapshot {
	s := Snapshot{
		Requests:       c.requests.Load(),
		FailedRequests: c.failed.Load(),
		Journeys:       c.journeys.Load(),
		FailedJourneys: c.failedJourneys.Load(),
	}
	if s.Requests > 0 {
		s.AverageLatency = time.Duration(c.latencyNanos.Load() / s.Requests)
	}

	c.mu.Lock()
	s.StatusBreakdown = make(map[int]int64, len(c.statuses))
	for k, v := range c.statuses {
		s.StatusBreakdown[k] = v
	}
	c.mu.Unlock()
	return s
}

// PrintSummary writes a human readable report of s to w.
func PrintSummary(w io.Writer, s Snapshot, elapsed time.Duration) {
	fmt.Fprintln(w, "\n========== Load Test Summary ==========")
	fmt.Fprintf(w, "  Duration:        %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  Journeys:        %d (%d failed)\n", s.Journeys, s.FailedJourneys)
	fmt.Fprintf(w, "  Requests:        %d (%d failed)\n", s.Requests, s.FailedRequests)
	fmt.Fprintf(w, "  Success rate:    %.2f%%\n", s.SuccessRate()*100)
	fmt.Fprintf(w, "  Avg latency:     %v\n", s.AverageLatency.Round(time.Microsecond))
	if elapsed > 0 {
		fmt.Fprintf(w, "  Throughput:      %.1f req/s\n", float64(s.Requests)/elapsed.Seconds())
	}

	codes := make([]int, 0, len(s.StatusBreakdown))
	for code := range s.StatusBreakdown {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		label := strconv.Itoa(code)
		if code == 0 {
			label = "no response"
		}
		fmt.Fprintf(w, "    %-12s %d\n", label, s.StatusBreakdown[code])
	}
	fmt.Fprintln(w, "=======================================")
}

// Exporter serves the collector's registry over HTTP.
type Exporter struct {
	server *http.Server
	ln     net.Listener
}

// Serve starts a metrics endpoint on addr at /metrics.
func Serve(addr string, c *Collector) (*Exporter, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.Registry(), promhttp.HandlerOpts{}))
	e := &Exporter{
		server: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:     ln,
	}
	go func() {
		if err := e.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("metrics endpoint stopped: %v\n", err)
		}
	}()
	return e, nil
}

// Addr returns the address the exporter listens on.
func (e *Exporter) Addr() string {
	return e.ln.Addr().String()
}

// Shutdown stops the metrics endpoint.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
