// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by the server and the worker.
type Recorder interface {
	RecordProfile(convention string)
	RecordProfileRejected(code string)
	RecordSync(ok bool, duration time.Duration)
	RecordContacts(total, celebrationsToday int)
	RecordHTTPStatus(statusCode int)
	RecordRateLimited()
}

// Collector implements Recorder on Prometheus collectors.
type Collector struct {
	profiles         *prometheus.CounterVec
	profilesRejected *prometheus.CounterVec
	syncs            *prometheus.CounterVec
	syncLatency      prometheus.Histogram
	contacts         prometheus.Gauge
	celebrations     prometheus.Gauge
	httpStatus       *prometheus.CounterVec
	rateLimited      prometheus.Counter
}

// NewCollector creates a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		profiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gonatal_profiles_total",
			Help: "Natal profiles computed, by pasaran convention.",
		}, []string{"convention"}),
		profilesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gonatal_profiles_rejected_total",
			Help: "Profile requests rejected by validation, by error code.",
		}, []string{"code"}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gonatal_syncs_total",
			Help: "Address book synchronizations, by result.",
		}, []string{"result"}),
		syncLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gonatal_sync_duration_seconds",
			Help:    "Duration of address book synchronizations.",
			Buckets: prometheus.DefBuckets,
		}),
		contacts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gonatal_contacts",
			Help: "Contacts with a usable birthday in the last sync.",
		}),
		celebrations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gonatal_celebrations_today",
			Help: "Birthdays and wetonan falling today in the last sync.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gonatal_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gonatal_rate_limited_total",
			Help: "API requests rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(
		c.profiles,
		c.profilesRejected,
		c.syncs,
		c.syncLatency,
		c.contacts,
		c.celebrations,
		c.httpStatus,
		c.rateLimited,
	)
	return c
}

func (c *Collector) RecordProfile(convention string) {
	c.profiles.WithLabelValues(convention).Inc()
}

func (c *Collector) RecordProfileRejected(code string) {
	c.profilesRejected.WithLabelValues(code).Inc()
}

// RecordSync counts a sync by result. Latency is only observed for successes.
func (c *Collector) RecordSync(ok bool, duration time.Duration) {
	if !ok {
		c.syncs.WithLabelValues("error").Inc()
		return
	}
	c.syncs.WithLabelValues("ok").Inc()
	c.syncLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordContacts(total, celebrationsToday int) {
	c.contacts.Set(float64(total))
	c.celebrations.Set(float64(celebrationsToday))
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordProfile(string)           {}
func (Nop) RecordProfileRejected(string)   {}
func (Nop) RecordSync(bool, time.Duration) {}
func (Nop) RecordContacts(int, int)        {}
func (Nop) RecordHTTPStatus(int)           {}
func (Nop) RecordRateLimited()             {}

// Handler serves the gatherer in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
