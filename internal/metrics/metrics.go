package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives service events worth counting.
type Recorder interface {
	ObserveResolution(mode string, eligible int, elapsed time.Duration)
	IncBooking(op, outcome string)
	IncNotification(outcome string)
	IncRosterSync(outcome string)
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) ObserveResolution(string, int, time.Duration)   {}
func (NopRecorder) IncBooking(string, string)                      {}
func (NopRecorder) IncNotification(string)                         {}
func (NopRecorder) IncRosterSync(string)                           {}
func (NopRecorder) ObserveHTTP(string, string, int, time.Duration) {}

// PromRecorder records events in Prometheus collectors.
type PromRecorder struct {
	gatherer      prometheus.Gatherer
	resolutions   *prometheus.HistogramVec
	eligible      *prometheus.GaugeVec
	bookings      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	rosterSyncs   *prometheus.CounterVec
	requests      *prometheus.HistogramVec
}

// NewPromRecorder registers the collectors on reg. If reg is nil a fresh
// registry is used. Collectors that are already registered are reused.
func NewPromRecorder(reg *prometheus.Registry) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &PromRecorder{gatherer: reg}

	resolutions := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crew_resolution_duration_seconds",
		Help:    "Time spent resolving eligible workers",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	eligible := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crew_resolution_eligible_workers",
		Help: "Eligible workers returned by the last resolution",
	}, []string{"mode"})
	bookings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crew_bookings_total",
		Help: "Booking allocation attempts by operation and outcome",
	}, []string{"op", "outcome"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crew_notifications_total",
		Help: "Push notifications by outcome",
	}, []string{"outcome"})
	rosterSyncs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crew_roster_syncs_total",
		Help: "Roster sync runs by outcome",
	}, []string{"outcome"})
	requests := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crew_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	var err error
	if r.resolutions, err = register(reg, resolutions); err != nil {
		return nil, err
	}
	if r.eligible, err = register(reg, eligible); err != nil {
		return nil, err
	}
	if r.bookings, err = register(reg, bookings); err != nil {
		return nil, err
	}
	if r.notifications, err = register(reg, notifications); err != nil {
		return nil, err
	}
	if r.rosterSyncs, err = register(reg, rosterSyncs); err != nil {
		return nil, err
	}
	if r.requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	return r, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (r *PromRecorder) ObserveResolution(mode string, eligible int, elapsed time.Duration) {
	r.resolutions.WithLabelValues(mode).Observe(elapsed.Seconds())
	r.eligible.WithLabelValues(mode).Set(float64(eligible))
}

func (r *PromRecorder) IncBooking(op, outcome string) {
	r.bookings.WithLabelValues(op, outcome).Inc()
}

func (r *PromRecorder) IncNotification(outcome string) {
	r.notifications.WithLabelValues(outcome).Inc()
}

func (r *PromRecorder) IncRosterSync(outcome string) {
	r.rosterSyncs.WithLabelValues(outcome).Inc()
}

func (r *PromRecorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (r *PromRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
