// Package metrics collects Prometheus metrics about timed units of work and
// the timer's display activity, and optionally serves them over HTTP.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"github.com/agbru/autotime/internal/logging"
)

const namespace = "autotime"

// Unit outcome labels.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
	StatusTimeout  = "timeout"
)

// Metrics owns a private registry so several sessions (and tests) never
// collide on the default one.
type Metrics struct {
	registry *prometheus.Registry
	units    *prometheus.CounterVec
	duration prometheus.Histogram
	running  prometheus.Gauge
	updates  prometheus.Counter
}

// New creates and registers the collectors, plus Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Units of work executed, by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_duration_seconds",
			Help:      "Wall-clock duration of units of work.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "timer_running",
			Help:      "1 while the timer has an open interval.",
		}),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "display_updates_total",
			Help:      "Text updates pushed to the display sink.",
		}),
	}
	m.registry.MustRegister(
		m.units, m.duration, m.running, m.updates,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, s := range []string{StatusOK, StatusFailed, StatusCanceled, StatusTimeout} {
		m.units.WithLabelValues(s)
	}
	return m
}

// ObserveUnit records one finished unit of work.
func (m *Metrics) ObserveUnit(status string, d time.Duration) {
	m.units.WithLabelValues(status).Inc()
	m.duration.Observe(d.Seconds())
}

// SetTimerRunning sets the running gauge.
func (m *Metrics) SetTimerRunning(running bool) {
	if running {
		m.running.Set(1)
		return
	}
	m.running.Set(0)
}

// DisplayUpdated counts one sink update.
func (m *Metrics) DisplayUpdated() {
	m.updates.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", logging.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Summary is a point-in-time view of the unit metrics.
type Summary struct {
	Units          map[string]uint64
	Count          uint64
	TotalSeconds   float64
	DisplayUpdates uint64
	TimerRunning   bool
}

// Summary gathers the registry into a Summary.
func (m *Metrics) Summary() (Summary, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return Summary{}, err
	}
	s := Summary{Units: make(map[string]uint64)}
	for _, mf := range families {
		switch mf.GetName() {
		case namespace + "_units_total":
			for _, metric := range mf.GetMetric() {
				s.Units[labelValue(metric, "status")] = uint64(metric.GetCounter().GetValue())
			}
		case namespace + "_unit_duration_seconds":
			if ms := mf.GetMetric(); len(ms) > 0 {
				h := ms[0].GetHistogram()
				s.Count = h.GetSampleCount()
				s.TotalSeconds = h.GetSampleSum()
			}
		case namespace + "_display_updates_total":
			if ms := mf.GetMetric(); len(ms) > 0 {
				s.DisplayUpdates = uint64(ms[0].GetCounter().GetValue())
			}
		case namespace + "_timer_running":
			if ms := mf.GetMetric(); len(ms) > 0 {
				s.TimerRunning = ms[0].GetGauge().GetValue() != 0
			}
		}
	}
	return s, nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
