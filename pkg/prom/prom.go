// Package prom exposes the messenger's Prometheus metrics. Recording is a
// no-op until Create has been called.
package prom

import (
	"sync"

	xhttp "github.com/nimasrn/wa-messenger/pkg/http"
	"github.com/nimasrn/wa-messenger/pkg/logger"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	subsystemMessages = "message"
	subsystemSession  = "session"
)

var bulkBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500}

type metrics struct {
	registry *prometheus.Registry

	sent     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	bulkSize prometheus.Histogram
	status   *prometheus.CounterVec
	streams  prometheus.Gauge
}

var (
	mu     sync.RWMutex
	active *metrics
)

// Create builds a fresh registry labelled with env and host and enables
// recording. Calling it again replaces the previous registry.
func Create(host, env, namespace string) error {
	labels := prometheus.Labels{"env": env, "instance": host}
	m := &metrics{
		registry: prometheus.NewRegistry(),
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemMessages, Name: "sent_total",
			Help: "Send attempts by outcome and bulk kind.", ConstLabels: labels,
		}, []string{"status", "source"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystemMessages, Name: "send_duration_seconds",
			Help: "Time spent in the transport per send.", ConstLabels: labels,
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		bulkSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystemMessages, Name: "bulk_recipients",
			Help: "Recipients per bulk run.", ConstLabels: labels,
			Buckets: bulkBuckets,
		}),
		status: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemSession, Name: "status_changes_total",
			Help: "WhatsApp session status transitions.", ConstLabels: labels,
		}, []string{"status"}),
		streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystemSession, Name: "event_streams",
			Help: "Open status event streams.", ConstLabels: labels,
		}),
	}

	for _, c := range []prometheus.Collector{
		m.sent, m.duration, m.bulkSize, m.status, m.streams,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return errors.Wrap(err, "register metric")
		}
	}

	mu.Lock()
	active = m
	mu.Unlock()
	return nil
}

func current() *metrics {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// ListenAndServer serves the registry on its own fasthttp server. It blocks.
func ListenAndServer(addr, uri string) {
	m := current()
	if m == nil {
		logger.Warn("[metrics-server] metrics are not created, nothing to serve")
		return
	}
	s := xhttp.CreateServer(xhttp.ServerOption{Name: "metrics"})
	s.GET(uri, fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})))
	logger.Info("[metrics-server] listening...", "addr", addr, "uri", uri)
	if err := s.ListenAndServe(addr); err != nil {
		logger.Error("[metrics-server] http listen error", "error", err)
	}
}

func IncMessageSent(status, source string) {
	if m := current(); m != nil {
		m.sent.WithLabelValues(status, source).Inc()
	}
}

func ObserveSendDuration(seconds float64, status string) {
	if m := current(); m != nil {
		m.duration.WithLabelValues(status).Observe(seconds)
	}
}

func ObserveBulkSize(n int) {
	if m := current(); m != nil {
		m.bulkSize.Observe(float64(n))
	}
}

func IncSessionStatus(status string) {
	if m := current(); m != nil {
		m.status.WithLabelValues(status).Inc()
	}
}

// StreamOpened and StreamClosed track the open event streams.
func StreamOpened() {
	if m := current(); m != nil {
		m.streams.Inc()
	}
}

func StreamClosed() {
	if m := current(); m != nil {
		m.streams.Dec()
	}
}
