// Package prom implements the observability hooks on top of Prometheus.
//
// Metrics live on a private registry so several instances (one per test, for
// example) never collide:
//
//	h := prom.New()
//	observability.SetFrameHooks(h)
//	observability.SetForceHooks(h)
//	observability.SetIndexHooks(h)
//	http.Handle("/metrics", h.Handler())
package prom

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/foldergraph/pkg/observability"
)

const namespace = "foldergraph"

// Hooks records frame, force and index events as Prometheus metrics.
type Hooks struct {
	registry *prometheus.Registry

	frames        prometheus.Counter
	frameDuration prometheus.Histogram
	clusters      prometheus.Gauge
	forced        prometheus.Gauge
	pins          prometheus.Counter
	unpins        prometheus.Counter
	violations    prometheus.Counter
	faults        *prometheus.CounterVec
	leaves        *prometheus.CounterVec
}

// New creates hooks registered on a fresh registry.
func New() *Hooks {
	h := &Hooks{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Total number of frames processed by view sessions",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent recomputing enclosures and applying forces per frame",
			Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		clusters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clusters",
			Help:      "Number of folder clusters in the last frame",
		}),
		forced: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forced_nodes",
			Help:      "Number of nodes being pushed in the last frame",
		}),
		pins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pins_total",
			Help:      "Pin requests sent to the simulation",
		}),
		unpins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unpins_total",
			Help:      "Release requests sent to the simulation",
		}),
		violations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invariant_violations_total",
			Help:      "Pin/release protocol contradictions observed",
		}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_faults_total",
			Help:      "Recovered failures per folder",
		}, []string{"group"}),
		leaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_leaves_total",
			Help:      "Entries recorded in the membership index",
		}, []string{"kind"}),
	}
	h.registry.MustRegister(
		h.frames, h.frameDuration, h.clusters, h.forced,
		h.pins, h.unpins, h.violations, h.faults, h.leaves,
	)
	return h
}

// Registry returns the registry the metrics are registered on.
func (h *Hooks) Registry() *prometheus.Registry { return h.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (h *Hooks) Handler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})
}

func (h *Hooks) OnFrameStart(context.Context, string, int) {}

func (h *Hooks) OnFrameComplete(_ context.Context, _ string, clusters, forced int, d time.Duration) {
	h.frames.Inc()
	h.frameDuration.Observe(d.Seconds())
	h.clusters.Set(float64(clusters))
	h.forced.Set(float64(forced))
}

func (h *Hooks) OnPin(context.Context, string, string)   { h.pins.Inc() }
func (h *Hooks) OnUnpin(context.Context, string, string) { h.unpins.Inc() }

func (h *Hooks) OnInvariantViolation(context.Context, string, string, error) {
	h.violations.Inc()
}

func (h *Hooks) OnClusterFault(_ context.Context, _ string, group string, _ error) {
	h.faults.WithLabelValues(group).Inc()
}

func (h *Hooks) OnLeafRecorded(_ context.Context, _ string, _ string, folder bool) {
	kind := "file"
	if folder {
		kind = "folder"
	}
	h.leaves.WithLabelValues(kind).Inc()
}

var (
	_ observability.FrameHooks = (*Hooks)(nil)
	_ observability.ForceHooks = (*Hooks)(nil)
	_ observability.IndexHooks = (*Hooks)(nil)
)
