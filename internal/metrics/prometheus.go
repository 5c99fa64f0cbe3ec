package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/bisect/internal/bisect"
)

const namespace = "bisect"

// Collector exports engine progress to Prometheus. It is registered as an
// engine observer and owns its registry, so several collectors can coexist.
type Collector struct {
	registry  *prometheus.Registry
	steps     prometheus.Counter
	runs      *prometheus.CounterVec
	errGauge  prometheus.Gauge
	iteration prometheus.Gauge
	midpoint  prometheus.Gauge
	perRun    prometheus.Histogram
	handler   http.Handler
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Bisection steps performed.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs by outcome.",
		}, []string{"outcome"}),
		errGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "error",
			Help:      "Half-width of the current bracket.",
		}),
		iteration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "iteration",
			Help:      "Iteration of the latest step.",
		}),
		midpoint: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "midpoint",
			Help:      "Latest evaluated midpoint.",
		}),
		perRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_iterations",
			Help:      "Iterations per finished run.",
			Buckets:   prometheus.LinearBuckets(5, 5, 10),
		}),
	}

	c.registry.MustRegister(
		c.steps, c.runs, c.errGauge, c.iteration, c.midpoint, c.perRun,
		collectors.NewGoCollector(),
	)
	c.handler = promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
	return c
}

func (c *Collector) OnStep(r bisect.StepResult) {
	c.steps.Inc()
	c.errGauge.Set(r.Error)
	c.iteration.Set(float64(r.Iteration))
	c.midpoint.Set(r.Midpoint)
}

func (c *Collector) OnFinish(s bisect.State, last bisect.StepResult) {
	c.runs.WithLabelValues(s.String()).Inc()
	c.perRun.Observe(float64(last.Iteration))
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler { return c.handler }

func (c *Collector) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	c.handler.ServeHTTP(w, r)
}
