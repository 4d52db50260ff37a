package metric

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// command runs take milliseconds to seconds, publishing microseconds
var defaultBuckets = []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

// Timer observes durations in seconds on a histogram and, optionally, a
// summary named <name>_s.
type Timer interface {
	Observe(d time.Duration, labels ...string)
	// Start returns a func observing the time elapsed since Start
	Start() func(labels ...string)
	Close()
}

type TimerOption func(*timer)

func WithBuckets(buckets []float64) TimerOption {
	return func(t *timer) {
		t.buckets = buckets
	}
}

func WithSummary(objectives map[float64]float64) TimerOption {
	return func(t *timer) {
		t.objectives = objectives
	}
}

type timer struct {
	buckets    []float64
	objectives map[float64]float64
	histogram  *prom.HistogramVec
	summary    *prom.SummaryVec
}

func NewTimer(o VectorOpts, opts ...TimerOption) Timer {
	t := &timer{buckets: defaultBuckets}
	for _, opt := range opts {
		opt(t)
	}
	t.histogram = register(prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: o.Namespace,
		Subsystem: o.Subsystem,
		Name:      o.Name,
		Help:      help(o.Help, o.Name),
		Buckets:   t.buckets,
	}, o.Labels))
	if len(t.objectives) > 0 {
		t.summary = register(prom.NewSummaryVec(prom.SummaryOpts{
			Namespace:  o.Namespace,
			Subsystem:  o.Subsystem,
			Name:       o.Name + "_s",
			Help:       help(o.Help, o.Name),
			Objectives: t.objectives,
		}, o.Labels))
	}
	return t
}

func (t *timer) Observe(d time.Duration, labels ...string) {
	sec := d.Seconds()
	t.histogram.WithLabelValues(labels...).Observe(sec)
	if t.summary != nil {
		t.summary.WithLabelValues(labels...).Observe(sec)
	}
}

func (t *timer) Start() func(labels ...string) {
	start := time.Now()
	return func(labels ...string) {
		t.Observe(time.Since(start), labels...)
	}
}

func (t *timer) Close() {
	prom.Unregister(t.histogram)
	if t.summary != nil {
		prom.Unregister(t.summary)
	}
}
