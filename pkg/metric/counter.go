package metric

import (
	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

type Counter interface {
	Inc()
	Add(v float64)
	// Value is what this process added, for status reporting
	Value() float64
	Close() bool
}

type CounterVec interface {
	Inc(labels ...string)
	Add(v float64, labels ...string)
	Close() bool
}

type counter struct {
	prom prom.Counter
	sum  atomic.Float64
}

func NewCounter(o CounterOpts) Counter {
	return &counter{
		prom: register(prom.NewCounter(prom.CounterOpts{
			Namespace:   o.Namespace,
			Subsystem:   o.Subsystem,
			Name:        o.Name,
			Help:        help(o.Help, o.Name),
			ConstLabels: o.ConstLabels,
		})),
	}
}

func (c *counter) Inc() { c.Add(1) }

func (c *counter) Add(v float64) {
	c.prom.Add(v)
	c.sum.Add(v)
}

func (c *counter) Value() float64 { return c.sum.Load() }

func (c *counter) Close() bool { return prom.Unregister(c.prom) }

type counterVec struct {
	vec *prom.CounterVec
}

func NewCounterVec(o CounterVecOpts) CounterVec {
	return &counterVec{
		vec: register(prom.NewCounterVec(prom.CounterOpts{
			Namespace: o.Namespace,
			Subsystem: o.Subsystem,
			Name:      o.Name,
			Help:      help(o.Help, o.Name),
		}, o.Labels)),
	}
}

func (cv *counterVec) Inc(labels ...string) { cv.vec.WithLabelValues(labels...).Inc() }

func (cv *counterVec) Add(v float64, labels ...string) { cv.vec.WithLabelValues(labels...).Add(v) }

func (cv *counterVec) Close() bool { return prom.Unregister(cv.vec) }
