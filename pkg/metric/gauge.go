package metric

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

type Gauge interface {
	Set(v float64)
	Inc()
	Dec()
	Close() bool
}

type GaugeVec interface {
	Set(v float64, labels ...string)
	Inc(labels ...string)
	Close() bool
}

type gauge struct {
	prom.Gauge
}

func NewGauge(o GaugeOpts) Gauge {
	return gauge{
		Gauge: register(prom.NewGauge(prom.GaugeOpts{
			Namespace:   o.Namespace,
			Subsystem:   o.Subsystem,
			Name:        o.Name,
			Help:        help(o.Help, o.Name),
			ConstLabels: o.ConstLabels,
		})),
	}
}

func (g gauge) Close() bool { return prom.Unregister(g.Gauge) }

type gaugeVec struct {
	vec *prom.GaugeVec
}

func NewGaugeVec(o GaugeVecOpts) GaugeVec {
	return &gaugeVec{
		vec: register(prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: o.Namespace,
			Subsystem: o.Subsystem,
			Name:      o.Name,
			Help:      help(o.Help, o.Name),
		}, o.Labels)),
	}
}

func (gv *gaugeVec) Set(v float64, labels ...string) { gv.vec.WithLabelValues(labels...).Set(v) }

func (gv *gaugeVec) Inc(labels ...string) { gv.vec.WithLabelValues(labels...).Inc() }

func (gv *gaugeVec) Close() bool { return prom.Unregister(gv.vec) }
