package metric

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

// Opts names a metric without labels.
type Opts struct {
	Namespace   string
	Subsystem   string
	Name        string
	Help        string
	ConstLabels map[string]string
}

// VectorOpts names a metric partitioned by Labels.
type VectorOpts struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
	Labels    []string
}

type (
	CounterOpts    Opts
	GaugeOpts      Opts
	CounterVecOpts VectorOpts
	GaugeVecOpts   VectorOpts
)

func help(h, name string) string {
	if h == "" {
		return name
	}
	return h
}

// register panics on duplicates, metrics are created once per process at
// package initialization
func register[C prom.Collector](c C) C {
	prom.MustRegister(c)
	return c
}
