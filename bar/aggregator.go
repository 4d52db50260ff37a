package bar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/atomic"

	"github.com/ikenchina/rootbar/config"
	"github.com/ikenchina/rootbar/pkg/log"
	"github.com/ikenchina/rootbar/pkg/metric"
)

var (
	ErrPublish = errors.New("publish status failed")
)

var (
	publishCounter = metric.NewCounter(metric.CounterOpts{
		Namespace: config.AppName,
		Subsystem: "status",
		Name:      "publish_total",
	})
	publishFailCounter = metric.NewCounter(metric.CounterOpts{
		Namespace: config.AppName,
		Subsystem: "status",
		Name:      "publish_fail_total",
	})
	publishTimer = metric.NewTimer(metric.VectorOpts{
		Namespace: config.AppName,
		Subsystem: "status",
		Name:      "publish_duration_seconds",
	})
)

// Publisher writes the assembled status line somewhere a user can see it.
type Publisher interface {
	Publish(text string) error
}

// Drainer hands pending completions back to the scheduler.
type Drainer interface {
	Drain() int
}

type Aggregator struct {
	drainer   Drainer
	commands  []*ScheduledCommand
	delimiter string
	interval  time.Duration
	publisher Publisher
	last      atomic.String
	ticks     atomic.Int64
	logger    log.Logger
}

func NewAggregator(drainer Drainer, commands []*ScheduledCommand, delimiter string, interval time.Duration, publisher Publisher) *Aggregator {
	return &Aggregator{
		drainer:   drainer,
		commands:  commands,
		delimiter: delimiter,
		interval:  interval,
		publisher: publisher,
		logger:    log.WithLogger("[Aggregator] "),
	}
}

// Assemble concatenates the first line of every cached output in order,
// each followed by the delimiter.
func Assemble(commands []*ScheduledCommand, delimiter string) string {
	var sb strings.Builder
	for _, c := range commands {
		sb.WriteString(c.FirstLine())
		sb.WriteString(delimiter)
	}
	return sb.String()
}

// Tick drains completions, assembles the status line and publishes it.
func (a *Aggregator) Tick() error {
	a.drainer.Drain()

	text := Assemble(a.commands, a.delimiter)
	start := time.Now()
	if err := a.publisher.Publish(text); err != nil {
		publishFailCounter.Inc()
		return errors.Join(ErrPublish, fmt.Errorf("text(%q) : %w", text, err))
	}
	publishTimer.Observe(time.Since(start))
	publishCounter.Inc()

	if a.last.Swap(text) != text {
		a.logger.Debugf("status changed : %q", text)
	}
	a.ticks.Inc()
	return nil
}

// Run ticks immediately and then every interval until ctx is done or a
// publish fails. A publish failure is returned as is.
func (a *Aggregator) Run(ctx context.Context) error {
	a.logger.Infof("publish every %s", a.interval)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		if err := a.Tick(); err != nil {
			a.logger.Errorf("%v", err)
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Last returns the most recently published status line.
func (a *Aggregator) Last() string {
	return a.last.Load()
}

func (a *Aggregator) Ticks() int64 {
	return a.ticks.Load()
}
