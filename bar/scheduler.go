package bar

import (
	"context"
	"time"

	"golang.org/x/exp/slices"

	"github.com/ikenchina/rootbar/config"
	"github.com/ikenchina/rootbar/pkg/errors"
	"github.com/ikenchina/rootbar/pkg/log"
	"github.com/ikenchina/rootbar/pkg/metric"
	usync "github.com/ikenchina/rootbar/pkg/sync"
)

var (
	runCounter = metric.NewCounterVec(metric.CounterVecOpts{
		Namespace: config.AppName,
		Subsystem: "command",
		Name:      "runs_total",
		Help:      "finished command runs by result",
		Labels:    []string{"command", "result"},
	})
	runTimer = metric.NewTimer(metric.VectorOpts{
		Namespace: config.AppName,
		Subsystem: "command",
		Name:      "run_duration_seconds",
		Labels:    []string{"command"},
	})
	commandStateGauge = metric.NewGaugeVec(metric.GaugeVecOpts{
		Namespace: config.AppName,
		Subsystem: "command",
		Name:      "state",
		Help:      "0 running, 1 waiting, 2 retired",
		Labels:    []string{"command"},
	})
	retiredGauge = metric.NewGauge(metric.GaugeOpts{
		Namespace: config.AppName,
		Subsystem: "command",
		Name:      "retired",
	})
	rerunCounter = metric.NewCounter(metric.CounterOpts{
		Namespace: config.AppName,
		Subsystem: "command",
		Name:      "reruns_total",
		Help:      "failed runs resubmitted without caching their output",
	})
)

// Completion is sent by a finished run. The outcome is already applied to
// the command's output, except for a rerun where the output is untouched.
type Completion struct {
	Command *ScheduledCommand
	Result  Result
	First   bool
	Rerun   bool
}

// Scheduler owns the respawn cycle of every command:
//
//	RUNNING -> WAITING(delay) -> RUNNING -> ...
//	RUNNING -> RETIRED  (delay == 0)
//
// Completions fan in on one channel; Drain is the only consumer and the only
// place a command is re-armed, so a command never has two runs in flight.
type Scheduler struct {
	commands     []*ScheduledCommand
	runner       CommandRunner
	defaultDelay time.Duration
	completions  chan Completion
	waitCloser   usync.WaitCloser
	group        usync.Group
	logger       log.Logger
}

// NewScheduler binds the commands to a runner. A shell spawn failure
// closes wait with the error, which is how the process learns to abort.
func NewScheduler(wait usync.WaitCloser, commands []*ScheduledCommand, runner CommandRunner, defaultDelay time.Duration) *Scheduler {
	return &Scheduler{
		commands:     commands,
		runner:       runner,
		defaultDelay: defaultDelay,
		// every command has at most one completion outstanding
		completions: make(chan Completion, len(commands)),
		waitCloser:  wait,
		group:       usync.NewGroup(wait.Context(), usync.WithCancelIfError(true)),
		logger:      log.WithLogger("[Scheduler] "),
	}
}

func (s *Scheduler) Commands() []*ScheduledCommand {
	return slices.Clone(s.commands)
}

// Start runs every command once right away, regardless of its delay.
func (s *Scheduler) Start() {
	s.logger.Infof("start %d commands, default delay(%s)", len(s.commands), s.defaultDelay)
	for _, c := range s.commands {
		s.spawn(c, 0, true)
	}
}

// Drain re-arms every command whose completion is pending without blocking
// and returns how many it handled.
func (s *Scheduler) Drain() int {
	n := 0
	for {
		select {
		case c := <-s.completions:
			s.rearm(c)
			n++
		default:
			return n
		}
	}
}

// Wait blocks until every run and timer goroutine has returned. It is only
// meaningful after the wait closer passed to NewScheduler is closed.
func (s *Scheduler) Wait() error {
	return s.group.Wait()
}

func (s *Scheduler) rearm(c Completion) {
	cmd := c.Command
	delay := cmd.cfg.Delay(s.defaultDelay)
	if delay == 0 {
		cmd.setState(CommandStateRetired)
		retiredGauge.Inc()
		s.logger.Debugf("command(%s) retired after %d runs", cmd.Text(), cmd.Runs())
		return
	}
	s.spawn(cmd, delay, false)
}

func (s *Scheduler) spawn(cmd *ScheduledCommand, delay time.Duration, first bool) {
	if s.waitCloser.IsClosed() {
		return
	}
	if !cmd.inflight.CompareAndSwap(false, true) {
		s.logger.Errorf("command(%s) is already in flight", cmd.Text())
		return
	}
	if delay > 0 {
		cmd.setState(CommandStateWaiting)
	}

	started := s.group.Go(func(ctx context.Context) error {
		if delay > 0 && !s.waitCloser.Sleep(delay) {
			return nil
		}
		cmd.setState(CommandStateRunning)

		res, err := s.runner.Run(ctx, cmd.Text())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			err = errors.WithStack(err)
			s.logger.Errorf("command(%s) : %v", cmd.Text(), err)
			s.waitCloser.Close(err)
			return err
		}
		cmd.recordRun(res)

		comp := Completion{Command: cmd, Result: res, First: first}
		if !first && !res.Succeeded && cmd.cfg.RerunOnFailure() {
			// keep the previous output, go round again
			comp.Rerun = true
			rerunCounter.Inc()
			s.logger.Errorf("Command %s was not successful!", cmd.Text())
		} else {
			cmd.setOutput(res.Stdout)
		}

		cmd.inflight.Store(false)
		select {
		case s.completions <- comp:
		case <-ctx.Done():
		}
		return nil
	})
	if !started {
		cmd.inflight.Store(false)
	}
}
