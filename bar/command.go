package bar

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/ikenchina/rootbar/config"
)

type CommandState int32

const (
	CommandStateRunning CommandState = iota
	CommandStateWaiting
	CommandStateRetired
)

func (cs CommandState) String() string {
	switch cs {
	case CommandStateRunning:
		return "running"
	case CommandStateWaiting:
		return "waiting"
	case CommandStateRetired:
		return "retired"
	}
	return "unknown"
}

// ScheduledCommand pairs an immutable command with its latest output.
// The output cell has a single writer, the command's in-flight run, and
// any number of readers.
type ScheduledCommand struct {
	index int
	cfg   config.CommandConfig

	mutex  sync.RWMutex
	output string

	inflight atomic.Bool
	state    atomic.Int32
	runs     atomic.Int64
	failures atomic.Int64
	lastRun  atomic.Int64 // unix nano
}

func NewScheduledCommands(cfgs []config.CommandConfig) []*ScheduledCommand {
	cmds := make([]*ScheduledCommand, 0, len(cfgs))
	for i, c := range cfgs {
		cmds = append(cmds, &ScheduledCommand{
			index: i,
			cfg:   c,
		})
	}
	return cmds
}

func (sc *ScheduledCommand) Index() int {
	return sc.index
}

func (sc *ScheduledCommand) Text() string {
	return sc.cfg.Command
}

func (sc *ScheduledCommand) Config() config.CommandConfig {
	return sc.cfg
}

func (sc *ScheduledCommand) Output() string {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.output
}

func (sc *ScheduledCommand) setOutput(out string) {
	sc.mutex.Lock()
	sc.output = out
	sc.mutex.Unlock()
}

// FirstLine is the cached output up to, not including, the first newline.
func (sc *ScheduledCommand) FirstLine() string {
	return FirstLine(sc.Output())
}

func FirstLine(out string) string {
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		return out[:i]
	}
	return out
}

func (sc *ScheduledCommand) State() CommandState {
	return CommandState(sc.state.Load())
}

func (sc *ScheduledCommand) setState(s CommandState) {
	sc.state.Store(int32(s))
	commandStateGauge.Set(float64(s), sc.label())
}

func (sc *ScheduledCommand) Runs() int64 {
	return sc.runs.Load()
}

func (sc *ScheduledCommand) Failures() int64 {
	return sc.failures.Load()
}

func (sc *ScheduledCommand) LastRun() time.Time {
	ns := sc.lastRun.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (sc *ScheduledCommand) recordRun(res Result) {
	sc.runs.Inc()
	sc.lastRun.Store(time.Now().UnixNano())
	result := "success"
	if !res.Succeeded {
		sc.failures.Inc()
		result = "failure"
	}
	runCounter.Inc(sc.label(), result)
	runTimer.Observe(res.Duration, sc.label())
}

func (sc *ScheduledCommand) label() string {
	return sc.cfg.Command
}

type CommandStats struct {
	Command  string    `json:"command"`
	State    string    `json:"state"`
	Runs     int64     `json:"runs"`
	Failures int64     `json:"failures"`
	LastRun  time.Time `json:"last_run"`
	Output   string    `json:"output"`
}

func (sc *ScheduledCommand) Stats() CommandStats {
	return CommandStats{
		Command:  sc.Text(),
		State:    sc.State().String(),
		Runs:     sc.Runs(),
		Failures: sc.Failures(),
		LastRun:  sc.LastRun(),
		Output:   sc.FirstLine(),
	}
}
