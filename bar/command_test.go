package bar

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ikenchina/rootbar/config"
)

func u64(v uint64) *uint64 { return &v }

func bptr(v bool) *bool { return &v }

func TestFirstLine(t *testing.T) {
	cases := []struct {
		in  string
		exp string
	}{
		{"", ""},
		{"A", "A"},
		{"A\n", "A"},
		{"A\nB\nC", "A"},
		{"\nB", ""},
		{"Sun Oct 18 12:00:00 UTC 2026\n", "Sun Oct 18 12:00:00 UTC 2026"},
	}
	for _, c := range cases {
		assert.Equal(t, c.exp, FirstLine(c.in), "input %q", c.in)
	}
}

func TestScheduledCommand(t *testing.T) {
	cmds := NewScheduledCommands([]config.CommandConfig{
		{Command: "date"},
		{Command: "echo B", UpdateDelay: u64(0), IgnoreStatusCode: bptr(false)},
	})
	assert.Len(t, cmds, 2)
	assert.Equal(t, 1, cmds[1].Index())
	assert.Equal(t, "echo B", cmds[1].Text())
	assert.Equal(t, CommandStateRunning, cmds[0].State())
	assert.Equal(t, "", cmds[0].Output())
	assert.True(t, cmds[0].LastRun().IsZero())

	cmds[0].setOutput("line1\nline2\n")
	assert.Equal(t, "line1\nline2\n", cmds[0].Output())
	assert.Equal(t, "line1", cmds[0].FirstLine())

	cmds[1].recordRun(Result{Succeeded: false, ExitCode: 1})
	st := cmds[1].Stats()
	assert.Equal(t, int64(1), st.Runs)
	assert.Equal(t, int64(1), st.Failures)
	assert.False(t, st.LastRun.IsZero())
	assert.Equal(t, "running", st.State)

	cmds[1].setState(CommandStateRetired)
	assert.Equal(t, "retired", cmds[1].Stats().State)
}

func TestOutputCellConcurrency(t *testing.T) {
	cmd := NewScheduledCommands([]config.CommandConfig{{Command: "x"}})[0]
	outputs := map[string]bool{"": true, "aaaa\n": true, "bbbb\n": true}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				cmd.setOutput("aaaa\n")
			} else {
				cmd.setOutput("bbbb\n")
			}
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deadline := time.Now().Add(20 * time.Millisecond)
			for time.Now().Before(deadline) {
				assert.True(t, outputs[cmd.Output()])
			}
		}()
	}
	time.Sleep(30 * time.Millisecond)
	close(stop)
	wg.Wait()
}

func TestCommandState(t *testing.T) {
	// values are exported through the command state gauge
	assert.Equal(t, CommandState(0), CommandStateRunning)
	assert.Equal(t, CommandState(1), CommandStateWaiting)
	assert.Equal(t, CommandState(2), CommandStateRetired)

	assert.Equal(t, "running", CommandStateRunning.String())
	assert.Equal(t, "waiting", CommandStateWaiting.String())
	assert.Equal(t, "retired", CommandStateRetired.String())
	assert.Equal(t, "unknown", CommandState(7).String())
}
