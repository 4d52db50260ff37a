package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikenchina/rootbar/bar"
	"github.com/ikenchina/rootbar/config"
)

type memPublisher struct {
	mu     sync.Mutex
	texts  []string
	err    error
	closed bool
}

func (m *memPublisher) Publish(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.texts = append(m.texts, text)
	return nil
}

func (m *memPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memPublisher) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}

type staticRunner map[string]bar.Result

func (s staticRunner) Run(ctx context.Context, text string) (bar.Result, error) {
	res, ok := s[text]
	if !ok {
		return bar.Result{}, errors.Join(bar.ErrShellSpawn, errors.New(text))
	}
	return res, nil
}

func testConfig(t *testing.T, cmds ...config.CommandConfig) *config.Config {
	cfg := config.Default()
	cfg.Delimiter = "|"
	cfg.ThreadPollingDelay = 5
	cfg.Commands = cmds
	return cfg
}

func runAsync(bc *BarCmd) chan error {
	done := make(chan error, 1)
	go func() { done <- bc.Run() }()
	return done
}

func waitRun(t *testing.T, done chan error) error {
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("bar did not stop")
	}
	return nil
}

func TestBarCmdRunAndStop(t *testing.T) {
	zero := uint64(0)
	cfg := testConfig(t,
		config.CommandConfig{Command: "clock"},
		config.CommandConfig{Command: "hello", UpdateDelay: &zero},
	)
	runner := staticRunner{
		"clock": {Succeeded: true, Stdout: "12:00\n"},
		"hello": {Succeeded: true, Stdout: "hello\nworld\n"},
	}
	pub := &memPublisher{}
	bc := NewBarCmd(cfg, WithPublisher(pub), WithRunner(runner))
	assert.Equal(t, config.AppName, bc.Name())

	done := runAsync(bc)
	require.Eventually(t, func() bool {
		return pub.last() == "12:00|hello|"
	}, 5*time.Second, 5*time.Millisecond)

	require.Nil(t, bc.Stop())
	require.Nil(t, waitRun(t, done))
	assert.True(t, pub.closed)
}

func TestBarCmdPublishFailure(t *testing.T) {
	cfg := testConfig(t, config.CommandConfig{Command: "clock"})
	pubErr := errors.New("display gone")
	bc := NewBarCmd(cfg,
		WithPublisher(&memPublisher{err: pubErr}),
		WithRunner(staticRunner{"clock": {Succeeded: true}}))

	err := waitRun(t, runAsync(bc))
	assert.ErrorIs(t, err, bar.ErrPublish)
	assert.ErrorIs(t, err, pubErr)
}

func TestBarCmdSpawnFailure(t *testing.T) {
	cfg := testConfig(t, config.CommandConfig{Command: "missing"})
	bc := NewBarCmd(cfg, WithPublisher(&memPublisher{}), WithRunner(staticRunner{}))

	err := waitRun(t, runAsync(bc))
	assert.ErrorIs(t, err, bar.ErrShellSpawn)
}

func TestBarCmdOpenPublisherFailure(t *testing.T) {
	cfg := testConfig(t, config.CommandConfig{Command: "clock"})
	cfg.Publisher = &config.PublisherConfig{Type: config.PublisherTypeX11, Display: "no-display-here"}
	bc := NewBarCmd(cfg, WithRunner(staticRunner{"clock": {Succeeded: true}}))

	err := bc.Run()
	assert.NotNil(t, err)
}

func TestBarCmdApi(t *testing.T) {
	cfg := testConfig(t, config.CommandConfig{Command: "clock"})
	pub := &memPublisher{}
	bc := NewBarCmd(cfg, WithPublisher(pub),
		WithRunner(staticRunner{"clock": {Succeeded: true, Stdout: "12:00\n"}}))
	done := runAsync(bc)
	require.Eventually(t, func() bool {
		return pub.last() == "12:00|"
	}, 5*time.Second, 5*time.Millisecond)

	handler := bc.router()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	st := barStatus{}
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "12:00|", st.Text)
	require.Len(t, st.Commands, 1)
	assert.Equal(t, "clock", st.Commands[0].Command)
	assert.Equal(t, "12:00", st.Commands[0].Output)
	assert.GreaterOrEqual(t, st.Commands[0].Runs, int64(1))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rootbar_status_publish_total")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, waitRun(t, done))
}
