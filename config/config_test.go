package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultDocument = `{
  "default_update_delay": 990,
  "thread_polling_delay": 500,
  "delimiter": " ",
  "commands": [
    {
      "command": "date"
    },
    {
      "command": "echo \"The bar is working\"",
      "update_delay": 0
    }
  ]
}`

func TestDefaultDocument(t *testing.T) {
	data, err := Marshal(DefaultConfigPath, Default())
	require.Nil(t, err)
	assert.Equal(t, defaultDocument, string(data))
}

func TestEnsureExists(t *testing.T) {
	t.Run("create missing json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")

		created, err := EnsureExists(path)
		require.Nil(t, err)
		assert.True(t, created)

		data, err := os.ReadFile(path)
		require.Nil(t, err)
		assert.Equal(t, defaultDocument, string(data))

		created, err = EnsureExists(path)
		require.Nil(t, err)
		assert.False(t, created)
	})

	t.Run("keep existing document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.Nil(t, os.WriteFile(path, []byte(`{"delimiter":"|"}`), 0o644))

		created, err := EnsureExists(path)
		require.Nil(t, err)
		assert.False(t, created)

		cfg, err := Load(path)
		require.Nil(t, err)
		assert.Equal(t, "|", cfg.Delimiter)
	})

	t.Run("unwritable directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "config.json")
		_, err := EnsureExists(path)
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	})
}

func TestLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "config.yaml"} {
		name := name
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.Nil(t, WriteDefault(path))

			cfg, err := Load(path)
			require.Nil(t, err)

			def := Default()
			assert.Equal(t, def.DefaultUpdateDelay, cfg.DefaultUpdateDelay)
			assert.Equal(t, def.ThreadPollingDelay, cfg.ThreadPollingDelay)
			assert.Equal(t, def.Delimiter, cfg.Delimiter)
			assert.Equal(t, def.Commands, cfg.Commands)

			require.Len(t, cfg.Commands, 2)
			assert.Equal(t, 990*time.Millisecond, cfg.Commands[0].Delay(cfg.UpdateDelay()))
			assert.Equal(t, time.Duration(0), cfg.Commands[1].Delay(cfg.UpdateDelay()))
		})
	}
}

func TestLoad(t *testing.T) {
	write := func(t *testing.T, name, content string) string {
		path := filepath.Join(t.TempDir(), name)
		require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(write(t, "c.json", `{"default_update_delay":1000,"delimiter":"|","commands":[{"command":"echo A"}]}`))
		require.Nil(t, err)
		assert.Equal(t, uint64(DefaultThreadPollingDelay), cfg.ThreadPollingDelay)
		assert.Equal(t, DefaultShell, cfg.Shell)
		assert.Equal(t, PublisherTypeX11, cfg.Publisher.Type)
		assert.True(t, cfg.Log.Handler.StdErr)
		assert.False(t, *cfg.Log.Caller)
		assert.Nil(t, cfg.Server)
		assert.Nil(t, cfg.Mirror)
		require.Len(t, cfg.Adjustments(), 1)
		assert.Contains(t, cfg.Adjustments()[0], "thread_polling_delay is 0")
	})

	t.Run("explicit polling delay", func(t *testing.T) {
		cfg, err := Load(write(t, "c.json", `{"thread_polling_delay":200,"commands":[]}`))
		require.Nil(t, err)
		assert.Equal(t, 200*time.Millisecond, cfg.PollingInterval())
		assert.Empty(t, cfg.Adjustments())
	})

	t.Run("command options", func(t *testing.T) {
		cfg, err := Load(write(t, "c.json", `{
			"default_update_delay": 1000,
			"thread_polling_delay": 200,
			"delimiter": "|",
			"commands": [
				{"command": "echo A"},
				{"command": "echo B", "update_delay": 0},
				{"command": "exit 1", "ignore_status_code": false},
				{"command": "exit 2", "ignore_status_code": true, "update_delay": 30}
			]
		}`))
		require.Nil(t, err)
		require.Len(t, cfg.Commands, 4)

		def := cfg.UpdateDelay()
		assert.Equal(t, time.Second, cfg.Commands[0].Delay(def))
		assert.Equal(t, time.Duration(0), cfg.Commands[1].Delay(def))
		assert.Equal(t, 30*time.Millisecond, cfg.Commands[3].Delay(def))

		assert.False(t, cfg.Commands[0].RerunOnFailure())
		assert.True(t, cfg.Commands[2].RerunOnFailure())
		assert.False(t, cfg.Commands[3].RerunOnFailure())
		assert.Equal(t, 200*time.Millisecond, cfg.PollingInterval())
	})

	t.Run("yaml document", func(t *testing.T) {
		cfg, err := Load(write(t, "c.yml", `
default_update_delay: 1000
thread_polling_delay: 250
delimiter: " | "
commands:
  - command: uptime
    update_delay: 5000
publisher:
  type: stdout
server:
  listen: 127.0.0.1:9180
`))
		require.Nil(t, err)
		assert.Equal(t, " | ", cfg.Delimiter)
		assert.Equal(t, PublisherTypeStdout, cfg.Publisher.Type)
		assert.Equal(t, "/metrics", cfg.Server.MetricRoutePath)
		assert.Equal(t, 5*time.Second, cfg.Server.GracefulStopTimeout())
		assert.Equal(t, 5*time.Second, cfg.Commands[0].Delay(cfg.UpdateDelay()))
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Load(write(t, "c.json", `{"commands": [`))
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	})

	t.Run("unknown publisher", func(t *testing.T) {
		_, err := Load(write(t, "c.json", `{"publisher":{"type":"wayland"}}`))
		assert.NotNil(t, err)
	})

	t.Run("mirror defaults", func(t *testing.T) {
		cfg, err := Load(write(t, "c.json", `{"mirror":{"redis":{"address":"127.0.0.1:6379"}}}`))
		require.Nil(t, err)
		assert.Equal(t, DefaultRedisMirrorKey, cfg.Mirror.Redis.Key)
		assert.Equal(t, 200*time.Millisecond, cfg.Mirror.Redis.Timeout())

		_, err = Load(write(t, "c.json", `{"mirror":{"redis":{}}}`))
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	})

	t.Run("push defaults", func(t *testing.T) {
		cfg, err := Load(write(t, "c.json", `{"metrics":{"push":{"gateway":"http://127.0.0.1:9091"}}}`))
		require.Nil(t, err)
		assert.Equal(t, AppName, cfg.Metrics.Push.Job)
		assert.Equal(t, 15*time.Second, cfg.Metrics.Push.Interval())
	})

	t.Run("log level", func(t *testing.T) {
		_, err := Load(write(t, "c.json", `{"log":{"level":"loud"}}`))
		assert.True(t, errors.Is(err, ErrInvalidConfig))

		cfg, err := Load(write(t, "c.json", `{"log":{"level":"debug","handler":{"stdout":true}}}`))
		require.Nil(t, err)
		assert.Equal(t, "debug", cfg.Log.Level().String())
		assert.False(t, cfg.Log.Handler.StdErr)
	})
}
