package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Config is the bar document. It is loaded once at startup and passed
// explicitly to whoever needs it.
type Config struct {
	DefaultUpdateDelay uint64          `json:"default_update_delay" yaml:"default_update_delay"` // ms
	ThreadPollingDelay uint64          `json:"thread_polling_delay" yaml:"thread_polling_delay"` // ms
	Delimiter          string          `json:"delimiter" yaml:"delimiter"`
	Commands           []CommandConfig `json:"commands" yaml:"commands"`

	Shell     string           `json:"shell,omitempty" yaml:"shell,omitempty"`
	Publisher *PublisherConfig `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Mirror    *MirrorConfig    `json:"mirror,omitempty" yaml:"mirror,omitempty"`
	Metrics   *MetricsConfig   `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Log       *LogConfig       `json:"log,omitempty" yaml:"log,omitempty"`
	Server    *ServerConfig    `json:"server,omitempty" yaml:"server,omitempty"`

	adjustments []string
}

// Default returns the document written when no configuration exists yet.
func Default() *Config {
	retired := uint64(0)
	return &Config{
		DefaultUpdateDelay: DefaultUpdateDelay,
		ThreadPollingDelay: DefaultThreadPollingDelay,
		Delimiter:          DefaultDelimiter,
		Commands: []CommandConfig{
			{
				Command: "date",
			},
			{
				Command:     "echo \"The bar is working\"",
				UpdateDelay: &retired,
			},
		},
	}
}

func (c *Config) fix() error {
	type fixInter interface {
		fix() error
	}

	if c.ThreadPollingDelay == 0 {
		c.ThreadPollingDelay = DefaultThreadPollingDelay
		c.adjustments = append(c.adjustments,
			fmt.Sprintf("thread_polling_delay is 0, publishing every %dms instead", DefaultThreadPollingDelay))
	}
	if c.Shell == "" {
		c.Shell = DefaultShell
	}
	if c.Publisher == nil {
		c.Publisher = &PublisherConfig{}
	}
	if c.Log == nil {
		c.Log = &LogConfig{}
	}

	fixes := []fixInter{c.Publisher, c.Log}
	if c.Mirror != nil {
		fixes = append(fixes, c.Mirror)
	}
	if c.Metrics != nil {
		fixes = append(fixes, c.Metrics)
	}
	if c.Server != nil {
		fixes = append(fixes, c.Server)
	}
	for _, fix := range fixes {
		if err := fix.fix(); err != nil {
			return err
		}
	}
	return nil
}

// Adjustments lists the values Load changed in a way the user may not
// expect, for the caller to report.
func (c *Config) Adjustments() []string {
	return c.adjustments
}

func (c *Config) UpdateDelay() time.Duration {
	return time.Duration(c.DefaultUpdateDelay) * time.Millisecond
}

func (c *Config) PollingInterval() time.Duration {
	return time.Duration(c.ThreadPollingDelay) * time.Millisecond
}

type CommandConfig struct {
	Command          string  `json:"command" yaml:"command"`
	UpdateDelay      *uint64 `json:"update_delay,omitempty" yaml:"update_delay,omitempty"` // ms, 0 runs once
	IgnoreStatusCode *bool   `json:"ignore_status_code,omitempty" yaml:"ignore_status_code,omitempty"`
}

// Delay resolves the respawn delay against the document default.
func (cc *CommandConfig) Delay(def time.Duration) time.Duration {
	if cc.UpdateDelay == nil {
		return def
	}
	return time.Duration(*cc.UpdateDelay) * time.Millisecond
}

// RerunOnFailure is true only when ignore_status_code is explicitly false.
func (cc *CommandConfig) RerunOnFailure() bool {
	return cc.IgnoreStatusCode != nil && !*cc.IgnoreStatusCode
}

type PublisherConfig struct {
	Type    PublisherType `json:"type" yaml:"type"`
	Display string        `json:"display,omitempty" yaml:"display,omitempty"` // empty means $DISPLAY
}

func (pc *PublisherConfig) fix() error {
	if pc.Type == PublisherTypeUnknown {
		pc.Type = PublisherTypeX11
	}
	return nil
}

type MirrorConfig struct {
	Redis *RedisMirrorConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

func (mc *MirrorConfig) fix() error {
	if mc.Redis == nil {
		return nil
	}
	return mc.Redis.fix()
}

type RedisMirrorConfig struct {
	Address   string `json:"address" yaml:"address"`
	UserName  string `json:"username,omitempty" yaml:"username,omitempty"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`
	Db        int    `json:"db,omitempty" yaml:"db,omitempty"`
	Key       string `json:"key,omitempty" yaml:"key,omitempty"`
	Channel   string `json:"channel,omitempty" yaml:"channel,omitempty"`
	TimeoutMs uint64 `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

func (rc *RedisMirrorConfig) fix() error {
	if rc.Address == "" {
		return newConfigError("mirror.redis.address is empty")
	}
	if rc.Key == "" && rc.Channel == "" {
		rc.Key = DefaultRedisMirrorKey
	}
	if rc.TimeoutMs == 0 {
		rc.TimeoutMs = 200
	}
	return nil
}

func (rc *RedisMirrorConfig) Timeout() time.Duration {
	return time.Duration(rc.TimeoutMs) * time.Millisecond
}

type MetricsConfig struct {
	Push *PushConfig `json:"push,omitempty" yaml:"push,omitempty"`
}

func (mc *MetricsConfig) fix() error {
	if mc.Push == nil {
		return nil
	}
	return mc.Push.fix()
}

type PushConfig struct {
	Gateway    string            `json:"gateway" yaml:"gateway"`
	Job        string            `json:"job,omitempty" yaml:"job,omitempty"`
	Grouping   map[string]string `json:"grouping,omitempty" yaml:"grouping,omitempty"`
	IntervalMs uint64            `json:"interval,omitempty" yaml:"interval,omitempty"`
}

func (pc *PushConfig) fix() error {
	if pc.Gateway == "" {
		return newConfigError("metrics.push.gateway is empty")
	}
	if pc.Job == "" {
		pc.Job = AppName
	}
	if pc.IntervalMs == 0 {
		pc.IntervalMs = 15000
	}
	return nil
}

func (pc *PushConfig) Interval() time.Duration {
	return time.Duration(pc.IntervalMs) * time.Millisecond
}

type ServerConfig struct {
	Listen                string `json:"listen" yaml:"listen"`
	MetricRoutePath       string `json:"metric_route_path,omitempty" yaml:"metric_route_path,omitempty"`
	GracefulStopTimeoutMs uint64 `json:"graceful_stop_timeout,omitempty" yaml:"graceful_stop_timeout,omitempty"`
}

func (sc *ServerConfig) fix() error {
	if sc.MetricRoutePath == "" {
		sc.MetricRoutePath = "/metrics"
	}
	if !strings.HasPrefix(sc.MetricRoutePath, "/") {
		sc.MetricRoutePath = "/" + sc.MetricRoutePath
	}
	if sc.GracefulStopTimeoutMs < 1000 {
		sc.GracefulStopTimeoutMs = 5000
	}
	return nil
}

func (sc *ServerConfig) GracefulStopTimeout() time.Duration {
	return time.Duration(sc.GracefulStopTimeoutMs) * time.Millisecond
}

type LogHandlerFileConfig struct {
	FileName   string `json:"file_name" yaml:"fileName"`
	MaxSize    int    `json:"max_size,omitempty" yaml:"maxSize"` // unit is megabyte
	MaxBackups int    `json:"max_backups,omitempty" yaml:"maxBackups"`
	MaxAge     int    `json:"max_age,omitempty" yaml:"maxAge"`
}

type LogHandlerConfig struct {
	File   *LogHandlerFileConfig `json:"file,omitempty" yaml:"file"`
	StdOut bool                  `json:"stdout,omitempty" yaml:"stdout"`
	StdErr bool                  `json:"stderr,omitempty" yaml:"stderr"`
}

type LogConfig struct {
	LevelStr           string           `json:"level,omitempty" yaml:"level"`
	StacktraceLevelStr string           `json:"stacktrace_level,omitempty" yaml:"stacktraceLevel"`
	Caller             *bool            `json:"caller,omitempty" yaml:"caller"`
	Func               *bool            `json:"func,omitempty" yaml:"func"`
	Handler            LogHandlerConfig `json:"handler" yaml:"handler"`
}

var logLevels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

func (lc *LogConfig) fix() error {
	// diagnostics belong on stderr unless told otherwise
	if lc.Handler.File == nil && !lc.Handler.StdOut && !lc.Handler.StdErr {
		lc.Handler.StdErr = true
	}
	if lc.Caller == nil {
		lc.Caller = new(bool)
	}
	if lc.Func == nil {
		lc.Func = new(bool)
	}
	for _, lvl := range []string{lc.LevelStr, lc.StacktraceLevelStr} {
		if lvl != "" && !slices.Contains(logLevels, strings.ToLower(lvl)) {
			return newConfigError("invalid log level : %s", lvl)
		}
	}
	if lc.Handler.File != nil && lc.Handler.File.FileName == "" {
		return newConfigError("log.handler.file.fileName is empty")
	}
	return nil
}

func (lc *LogConfig) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(lc.LevelStr)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func (lc *LogConfig) StacktraceLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(lc.StacktraceLevelStr)
	if err != nil {
		return zapcore.PanicLevel
	}
	return level
}

// EnsureExists writes Default() to path when nothing is there yet and
// reports whether it did so.
func EnsureExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, newConfigError("stat %s : %w", path, err)
	}
	if err = WriteDefault(path); err != nil {
		return false, err
	}
	return true, nil
}

func WriteDefault(path string) error {
	data, err := Marshal(path, Default())
	if err != nil {
		return newConfigError("encode default config : %w", err)
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return newConfigError("write default config %s : %w", path, err)
	}
	return nil
}

// Load reads and defaults the document at path. The format follows the
// file extension: .yaml/.yml are YAML, everything else is JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newConfigError("read %s : %w", path, err)
	}
	cfg := &Config{}
	if err = Unmarshal(path, data, cfg); err != nil {
		return nil, newConfigError("parse %s : %w", path, err)
	}
	if err = cfg.fix(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYaml(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func Marshal(path string, cfg *Config) ([]byte, error) {
	if isYaml(path) {
		return yaml.Marshal(cfg)
	}
	return json.MarshalIndent(cfg, "", "  ")
}

func Unmarshal(path string, data []byte, cfg *Config) error {
	if isYaml(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}
