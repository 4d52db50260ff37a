package cmd

import (
	"net/http"
	"time"

	"github.com/ikenchina/rootbar/bar"
	"github.com/ikenchina/rootbar/config"
	"github.com/ikenchina/rootbar/pkg/errors"
	"github.com/ikenchina/rootbar/pkg/log"
	"github.com/ikenchina/rootbar/pkg/metric"
	"github.com/ikenchina/rootbar/pkg/publish"
	usync "github.com/ikenchina/rootbar/pkg/sync"
)

type BarCmd struct {
	cfg        *config.Config
	waitCloser usync.WaitCloser
	logger     log.Logger
	runner     bar.CommandRunner
	publisher  publish.Publisher
	scheduler  *bar.Scheduler
	aggregator *bar.Aggregator
	httpSvr    *http.Server
	startAt    time.Time
}

type BarOption func(*BarCmd)

// WithPublisher replaces the publisher built from the configuration.
func WithPublisher(p publish.Publisher) BarOption {
	return func(bc *BarCmd) {
		bc.publisher = p
	}
}

func WithRunner(r bar.CommandRunner) BarOption {
	return func(bc *BarCmd) {
		bc.runner = r
	}
}

func NewBarCmd(cfg *config.Config, opts ...BarOption) *BarCmd {
	bc := &BarCmd{
		cfg:        cfg,
		waitCloser: usync.NewWaitCloser(nil),
		logger:     log.WithLogger("[BarCommand] "),
	}
	for _, opt := range opts {
		opt(bc)
	}
	if bc.runner == nil {
		bc.runner = bar.NewShellRunner(cfg.Shell)
	}
	bc.scheduler = bar.NewScheduler(bc.waitCloser, bar.NewScheduledCommands(cfg.Commands), bc.runner, cfg.UpdateDelay())
	return bc
}

func (bc *BarCmd) Name() string {
	return config.AppName
}

func (bc *BarCmd) Stop() error {
	bc.logger.Infof("stopped")
	bc.waitCloser.Close(nil)
	return bc.scheduler.Wait()
}

// Run opens the publisher, starts every command and publishes the status
// line every polling interval until stopped or a fatal error occurs.
func (bc *BarCmd) Run() error {
	if bc.publisher == nil {
		pub, err := publish.New(bc.cfg)
		if err != nil {
			return errors.WithStack(err)
		}
		bc.publisher = pub
	}
	bc.aggregator = bar.NewAggregator(bc.scheduler, bc.scheduler.Commands(), bc.cfg.Delimiter, bc.cfg.PollingInterval(), bc.publisher)
	bc.startAt = time.Now()
	defer bc.stop()

	bc.startHttpServer()
	bc.startPusher()
	bc.scheduler.Start()

	err := errors.WithStack(bc.aggregator.Run(bc.waitCloser.Context()))
	bc.waitCloser.Close(err)
	if werr := bc.scheduler.Wait(); werr != nil {
		bc.logger.Debugf("scheduler stopped : %v", werr)
	}
	return bc.waitCloser.Error()
}

func (bc *BarCmd) stop() {
	bc.stopHttpServer()
	bc.logger.LogIfError(bc.publisher.Close(), "close publisher")
}

func (bc *BarCmd) startPusher() {
	if bc.cfg.Metrics == nil || bc.cfg.Metrics.Push == nil {
		return
	}
	pcfg := bc.cfg.Metrics.Push
	bc.logger.Infof("push metrics to %s every %s", pcfg.Gateway, pcfg.Interval())
	metric.StartPusher(bc.waitCloser.Context(), pcfg.Gateway, pcfg.Job, pcfg.Grouping, pcfg.Interval())
}
