package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/ikenchina/rootbar/cmd"
	"github.com/ikenchina/rootbar/config"
	"github.com/ikenchina/rootbar/pkg/errors"
	"github.com/ikenchina/rootbar/pkg/log"
	"github.com/ikenchina/rootbar/pkg/sync"
	"github.com/ikenchina/rootbar/pkg/util"
	"github.com/ikenchina/rootbar/pkg/version"
)

func main() {
	maxprocs.Set()
	panicIfError(config.LoadFlags())
	if config.GetFlag().ShowVersion {
		version.Print(os.Stdout)
		return
	}

	cfg := loadConfig(config.GetFlag().ConfigPath)
	panicIfError(log.InitLog(*cfg.Log))
	for _, adj := range cfg.Adjustments() {
		log.Warnf("config %s : %s", config.GetFlag().ConfigPath, adj)
	}

	cmder := cmd.NewBarCmd(cfg)
	sync.SafeGo(func() {
		handleSignal(cmder, stopTimeout(cfg))
	}, nil)

	if err := cmder.Run(); err != nil {
		log.Errorf("cmd(%s) exit with error : %v", cmder.Name(), errors.WithStack(err))
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

func loadConfig(path string) *config.Config {
	created, err := config.EnsureExists(path)
	panicIfError(err)
	if created {
		log.Infof("no configuration at %s, wrote the default one", path)
	}
	cfg, err := config.Load(path)
	panicIfError(err)
	return cfg
}

func stopTimeout(cfg *config.Config) time.Duration {
	if cfg.Server != nil {
		return cfg.Server.GracefulStopTimeout()
	}
	return 5 * time.Second
}

func handleSignal(c cmd.Cmd, timeout time.Duration) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGPIPE, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	for {
		sig := <-signals
		log.Infof("received signal: %s", sig)
		switch sig {
		case syscall.SIGPIPE:
		default:
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			util.StopWithCtx(ctx, func() {
				log.Infof("stop cmd(%s)", c.Name())
				if err := c.Stop(); err != nil {
					log.Errorf("cmd(%s) stopped with error : %v", c.Name(), err)
				}
			})

			log.Sync()
			os.Exit(0)
			return
		}
	}
}

func panicIfError(err error) {
	if err == nil {
		return
	}
	log.Panic(err)
}
