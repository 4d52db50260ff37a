package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ikenchina/rootbar/bar"
	usync "github.com/ikenchina/rootbar/pkg/sync"
	"github.com/ikenchina/rootbar/pkg/version"
)

type barStatus struct {
	Text     string             `json:"text"`
	Ticks    int64              `json:"ticks"`
	Uptime   string             `json:"uptime"`
	Version  version.Info       `json:"version"`
	Commands []bar.CommandStats `json:"commands"`
}

func (bc *BarCmd) router() http.Handler {
	router := httprouter.New()

	metricPath := "/metrics"
	if bc.cfg.Server != nil {
		metricPath = bc.cfg.Server.MetricRoutePath
	}
	router.Handler(http.MethodGet, metricPath, promhttp.Handler())
	router.HandlerFunc(http.MethodGet, "/debug/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.HandlerFunc(http.MethodDelete, "/", func(w http.ResponseWriter, r *http.Request) {
		bc.Stop()
	})
	router.HandlerFunc(http.MethodGet, "/status", bc.statusHandler)
	return router
}

func (bc *BarCmd) statusHandler(w http.ResponseWriter, r *http.Request) {
	st := barStatus{
		Version:  version.Get(),
		Commands: []bar.CommandStats{},
	}
	if bc.aggregator != nil {
		st.Text = bc.aggregator.Last()
		st.Ticks = bc.aggregator.Ticks()
		st.Uptime = time.Since(bc.startAt).Truncate(time.Second).String()
	}
	for _, c := range bc.scheduler.Commands() {
		st.Commands = append(st.Commands, c.Stats())
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		bc.logger.Errorf("encode status : %v", err)
	}
}

func (bc *BarCmd) startHttpServer() {
	if bc.cfg.Server == nil || bc.cfg.Server.Listen == "" {
		return
	}

	bc.httpSvr = &http.Server{
		Addr:    bc.cfg.Server.Listen,
		Handler: bc.router(),
	}
	svr := bc.httpSvr

	usync.SafeGo(func() {
		if err := svr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			bc.logger.Errorf("http server error : %v", err)
			bc.waitCloser.Close(err)
		}
	}, nil)
	bc.logger.Infof("start http server, listening on %s", bc.cfg.Server.Listen)
}

func (bc *BarCmd) stopHttpServer() {
	if bc.httpSvr == nil {
		return
	}
	bc.logger.Infof("stop http server")

	ctx, cancel := context.WithTimeout(context.Background(), bc.cfg.Server.GracefulStopTimeout())
	defer cancel()
	if err := bc.httpSvr.Shutdown(ctx); err != nil {
		bc.logger.Errorf("stop http server error : %v", err)
	}
	bc.httpSvr = nil
}
