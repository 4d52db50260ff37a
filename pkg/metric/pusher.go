package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/ikenchina/rootbar/pkg/log"
	"github.com/ikenchina/rootbar/pkg/util"
)

// StartPusher pushes the default registry to a push gateway every interval
// until ctx is done.
func StartPusher(ctx context.Context, pushGateway string, jobName string, group map[string]string, interval time.Duration) {
	pusher := push.New(pushGateway, jobName)
	pusher.Gatherer(prometheus.DefaultGatherer)
	for k, v := range group {
		pusher.Grouping(k, v)
	}

	util.CronWithCtx(ctx, interval, func() {
		if err := pusher.Push(); err != nil {
			log.Errorf("push metric to %s error : %v", pushGateway, err)
		}
	})
}
