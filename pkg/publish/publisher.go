package publish

import (
	"errors"
	"fmt"
	"os"

	"github.com/ikenchina/rootbar/config"
	"github.com/ikenchina/rootbar/pkg/log"
	"github.com/ikenchina/rootbar/pkg/metric"
)

var (
	ErrOpenDisplay      = errors.New("cannot open display")
	ErrUnknownPublisher = errors.New("unknown publisher type")
)

var (
	mirrorCounter = metric.NewCounterVec(metric.CounterVecOpts{
		Namespace: config.AppName,
		Subsystem: "mirror",
		Name:      "publish_total",
		Labels:    []string{"mirror", "result"},
	})
)

// Publisher makes the status line visible. Publish is called from a single
// goroutine.
type Publisher interface {
	Publish(text string) error
	Close() error
}

// New builds the primary publisher from cfg and wraps it with the configured
// mirrors. Opening the primary may fail, mirrors connect lazily.
func New(cfg *config.Config) (Publisher, error) {
	var primary Publisher
	switch cfg.Publisher.Type {
	case config.PublisherTypeX11:
		x, err := NewX11(cfg.Publisher.Display)
		if err != nil {
			return nil, err
		}
		primary = x
	case config.PublisherTypeStdout:
		primary = NewStdout(os.Stdout)
	default:
		return nil, errors.Join(ErrUnknownPublisher, fmt.Errorf("type(%d)", cfg.Publisher.Type))
	}

	var mirrors []Publisher
	if cfg.Mirror != nil && cfg.Mirror.Redis != nil {
		mirrors = append(mirrors, NewRedis(*cfg.Mirror.Redis))
	}
	if len(mirrors) == 0 {
		return primary, nil
	}
	return NewMirrored(primary, mirrors...), nil
}

type mirrored struct {
	primary Publisher
	mirrors []Publisher
	last    []string
	synced  []bool
	logger  log.Logger
}

// NewMirrored publishes to primary and copies every changed line to the
// mirrors. Only the primary's error is returned; a mirror that fails is
// logged and retried on the next Publish.
func NewMirrored(primary Publisher, mirrors ...Publisher) Publisher {
	return &mirrored{
		primary: primary,
		mirrors: mirrors,
		last:    make([]string, len(mirrors)),
		synced:  make([]bool, len(mirrors)),
		logger:  log.WithLogger("[Mirror] "),
	}
}

func (m *mirrored) Publish(text string) error {
	if err := m.primary.Publish(text); err != nil {
		return err
	}
	for i, mirror := range m.mirrors {
		if m.synced[i] && m.last[i] == text {
			continue
		}
		name := fmt.Sprintf("%d", i)
		if err := mirror.Publish(text); err != nil {
			mirrorCounter.Inc(name, "fail")
			m.logger.Warnf("mirror(%s) publish error : %v", name, err)
			m.synced[i] = false
			continue
		}
		mirrorCounter.Inc(name, "ok")
		m.last[i] = text
		m.synced[i] = true
	}
	return nil
}

func (m *mirrored) Close() error {
	errs := []error{m.primary.Close()}
	for _, mirror := range m.mirrors {
		errs = append(errs, mirror.Close())
	}
	return errors.Join(errs...)
}
