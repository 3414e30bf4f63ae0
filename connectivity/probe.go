package connectivity

import (
	"context"
	"time"

	"github.com/AliGym19/voiceverse-sub001/fetch"
	"github.com/AliGym19/voiceverse-sub001/logger"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const defaultProbeInterval = 15 * time.Second

// Fetcher issues the reachability check. Satisfied by *fetch.Client.
type Fetcher interface {
	Head(ctx context.Context, url string) (*fetch.Response, error)
}

// Prober periodically checks origin reachability and feeds the result
// into the monitor. Explicit client reports still take effect between
// probe ticks; the prober only corrects drift.
type Prober struct {
	monitor   *Monitor
	fetcher   Fetcher
	healthURL string
	interval  time.Duration
	scheduler gocron.Scheduler
	log       *logger.CtxZapLogger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithInterval sets the probe cadence.
func WithInterval(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.interval = d
		}
	}
}

// NewProber creates a prober that issues HEAD healthURL on each tick.
// Any response from the server counts as reachable: a server returning
// errors is still online.
func NewProber(monitor *Monitor, fetcher Fetcher, healthURL string, opts ...ProberOption) (*Prober, error) {
	p := &Prober{
		monitor:   monitor,
		fetcher:   fetcher,
		healthURL: healthURL,
		interval:  defaultProbeInterval,
		log:       logger.GetLogger("connectivity"),
	}
	for _, opt := range opts {
		opt(p)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	p.scheduler = scheduler
	return p, nil
}

// Start schedules the periodic probe and begins running it.
func (p *Prober) Start(ctx context.Context) error {
	_, err := p.scheduler.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(func() { p.ProbeOnce(ctx) }),
	)
	if err != nil {
		return err
	}
	p.scheduler.Start()
	p.log.InfoCtx(ctx, "connectivity probe started",
		zap.String("url", p.healthURL),
		zap.Duration("interval", p.interval))
	return nil
}

// Stop shuts the scheduler down.
func (p *Prober) Stop() error {
	return p.scheduler.Shutdown()
}

// ProbeOnce performs a single reachability check and records the
// result. Exposed so the agent can force a check on demand.
func (p *Prober) ProbeOnce(ctx context.Context) bool {
	_, err := p.fetcher.Head(ctx, p.healthURL)
	online := err == nil || !fetch.IsTransportError(err)
	p.monitor.SetOnline(ctx, online)
	return online
}
