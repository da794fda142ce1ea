// Package runner schedules shopper journeys at a steady rate.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/time/rate"

	"github.com/emedico/backend/tools/loadgen/internal/config"
	"github.com/emedico/backend/tools/loadgen/internal/metrics"
	"github.com/emedico/backend/tools/loadgen/internal/shopper"
)

// ErrAlreadyRunning is returned by Run when a run is in progress.
var ErrAlreadyRunning = errors.New("runner is already running")

type weighted struct {
	name    string
	journey shopper.Journey
	weight  int
}

// Runner starts journeys at the configured rate until the duration elapses.
type Runner struct {
	cfg        *config.Config
	httpClient *http.Client
	limiter    *rate.Limiter
	collector  *metrics.Collector
	journeys   []weighted
	total      int
	out        io.Writer

	running atomic.Bool
	seq     atomic.Uint64
	pickMu  sync.Mutex
	picker  *gofakeit.Faker
}

// New creates a runner for cfg reporting into collector. Progress lines are
// written to out.
func New(cfg *config.Config, collector *metrics.Collector, out io.Writer) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Target.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        cfg.Concurrency * 2,
				MaxIdleConnsPerHost: cfg.Concurrency,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(cfg.QPS), cfg.Burst),
		collector: collector,
		out:       out,
		picker:    gofakeit.New(cfg.Seed),
	}
	for _, name := range cfg.EnabledJourneys() {
		j, err := shopper.Lookup(name)
		if err != nil {
			return nil, err
		}
		w := cfg.Journeys[name]
		r.journeys = append(r.journeys, weighted{name: name, journey: j, weight: w})
		r.total += w
	}
	return r, nil
}

// Run starts journeys until ctx ends or the configured duration elapses.
// Journeys already in flight when the duration elapses run to completion;
// cancelling ctx cuts them short.
func (r *Runner) Run(ctx context.Context) error {
	if r.running.Swap(true) {
		return ErrAlreadyRunning
	}
	defer r.running.Store(false)

	schedCtx, cancel := context.WithTimeout(ctx, r.cfg.Duration)
	defer cancel()

	fmt.Fprintf(r.out, "Running %q against %s for %v at %.1f journeys/s (max %d in flight)\n",
		r.cfg.Name, r.cfg.Target.BaseURL, r.cfg.Duration, r.cfg.QPS, r.cfg.Concurrency)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.reportProgress(schedCtx)
	}()

	slots := make(chan struct{}, r.cfg.Concurrency)
	for {
		if err := r.limiter.Wait(schedCtx); err != nil {
			break
		}
		select {
		case slots <- struct{}{}:
		case <-schedCtx.Done():
		}
		if schedCtx.Err() != nil {
			break
		}

		name, journey := r.pick()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-slots }()
			r.runJourney(ctx, name, journey)
		}()
	}

	wg.Wait()
	return nil
}

func (r *Runner) runJourney(ctx context.Context, name string, journey shopper.Journey) {
	faker := gofakeit.New(r.journeySeed())
	s := shopper.New(r.httpClient, r.cfg.Target.APIBase(), faker, r.collector)

	r.collector.JourneyStarted()
	r.collector.JourneyFinished(name, journey(ctx, s))
}

// journeySeed keeps seeded runs reproducible while giving each journey its own
// data. Seed 0 means random.
func (r *Runner) journeySeed() uint64 {
	if r.cfg.Seed == 0 {
		return 0
	}
	return r.cfg.Seed + r.seq.Add(1)
}

// pick selects a journey with probability proportional to its weight.
func (r *Runner) pick() (string, shopper.Journey) {
	r.pickMu.Lock()
	n := r.picker.IntRange(0, r.total-1)
	r.pickMu.Unlock()

	for _, w := range r.journeys {
		if n < w.weight {
			return w.name, w.journey
		}
		n -= w.weight
	}
	last := r.journeys[len(r.journeys)-1]
	return last.name, last.journey
}

func (r *Runner) reportProgress(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := r.collector.Snapshot()
			fmt.Fprintf(r.out, "  journeys=%d requests=%d failed=%d success=%.1f%% avg=%v\n",
				s.Journeys, s.Requests, s.FailedRequests, s.SuccessRate()*100, s.AverageLatency.Round(time.Millisecond))
		}
	}
}
