package session

import (
	"context"
	"sync"
	"time"
)

type tickerFactory func(time.Duration) (<-chan time.Time, func())

func defaultTickerFactory() tickerFactory {
	return func(d time.Duration) (<-chan time.Time, func()) {
		ticker := time.NewTicker(d)
		return ticker.C, ticker.Stop
	}
}

// Reaper periodically removes idle sessions from a Manager.
type Reaper struct {
	manager   *Manager
	interval  time.Duration
	timeout   time.Duration
	wg        sync.WaitGroup
	newTicker tickerFactory
}

// NewReaper returns a reaper for m. A zero interval defaults to one minute;
// a zero timeout disables reaping.
func NewReaper(m *Manager, interval, timeout time.Duration) *Reaper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{
		manager:   m,
		interval:  interval,
		timeout:   timeout,
		newTicker: defaultTickerFactory(),
	}
}

func (r *Reaper) Start(ctx context.Context) {
	if r == nil || r.manager == nil || r.timeout <= 0 {
		return
	}
	r.wg.Add(1)
	go r.run(ctx)
}

func (r *Reaper) run(ctx context.Context) {
	defer r.wg.Done()
	if r.newTicker == nil {
		r.newTicker = defaultTickerFactory()
	}

	tickerC, stop := r.newTicker(r.interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tickerC:
			r.manager.Reap(now, r.timeout)
		}
	}
}

func (r *Reaper) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}
