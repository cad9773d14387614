package clock

import (
	"sync"
	"time"
)

// Fake is a manually driven Clock for tests. Now returns the configured
// instant; ticks fire only when Tick is called.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to the given instant.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	ft := &fakeTicker{ch: make(chan time.Time, 1)}
	f.tickers = append(f.tickers, ft)
	return ft
}

// Tick delivers one tick to every ticker created from this clock.
// Delivery is non-blocking; a ticker whose consumer is behind drops the tick,
// matching real time.Ticker behavior.
func (f *Fake) Tick() {
	f.mu.Lock()
	now := f.now
	tickers := make([]*fakeTicker, len(f.tickers))
	copy(tickers, f.tickers)
	f.mu.Unlock()

	for _, ft := range tickers {
		select {
		case ft.ch <- now:
		default:
		}
	}
}

type fakeTicker struct {
	ch chan time.Time
}

func (ft *fakeTicker) C() <-chan time.Time {
	return ft.ch
}

func (ft *fakeTicker) Stop() {}
