package gamestate

import (
	"context"
	"log"
	"os"
	"sync"
	"time"
)

// Poller refreshes a cached snapshot on a fixed period. It is the only
// writer of the cache; readers always see either the previous complete
// snapshot or the new one, never a partial update.
type Poller struct {
	dec      *Decoder
	interval time.Duration
	logger   *log.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

func NewPoller(dec *Decoder, interval time.Duration, logger *log.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = log.New(os.Stdout, "[STATE] ", log.LstdFlags)
	}
	return &Poller{dec: dec, interval: interval, logger: logger}
}

// Snapshot returns the last good snapshot, or nil if none has been fetched
// yet.
func (p *Poller) Snapshot() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// Run polls until ctx is cancelled. A failed fetch keeps the stale snapshot;
// the next tick simply tries again.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx)
		}
	}
}

func (p *Poller) fetch(ctx context.Context) {
	fctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	snap, err := p.dec.FetchGameState(fctx)
	if err != nil {
		p.logger.Printf("fetch failed, keeping previous snapshot: %v", err)
		return
	}

	p.mu.Lock()
	p.snap = snap
	p.mu.Unlock()
}
