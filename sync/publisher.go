package sync

import (
	"context"
	"time"

	"github.com/t00ts/pathfinder/felt"
	"github.com/t00ts/pathfinder/log"
)

// SequencerHeadFetcher fetches the sequencer's current latest block
// hash. It is expected to retry internally if it wants backoff; the
// publisher itself applies none, retrying the fetch in a tight loop
// until one succeeds.
type SequencerHeadFetcher func(ctx context.Context) (felt.Felt, error)

// Publisher implements component F: every tick it fetches the
// sequencer's latest block hash and updates the shared status cell.
type Publisher struct {
	status *StatusCell
	fetch  SequencerHeadFetcher
	period time.Duration
	log    log.Logger
}

// NewPublisher builds a Publisher with the default 10s period.
func NewPublisher(status *StatusCell, fetch SequencerHeadFetcher, logger log.Logger) *Publisher {
	if logger == nil {
		logger = log.New("component", "sync-publisher")
	}
	return &Publisher{status: status, fetch: fetch, period: 10 * time.Second, log: logger}
}

// Run blocks until ctx is cancelled, ticking every p.period.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick fetches the latest hash, retrying in a tight loop (no backoff)
// until it succeeds or ctx is cancelled.
func (p *Publisher) tick(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		latest, err := p.fetch(ctx)
		if err != nil {
			p.log.Warn("sequencer head fetch failed, retrying", "err", err)
			continue
		}
		p.status.ObservePublisherTick(latest)
		return
	}
}
