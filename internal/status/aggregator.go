// Package status keeps an up-to-date view of backend health by polling the
// health and stats endpoints and merging them into one snapshot.
package status

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ncanzani/salesdeck/internal/backend"
)

// DefaultInterval is the dashboard refresh cadence.
const DefaultInterval = 15 * time.Second

// Snapshot is the merged view of the last refresh cycle. Health and Stats are
// nil until a refresh has succeeded at least once. A failed refresh keeps the
// last good pair and raises Unreachable instead of clearing them.
type Snapshot struct {
	Health      *backend.HealthSnapshot
	Stats       *backend.StatsSnapshot
	RefreshedAt time.Time
	Unreachable bool
	LastError   string
}

// System derives the three subsystem booleans from whatever data the snapshot
// holds. Each is computed independently: a queue error never affects the API
// or index verdicts.
func (s Snapshot) System() backend.SystemStatus {
	return backend.SystemStatus{
		APIOK:   s.Health != nil && s.Health.Status == "ok",
		QueueOK: s.Stats != nil && s.Stats.Queue.Error == "",
		RAGOK:   s.Stats != nil && s.Stats.RAG.Error == "",
	}
}

// FailedJobsWarning reports whether the queue holds failed jobs worth flagging
// to the operator. A queue in error state reports no warning; its counts are
// unknown, not zero.
func (s Snapshot) FailedJobsWarning() bool {
	return s.Stats != nil && s.Stats.Queue.Error == "" && s.Stats.Queue.Failed > 0
}

// Aggregator owns the snapshot and refreshes it on demand and on a fixed
// cadence. Refreshes may overlap; each carries a sequence number and a
// completion whose sequence is below the highest already applied is
// discarded, so a slow old request can never overwrite newer data.
type Aggregator struct {
	client   *backend.Client
	interval time.Duration

	mu      sync.Mutex
	seq     uint64 // last sequence handed out
	applied uint64 // highest sequence applied to snap
	snap    Snapshot
}

// New creates an Aggregator polling at the given interval. A zero interval
// falls back to DefaultInterval.
func New(client *backend.Client, interval time.Duration) *Aggregator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Aggregator{client: client, interval: interval}
}

// Snapshot returns the current snapshot.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap
}

// Refresh fetches health and stats concurrently and applies the outcome.
// It returns the snapshot as stored after this refresh settled, which may be
// a newer one if a later refresh finished first.
func (a *Aggregator) Refresh(ctx context.Context) Snapshot {
	a.mu.Lock()
	a.seq++
	seq := a.seq
	a.mu.Unlock()

	var (
		health backend.HealthSnapshot
		stats  backend.StatsSnapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		health, err = a.client.Health(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = a.client.Stats(gctx)
		return err
	})
	err := g.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()

	if seq < a.applied {
		// A newer refresh already landed; this response is stale.
		log.Debug().Uint64("seq", seq).Uint64("applied", a.applied).Msg("discarding stale refresh")
		return a.snap
	}
	a.applied = seq

	if err != nil {
		// Keep the last good pair; only the reachability flag changes.
		a.snap.Unreachable = true
		a.snap.LastError = backend.UserMessage(err)
		log.Warn().Err(err).Msg("status refresh failed")
		return a.snap
	}

	a.snap = Snapshot{
		Health:      &health,
		Stats:       &stats,
		RefreshedAt: time.Now(),
	}
	return a.snap
}

// Run refreshes immediately, then on every tick until ctx is cancelled. fn is
// called with the settled snapshot after each refresh. The ticker is released
// on return, so a torn-down view leaves no background work behind.
func (a *Aggregator) Run(ctx context.Context, fn func(Snapshot)) {
	fn(a.Refresh(ctx))

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(a.Refresh(ctx))
		}
	}
}
