package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// Pruner is the store side of retention: delete rows older than cutoff.
type Pruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionPruner periodically deletes access records received longer ago
// than the configured retention. A retention of 0 (the default) disables it.
type RetentionPruner struct {
	store     Pruner
	retention time.Duration
	interval  time.Duration
	logger    *log.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// PrunerConfig holds the parameters for NewRetentionPruner.
type PrunerConfig struct {
	// RetentionDays is how many days of access history to keep.
	// 0 keeps everything and the pruner never starts.
	RetentionDays int

	// IntervalHours is how often the pruner runs. Defaults to 6.
	IntervalHours int
}

func NewRetentionPruner(s Pruner, cfg PrunerConfig, logger *log.Logger) *RetentionPruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	return &RetentionPruner{
		store:     s,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start prunes once immediately and then on every interval until ctx is
// cancelled or Stop is called. Calling Start twice is a no-op.
func (p *RetentionPruner) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	if p.retention <= 0 {
		p.logger.Printf("retention pruner disabled (retention=0)")
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	go p.loop(ctx)

	p.logger.Printf("retention pruner started (retention=%dd, interval=%s)",
		int(p.retention.Hours()/24), p.interval)
}

// Stop signals the loop to exit and waits for it. Safe before Start and
// safe to call repeatedly.
func (p *RetentionPruner) Stop() {
	p.mu.Lock()
	started, cancel := p.started, p.cancel
	p.mu.Unlock()

	if !started {
		return
	}
	if cancel != nil {
		cancel()
	}
	<-p.done
}

// PruneNow runs one pass with the cutoff computed from now. Records are
// aged by when the server received them. With retention disabled it
// deletes nothing.
func (p *RetentionPruner) PruneNow(ctx context.Context, now time.Time) (int64, error) {
	if p.retention <= 0 {
		return 0, nil
	}
	cutoff := now.UTC().Add(-p.retention)
	deleted, err := p.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		p.logger.Printf("retention prune: deleted %d access records older than %s",
			deleted, cutoff.Format(time.RFC3339))
	}
	return deleted, nil
}

func (p *RetentionPruner) loop(ctx context.Context) {
	defer close(p.done)

	p.prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *RetentionPruner) prune(ctx context.Context) {
	if _, err := p.PruneNow(ctx, time.Now()); err != nil && ctx.Err() == nil {
		p.logger.Printf("retention prune error: %v", err)
	}
}
