package journal

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// Sink receives journaled records in sequence order. Deliver must be
// idempotent: a record is redelivered until it succeeds.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, rec domain.Record) error
}

// Dispatcher follows a Log and forwards every record to each sink. Every sink
// has its own cursor so a slow or failing sink never holds back the others,
// and sink failures never reach the ledgers.
type Dispatcher struct {
	log    *Log
	sinks  []Sink
	logger *slog.Logger

	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func NewDispatcher(log *Log, logger *slog.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		log:        log,
		sinks:      sinks,
		logger:     logger,
		MinBackoff: 200 * time.Millisecond,
		MaxBackoff: 30 * time.Second,
	}
}

// Run blocks until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, s := range d.sinks {
		wg.Add(1)
		go func(s Sink) {
			defer wg.Done()
			d.follow(ctx, s)
		}(s)
	}
	wg.Wait()
}

func (d *Dispatcher) follow(ctx context.Context, s Sink) {
	logger := d.logger.With("sink", s.Name())
	var cursor uint64
	for {
		// Taken before reading so an append between Since and the select
		// still wakes us.
		changed := d.log.Changed()
		for _, rec := range d.log.Since(cursor) {
			if !d.deliver(ctx, logger, s, rec) {
				return
			}
			cursor = rec.Seq
		}
		select {
		case <-ctx.Done():
			return
		case <-changed:
		}
	}
}

// deliver retries until the sink accepts rec. It reports false once ctx is done.
func (d *Dispatcher) deliver(ctx context.Context, logger *slog.Logger, s Sink, rec domain.Record) bool {
	backoff := d.MinBackoff
	for attempt := 1; ; attempt++ {
		err := s.Deliver(ctx, rec)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		logger.Warn("deliver record", "seq", rec.Seq, "kind", string(rec.Kind), "attempt", attempt, "err", err)

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
		backoff *= 2
		if backoff > d.MaxBackoff {
			backoff = d.MaxBackoff
		}
	}
}
