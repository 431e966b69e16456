// Package persist runs snapshot writes as a background task, decoupled from
// the state mutation that scheduled them. Mutations return immediately; a
// failed write is logged and reported on the status channel, never rolled
// back into the in-memory state.
package persist

import (
	"context"
	"time"

	"github.com/romaric67/bdget-app/internal/kv"
	applog "github.com/romaric67/bdget-app/internal/log"
)

const writeTimeout = 5 * time.Second

// Request asks the persister to write one full-state snapshot.
type Request struct {
	Key     string
	Payload string
}

// Status reports the outcome of a single persist attempt. Err is nil on
// success.
type Status struct {
	Key  string
	Err  error
	Time time.Time
}

// Persister owns the persist queue. Enqueue never blocks the caller.
type Persister struct {
	store    kv.Store
	logger   *applog.Logger
	requests chan Request
	status   chan Status
}

func New(store kv.Store, logger *applog.Logger) *Persister {
	if logger == nil {
		logger = applog.New(applog.ComponentPersist, 0)
	}
	return &Persister{
		store:    store,
		logger:   logger,
		requests: make(chan Request, 64),
		status:   make(chan Status, 64),
	}
}

// Enqueue schedules a snapshot write. When the queue is full the snapshot is
// dropped with a warning; a later snapshot of the same key supersedes it
// anyway.
func (p *Persister) Enqueue(key, payload string) {
	select {
	case p.requests <- Request{Key: key, Payload: payload}:
	default:
		p.logger.Warn("Persist queue full, dropping snapshot", applog.FieldStorageKey, key)
		p.report(Status{Key: key, Err: context.DeadlineExceeded, Time: time.Now()})
	}
}

// Status exposes persist outcomes. The channel is buffered and sends are
// non-blocking, so an absent listener does not stall writes.
func (p *Persister) Status() <-chan Status {
	return p.status
}

// Run consumes the queue until ctx is cancelled, then drains whatever is
// still pending with a short grace period.
func (p *Persister) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return ctx.Err()
		case req := <-p.requests:
			p.write(ctx, req)
		}
	}
}

func (p *Persister) write(ctx context.Context, req Request) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	err := p.store.Set(wctx, req.Key, req.Payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "Snapshot write failed",
			applog.FieldStorageKey, req.Key,
			applog.FieldError, err)
	}
	p.report(Status{Key: req.Key, Err: err, Time: time.Now()})
}

func (p *Persister) drain() {
	for {
		select {
		case req := <-p.requests:
			p.write(context.Background(), req)
		default:
			return
		}
	}
}

func (p *Persister) report(s Status) {
	select {
	case p.status <- s:
	default:
	}
}
