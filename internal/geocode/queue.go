package geocode

import (
	"context"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/kozaktomas/photo-places/internal/geo"
)

// Request is a single reverse lookup, tagged with the cluster that asked for it.
type Request struct {
	ID      uuid.UUID
	Point   geo.Point
	Cluster int
}

// Handle tracks a dispatched request. The lookup goroutine writes place and err
// before closing done; they are read only after done is closed.
type Handle struct {
	Request
	done  chan struct{}
	place *Place
	err   error
	polls int
}

// Ready reports whether the lookup has finished, successfully or not.
func (h *Handle) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Polls returns how many times Tick looked at this handle.
func (h *Handle) Polls() int {
	return h.polls
}

// Completion is a finished lookup. Exactly one of Place and Err is set.
type Completion struct {
	Request
	Place *Place
	Err   error
}

// Queue dispatches lookups to a bounded set of goroutines and hands results
// back to a single consumer that polls it with Tick.
//
// Enqueue, Tick and Len must be called from the same goroutine; only the
// lookups themselves run elsewhere, and they report through each handle's
// done channel.
type Queue struct {
	reverser  Reverser
	semaphore chan struct{}
	pending   []*Handle
	wg        sync.WaitGroup

	dispatched int
	failed     int
}

// NewQueue creates a queue running at most workers lookups at once. workers <= 0
// means one per CPU.
func NewQueue(r Reverser, workers int) *Queue {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Queue{
		reverser:  r,
		semaphore: make(chan struct{}, workers),
	}
}

// Enqueue starts a lookup of p and appends its handle to the back of the queue.
// It never blocks: if all workers are busy the lookup waits for a free slot in
// the background. Once dispatched a lookup runs to completion; cancelling ctx
// does not abort it, timeouts are the Reverser's business.
func (q *Queue) Enqueue(ctx context.Context, p geo.Point, cluster int) *Handle {
	h := &Handle{
		Request: Request{ID: uuid.New(), Point: p, Cluster: cluster},
		done:    make(chan struct{}),
	}
	q.pending = append(q.pending, h)
	q.dispatched++

	ctx = context.WithoutCancel(ctx)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(h.done)

		q.semaphore <- struct{}{}
		defer func() { <-q.semaphore }()

		h.place, h.err = q.reverser.ReverseGeocode(ctx, p)
		if h.err == nil && h.place == nil {
			h.err = ErrNoResult
		}
	}()

	return h
}

// Tick polls the handle at the front of the queue. A finished lookup is removed
// and returned with true. An unfinished one moves to the back and Tick returns
// false, as it does for an empty queue. Only one handle is polled per call.
func (q *Queue) Tick() (Completion, bool) {
	if len(q.pending) == 0 {
		return Completion{}, false
	}

	h := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	h.polls++

	if !h.Ready() {
		q.pending = append(q.pending, h)
		return Completion{}, false
	}

	if h.err != nil {
		q.failed++
		return Completion{Request: h.Request, Err: h.err}, true
	}
	return Completion{Request: h.Request, Place: h.place}, true
}

// Len returns the number of handles not yet delivered by Tick.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Dispatched returns the number of lookups started.
func (q *Queue) Dispatched() int {
	return q.dispatched
}

// Failed returns the number of lookups delivered with an error.
func (q *Queue) Failed() int {
	return q.failed
}

// Wait blocks until every dispatched lookup has finished. Results stay in the
// queue until drained with Tick.
func (q *Queue) Wait() {
	q.wg.Wait()
}
