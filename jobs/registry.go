// Package jobs decouples query submission from answer streaming.
//
// Submit allocates a job id and a buffered event channel, then runs the
// pipeline in a background goroutine feeding that channel. Attach hands
// the channel to exactly one reader; the closed channel is the
// end-of-stream sentinel. A job id is readable once: attaching removes
// the registry entry, so a second attach fails instead of hanging.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/askpdf/askpdf/pipeline"
)

// ErrUnknownJob is returned by Attach for ids that were never
// submitted, already attached, or evicted.
var ErrUnknownJob = errors.New("unknown job")

// RunFunc executes one query's pipeline, passing events to emit in order.
type RunFunc func(ctx context.Context, query string, emit func(pipeline.Event))

const (
	// eventBuffer bounds how far the producer can run ahead of the
	// consumer before yielding.
	eventBuffer = 64

	// orphanTTL is how long an unattached job may hold its channel
	// before the janitor evicts it.
	orphanTTL = 5 * time.Minute

	janitorInterval = time.Minute
)

type job struct {
	query   string
	events  chan pipeline.Event
	evicted chan struct{} // closed when the job is abandoned; unblocks the producer
	created time.Time
}

// Registry maps job ids to in-flight pipeline runs.
type Registry struct {
	mu   sync.Mutex
	jobs map[string]*job
	run  RunFunc

	baseCtx context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRegistry creates a registry that executes pipelines with run.
// Pipelines are bound to the registry's own context, not the
// submitting request's: a client disconnect never cancels a run.
func NewRegistry(run RunFunc) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		jobs:    make(map[string]*job),
		run:     run,
		baseCtx: ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go r.janitor()
	return r
}

// Submit allocates a job for query, starts its pipeline in the
// background, and returns the job id immediately.
func (r *Registry) Submit(query string) string {
	id := uuid.New().String()
	j := &job{
		query:   query,
		events:  make(chan pipeline.Event, eventBuffer),
		evicted: make(chan struct{}),
		created: time.Now(),
	}

	r.mu.Lock()
	r.jobs[id] = j
	r.mu.Unlock()

	go r.runJob(id, j)
	return id
}

// Attach claims the job's event stream. The returned channel delivers
// events in pipeline order and is closed after the last one. Each job
// supports exactly one attach: the entry is removed here, so a second
// call (or an unknown id) returns ErrUnknownJob immediately.
func (r *Registry) Attach(id string) (<-chan pipeline.Event, error) {
	r.mu.Lock()
	j, ok := r.jobs[id]
	if ok {
		delete(r.jobs, id)
	}
	r.mu.Unlock()

	if !ok {
		return nil, ErrUnknownJob
	}
	return j.events, nil
}

// Len returns the number of jobs awaiting attach.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// Close cancels running pipelines and stops the janitor. Submitted
// channels close once their pipelines notice the cancellation.
func (r *Registry) Close() {
	r.cancel()
	close(r.done)
}

// runJob drives one pipeline and closes the event channel afterwards,
// which is the consumer's termination sentinel. A panicking pipeline
// still produces an error event followed by the sentinel, so an
// attached reader never blocks forever.
func (r *Registry) runJob(id string, j *job) {
	defer close(j.events)
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ERROR] job %s: pipeline panic: %v", id, rec)
			j.send(pipeline.Error(fmt.Sprintf("internal error: %v", rec)))
		}
	}()

	r.run(r.baseCtx, j.query, func(ev pipeline.Event) {
		j.send(ev)
	})
}

// send delivers an event unless the job has been evicted. Blocking on
// a full buffer is fine while a consumer exists; eviction unblocks the
// producer of an abandoned job.
func (j *job) send(ev pipeline.Event) {
	select {
	case j.events <- ev:
	case <-j.evicted:
	}
}

// janitor evicts jobs that were never attached within orphanTTL so
// their producers cannot block on a channel nobody will drain.
func (r *Registry) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.evictOrphans(time.Now().Add(-orphanTTL))
		}
	}
}

func (r *Registry) evictOrphans(cutoff time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, j := range r.jobs {
		if j.created.Before(cutoff) {
			delete(r.jobs, id)
			close(j.evicted)
			log.Printf("[INFO] job %s: evicted, never attached", id)
		}
	}
}
