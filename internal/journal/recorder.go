package journal

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/aristath/deadline/internal/events"
)

// Recorder drains an event subscription into a journal run.
//
// It stops on its own once the subscription is closed, after recording everything
// still buffered. Close stops it early and drops whatever has not been read yet.
type Recorder struct {
	journal  *Journal
	runID    string
	logger   zerolog.Logger
	stop     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
	recorded atomic.Int64
	failed   atomic.Int64
}

// NewRecorder creates a recorder for one run.
func NewRecorder(j *Journal, runID string, logger zerolog.Logger) *Recorder {
	return &Recorder{
		journal: j,
		runID:   runID,
		logger:  logger.With().Str("component", "journal").Str("run_id", runID).Logger(),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the recording goroutine. It runs until sub is closed, ctx is
// cancelled or Close is called. Only the first call has any effect.
func (r *Recorder) Start(ctx context.Context, sub <-chan events.Event) {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	go r.consume(ctx, sub)
}

func (r *Recorder) consume(ctx context.Context, sub <-chan events.Event) {
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := r.journal.Record(ctx, r.runID, ev); err != nil {
				r.failed.Add(1)
				if errors.Is(err, ErrUnavailable) {
					r.logger.Debug().Err(err).Str("event", ev.EventType()).Msg("journal disabled, dropping event")
				} else {
					r.logger.Warn().Err(err).Str("event", ev.EventType()).Msg("failed to record event")
				}
				continue
			}
			r.recorded.Add(1)
		}
	}
}

// Wait blocks until the recording goroutine has exited.
func (r *Recorder) Wait() {
	<-r.done
}

// Close stops recording and waits for the goroutine to exit. Safe to call more
// than once, and before Start.
func (r *Recorder) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
	if r.started.Load() {
		<-r.done
	}
}

// RunID returns the run being recorded.
func (r *Recorder) RunID() string {
	return r.runID
}

// Stats returns how many events were recorded and how many failed.
func (r *Recorder) Stats() (recorded, failed int64) {
	return r.recorded.Load(), r.failed.Load()
}
