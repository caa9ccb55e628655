package trace

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/ShayCichocki/hive/pkg/models"
)

// Appender writes a single trace. *Store implements it.
type Appender interface {
	Append(trace models.ExecutionTrace) error
}

// Recorder writes traces asynchronously. Record never blocks and never
// reports failure to the caller: a full queue drops the trace and a
// failed write is logged and forgotten.
type Recorder struct {
	appender Appender
	queue    chan models.ExecutionTrace
	dropped  atomic.Int64
	wg       sync.WaitGroup
	closed   atomic.Bool
}

// NewRecorder creates a Recorder draining into the given appender.
// bufferSize bounds the number of traces queued before drops begin;
// values below 1 fall back to 64.
func NewRecorder(appender Appender, bufferSize int) *Recorder {
	if bufferSize < 1 {
		bufferSize = 64
	}
	r := &Recorder{
		appender: appender,
		queue:    make(chan models.ExecutionTrace, bufferSize),
	}
	r.wg.Add(1)
	go r.drain()
	return r
}

func (r *Recorder) drain() {
	defer r.wg.Done()
	for trace := range r.queue {
		if err := r.appender.Append(trace); err != nil {
			log.Printf("[trace] write failed for execution %s: %v", trace.ExecutionID, err)
		}
	}
}

// Record queues a trace for writing. Safe to call from the execution
// hot path: it returns immediately even when the store is slow or gone.
func (r *Recorder) Record(trace models.ExecutionTrace) {
	if r.closed.Load() {
		r.dropped.Add(1)
		return
	}
	select {
	case r.queue <- trace:
	default:
		r.dropped.Add(1)
		log.Printf("[trace] queue full, dropped trace for execution %s", trace.ExecutionID)
	}
}

// DroppedCount returns the number of traces dropped since creation.
func (r *Recorder) DroppedCount() int64 {
	return r.dropped.Load()
}

// Close flushes queued traces and stops the writer. Record calls after
// Close are dropped.
func (r *Recorder) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	close(r.queue)
	r.wg.Wait()
}
