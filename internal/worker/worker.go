// Package worker runs box generation off the caller's goroutine.
//
// Every Submit gets a monotonically increasing request id. Requests are
// tracked per box: once a newer request for the same box has completed, any
// older request that finishes afterwards is dropped with ErrSuperseded, and
// an older request still waiting in the queue is skipped without running.
// The last successful result per box is kept and returned alongside any
// failure so callers can keep showing it.
package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/TrayForge/internal/generate"
	"github.com/piwi3910/TrayForge/internal/model"
)

// ErrSuperseded is returned for a request overtaken by a newer one for the
// same box.
var ErrSuperseded = errors.New("superseded by a newer request")

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("worker closed")

// GenerateFunc produces the result for one box. It matches generate.Generate.
type GenerateFunc func(ctx context.Context, project model.Project, boxIndex int, opts generate.Options) (*generate.BoxResult, error)

// Response is delivered exactly once per submitted request.
type Response struct {
	ID       uint64
	BoxID    string
	Result   *generate.BoxResult
	LastGood *generate.BoxResult // newest successful result for the box, if any
	Err      error
}

type job struct {
	ctx      context.Context
	id       uint64
	boxID    string
	project  model.Project
	boxIndex int
	reply    chan Response
}

// Worker is a fixed pool of goroutines draining a request queue.
type Worker struct {
	opts     generate.Options
	generate GenerateFunc
	logger   *log.Logger

	seq  atomic.Uint64
	jobs chan job
	wg   sync.WaitGroup

	// closeMu guards closed and the send side of jobs.
	closeMu sync.RWMutex
	closed  bool

	mu        sync.Mutex
	submitted map[string]uint64 // newest request id per box
	completed map[string]uint64 // newest completed request id per box
	lastGood  map[string]*generate.BoxResult
}

// Options configures a Worker.
type Options struct {
	Workers  int          // pool size, default 1
	Generate GenerateFunc // default generate.Generate
	Pipeline generate.Options
}

// New starts a worker pool. Call Close to stop it.
func New(opts Options) *Worker {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Generate == nil {
		opts.Generate = generate.Generate
	}
	logger := opts.Pipeline.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	w := &Worker{
		opts:      opts.Pipeline,
		generate:  opts.Generate,
		logger:    logger,
		jobs:      make(chan job, opts.Workers*4),
		submitted: make(map[string]uint64),
		completed: make(map[string]uint64),
		lastGood:  make(map[string]*generate.BoxResult),
	}
	for range opts.Workers {
		w.wg.Add(1)
		go w.run()
	}
	return w
}

// Submit queues generation of one box and returns the request id and the
// channel its response arrives on. The project is deep-copied before it is
// queued, so callers may keep editing theirs.
func (w *Worker) Submit(ctx context.Context, project model.Project, boxIndex int) (uint64, <-chan Response) {
	reply := make(chan Response, 1)
	id := w.seq.Add(1)

	boxID := ""
	if boxIndex >= 0 && boxIndex < len(project.Boxes) {
		boxID = project.Boxes[boxIndex].ID
	}

	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.closed {
		reply <- Response{ID: id, BoxID: boxID, Err: ErrClosed}
		return id, reply
	}

	w.mu.Lock()
	if id > w.submitted[boxID] {
		w.submitted[boxID] = id
	}
	w.mu.Unlock()

	j := job{ctx: ctx, id: id, boxID: boxID, project: project.Clone(), boxIndex: boxIndex, reply: reply}
	select {
	case w.jobs <- j:
	case <-ctx.Done():
		reply <- Response{ID: id, BoxID: boxID, Err: ctx.Err(), LastGood: w.LastGood(boxID)}
	}
	return id, reply
}

// LastGood returns the newest successful result for a box, or nil.
func (w *Worker) LastGood(boxID string) *generate.BoxResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastGood[boxID]
}

// Close stops accepting requests and waits for queued ones to finish.
func (w *Worker) Close() {
	w.closeMu.Lock()
	if w.closed {
		w.closeMu.Unlock()
		return
	}
	w.closed = true
	close(w.jobs)
	w.closeMu.Unlock()
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	for j := range w.jobs {
		j.reply <- w.handle(j)
	}
}

func (w *Worker) handle(j job) Response {
	resp := Response{ID: j.id, BoxID: j.boxID}

	w.mu.Lock()
	stale := j.id < w.submitted[j.boxID]
	w.mu.Unlock()
	if stale {
		w.logger.Debug("skipping superseded request", "id", j.id, "box", j.boxID)
		resp.Err = ErrSuperseded
		resp.LastGood = w.LastGood(j.boxID)
		return resp
	}

	res, err := w.generate(j.ctx, j.project, j.boxIndex, w.opts)

	w.mu.Lock()
	defer w.mu.Unlock()
	if j.id < w.completed[j.boxID] {
		w.logger.Debug("dropping superseded result", "id", j.id, "box", j.boxID)
		resp.Err = ErrSuperseded
		resp.LastGood = w.lastGood[j.boxID]
		return resp
	}
	w.completed[j.boxID] = j.id
	if err != nil {
		resp.Err = err
		resp.Result = res
		resp.LastGood = w.lastGood[j.boxID]
		return resp
	}
	w.lastGood[j.boxID] = res
	resp.Result = res
	resp.LastGood = res
	return resp
}
