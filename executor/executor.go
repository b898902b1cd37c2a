package executor

import (
	"context"
	"errors"
	"sync"

	"github.com/MrEthical07/prpass/kdf"
)

// ErrPoolClosed is returned by Pool.Execute after Close.
var ErrPoolClosed = errors.New("executor: pool closed")

// Executor runs a job and returns its output.
type Executor interface {
	Execute(ctx context.Context, job kdf.Job) ([]byte, error)
}

// Result is the outcome of one job.
type Result struct {
	Output []byte
	Err    error
}

// Inline executes jobs on the calling goroutine.
type Inline struct{}

// Execute checks ctx once before hashing; the hash itself is not interruptible.
func (Inline) Execute(ctx context.Context, job kdf.Job) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return job.Execute()
}

// Go runs job on ex in a new goroutine. The returned channel receives exactly one Result
// and is never closed.
func Go(ctx context.Context, ex Executor, job kdf.Job) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		out, err := ex.Execute(ctx, job)
		ch <- Result{Output: out, Err: err}
	}()
	return ch
}

// Pool runs at most size jobs at a time, each on its own goroutine.
type Pool struct {
	slots     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewPool returns a pool with size concurrent slots. size < 1 means one slot.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		slots: make(chan struct{}, size),
		done:  make(chan struct{}),
	}
}

// Execute waits for a free slot, then races the hash against ctx. When ctx ends first
// the hash keeps its slot until it finishes and its output is discarded.
func (p *Pool) Execute(ctx context.Context, job kdf.Job) ([]byte, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, ErrPoolClosed
	}

	ch := make(chan Result, 1)
	go func() {
		defer func() { <-p.slots }()
		out, err := job.Execute()
		ch <- Result{Output: out, Err: err}
	}()

	select {
	case r := <-ch:
		return r.Output, r.Err
	case <-ctx.Done():
		go func() {
			r := <-ch
			wipe(r.Output)
		}()
		return nil, ctx.Err()
	}
}

// Close makes later Execute calls fail. Jobs already running complete.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
