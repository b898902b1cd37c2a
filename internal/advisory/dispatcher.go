package advisory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMaxWait bounds a blocking Emit when Config.MaxWait is unset.
const DefaultMaxWait = 100 * time.Millisecond

// Sink receives delivered events. Emit must return promptly; Close waits for the
// sink to take every buffered event.
type Sink[E any] interface {
	Emit(ctx context.Context, event E)
}

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// MaxWait bounds how long Emit waits for buffer space when DropIfFull is false.
	MaxWait time.Duration
}

// Dispatcher asynchronously forwards events to a sink.
type Dispatcher[E any] struct {
	cfg       Config
	sink      Sink[E]
	ch        chan E
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts a dispatcher. It returns nil when cfg is disabled or sink is nil;
// a nil dispatcher accepts and discards events.
func NewDispatcher[E any](cfg Config, sink Sink[E]) *Dispatcher[E] {
	if !cfg.Enabled || sink == nil {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}

	d := &Dispatcher[E]{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan E, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher[E]) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.sink.Emit(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

// Emit queues event for the sink. With DropIfFull it never waits; otherwise it waits
// at most MaxWait for buffer space. Events that cannot be queued are counted as dropped.
func (d *Dispatcher[E]) Emit(ctx context.Context, event E) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- event:
		return
	default:
	}

	timer := time.NewTimer(d.cfg.MaxWait)
	defer timer.Stop()

	select {
	case d.ch <- event:
	case <-d.done:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-timer.C:
		d.dropped.Add(1)
	}
}

// Close drains buffered events into the sink and stops the dispatcher.
func (d *Dispatcher[E]) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

func (d *Dispatcher[E]) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
