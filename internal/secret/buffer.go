package secret

import (
	"errors"
	"runtime"
	"sync"
)

// ErrClosed is returned when a closed buffer is read.
var ErrClosed = errors.New("secret: buffer closed")

// Buffer is a fixed-size region holding secret bytes.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	locked bool
	closed bool
}

// NewFromBytes copies source into a new buffer and zeroes source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, errors.New("secret: cannot create buffer from empty source")
	}

	data, locked := allocate(len(source))
	copy(data, source)
	wipe(source)

	return &Buffer{data: data, locked: locked}, nil
}

// Bytes returns the protected bytes. The slice is only valid until Close.
func (b *Buffer) Bytes() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	return b.data, nil
}

// Len returns the buffer size, or zero after Close.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.data)
}

// Locked reports whether the memory is mlocked.
func (b *Buffer) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.locked
}

// Close zeroes and releases the memory. Repeated calls are no-ops.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	wipe(b.data)
	err := release(b.data, b.locked)
	b.data = nil
	return err
}

func (b *Buffer) String() string {
	return "secret.Buffer"
}

func (b *Buffer) GoString() string {
	return b.String()
}

func wipe(p []byte) {
	for i := range p {
		p[i] = 0
	}
	runtime.KeepAlive(p)
}
