package request

import "sync"

// Buffer accumulates produced output bytes for one lookup.
//
// It is written by the request's completion path and read by a consumer
// (renderer, HTTP handler) on another goroutine; every access happens
// under the mutex, held only for the duration of an append or a read.
// Appended bytes are never modified or removed.
type Buffer struct {
	mu       sync.Mutex
	data     []byte
	hasAny   bool
	errText  string
	finished bool

	updated chan struct{} // coalesced "new data" signal
	done    chan struct{} // closed once on finish
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		updated: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Append adds p to the buffer atomically and marks the buffer non-empty.
func (b *Buffer) Append(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
	b.hasAny = true
}

// Data returns a snapshot copy of everything appended so far.
func (b *Buffer) Data() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// HasAnyData reports whether anything has been appended.
func (b *Buffer) HasAnyData() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasAny
}

// SetError records a diagnostic error string. Last write wins.
func (b *Buffer) SetError(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errText = msg
}

// Error returns the recorded error string, or "" if none.
func (b *Buffer) Error() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errText
}

// Finish marks the buffer terminal. Idempotent; the first call closes Done.
func (b *Buffer) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.finished = true
	close(b.done)
}

// IsFinished reports whether Finish has been called.
func (b *Buffer) IsFinished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finished
}

// NotifyUpdated signals the consumer that new data is readable.
// Signals coalesce; an un-consumed signal is not duplicated.
func (b *Buffer) NotifyUpdated() {
	select {
	case b.updated <- struct{}{}:
	default:
	}
}

// Updated yields a signal whenever the buffer gained data. Consumers that
// only care about the final state can ignore it and wait on Done.
func (b *Buffer) Updated() <-chan struct{} { return b.updated }

// Done is closed when the owning request reaches its terminal state.
func (b *Buffer) Done() <-chan struct{} { return b.done }
