// Package history keeps a bounded, time-windowed ring of loop samples
// for observability. Appends are O(1); samples older than the window are
// evicted lazily as newer ones arrive.
package history

import "sync"

// Sample is one observed loop tick, immutable once appended. Insertion
// order is time order.
type Sample struct {
	T        float64
	Setpoint float64
	Position float64
}

// Buffer is a fixed-capacity ring sized for window seconds of samples at
// the loop rate. Safe for one appender and concurrent readers.
type Buffer struct {
	mu     sync.RWMutex
	window float64
	buf    []Sample
	start  int
	size   int
}

// New sizes the ring for window seconds at hz samples per second, with a
// little slack so eviction stays time-driven rather than capacity-driven.
func New(window, hz float64) *Buffer {
	n := int(window*hz) + 4
	return &Buffer{
		window: window,
		buf:    make([]Sample, n),
	}
}

// Append records one sample and drops any retained samples older than
// the window behind it.
func (b *Buffer) Append(s Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.size > 0 && b.buf[b.start].T < s.T-b.window {
		b.start = (b.start + 1) % len(b.buf)
		b.size--
	}
	if b.size == len(b.buf) {
		b.start = (b.start + 1) % len(b.buf)
		b.size--
	}
	b.buf[(b.start+b.size)%len(b.buf)] = s
	b.size++
}

// Visible returns the retained samples with T >= latestT - window, in
// time order. Empty before any append.
func (b *Buffer) Visible(window float64) []Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return nil
	}
	latest := b.buf[(b.start+b.size-1)%len(b.buf)].T
	out := make([]Sample, 0, b.size)
	for i := 0; i < b.size; i++ {
		s := b.buf[(b.start+i)%len(b.buf)]
		if s.T >= latest-window {
			out = append(out, s)
		}
	}
	return out
}

// Latest returns the most recent sample, if any.
func (b *Buffer) Latest() (Sample, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return Sample{}, false
	}
	return b.buf[(b.start+b.size-1)%len(b.buf)], true
}

// Len is the number of retained samples.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}
