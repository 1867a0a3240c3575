// Package ring implements the single-producer/single-consumer sample
// queue that sits between a decoder and an audio sink.
package ring

import "sync/atomic"

// Buffer is a fixed-capacity SPSC queue of interleaved float32 samples.
// Exactly one goroutine may call Write/Space and exactly one goroutine
// may call Read/Available/Clear at a time; those two goroutines may run
// concurrently with each other.
type Buffer struct {
	data []float32
	mask uint64 // capacity-1; capacity is always a power of two

	writeIdx atomic.Uint64
	readIdx  atomic.Uint64
}

// New creates a Buffer whose capacity is the next power of two ≥ capacity.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	c := nextPow2(capacity)
	return &Buffer{
		data: make([]float32, c),
		mask: uint64(c - 1),
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Cap returns the buffer's capacity in samples.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Available returns the number of samples ready to read.
func (b *Buffer) Available() int {
	w := b.writeIdx.Load()
	r := b.readIdx.Load()
	return int(w - r)
}

// Space returns the number of samples that can be written without
// overflowing the buffer.
func (b *Buffer) Space() int {
	return len(b.data) - b.Available()
}

// Write copies up to min(len(src), Space()) samples into the buffer and
// returns the number written. Never blocks.
func (b *Buffer) Write(src []float32) int {
	n := len(src)
	if space := b.Space(); n > space {
		n = space
	}
	if n == 0 {
		return 0
	}

	w := b.writeIdx.Load()
	start := int(w & b.mask)
	first := len(b.data) - start
	if first > n {
		first = n
	}
	copy(b.data[start:start+first], src[:first])
	if rest := n - first; rest > 0 {
		copy(b.data[0:rest], src[first:first+rest])
	}

	b.writeIdx.Store(w + uint64(n))
	return n
}

// Read copies up to min(len(dst), Available()) samples out of the buffer
// and returns the number read. Never blocks.
func (b *Buffer) Read(dst []float32) int {
	n := len(dst)
	if avail := b.Available(); n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	r := b.readIdx.Load()
	start := int(r & b.mask)
	first := len(b.data) - start
	if first > n {
		first = n
	}
	copy(dst[:first], b.data[start:start+first])
	if rest := n - first; rest > 0 {
		copy(dst[first:first+rest], b.data[0:rest])
	}

	b.readIdx.Store(r + uint64(n))
	return n
}

// Clear resets both indices. Must only be called when the reader side is
// quiesced (e.g. the output thread is blocked for a seek), since it is not
// synchronized against a concurrent Read.
func (b *Buffer) Clear() {
	b.writeIdx.Store(0)
	b.readIdx.Store(0)
}
