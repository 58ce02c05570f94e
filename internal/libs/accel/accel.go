// Package accel splits bulk writes into bounded batches.
package accel

// DefaultBatchSize is used when a non-positive size is requested
const DefaultBatchSize = 100

// Batch splits a run of n elements into consecutive windows of at most Size
type Batch struct {
	size int
}

// NewBatch creates a new batch splitter with the given size
func NewBatch(size int) *Batch {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &Batch{size: size}
}

// Size returns the batch size
func (b *Batch) Size() int {
	return b.size
}

// Window is a half-open index range [Start, End)
type Window struct {
	Start int
	End   int
}

// Len returns the number of elements in the window
func (w Window) Len() int {
	return w.End - w.Start
}

// Windows returns the windows covering n elements in order.
// n <= 0 yields no windows.
func (b *Batch) Windows(n int) []Window {
	if n <= 0 {
		return nil
	}
	out := make([]Window, 0, (n+b.size-1)/b.size)
	for start := 0; start < n; start += b.size {
		out = append(out, Window{Start: start, End: min(start+b.size, n)})
	}
	return out
}
