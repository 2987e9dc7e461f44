package mincrypt

import "sync/atomic"

// ChunkCounter hands out increasing chunk ids for callers that encrypt
// blocks one at a time. The first id is 1, matching the file codec.
type ChunkCounter struct {
	last atomic.Uint32
}

// Next returns the next chunk id.
func (c *ChunkCounter) Next() uint32 {
	return c.last.Add(1)
}

// Current returns the id most recently returned by Next, or 0.
func (c *ChunkCounter) Current() uint32 {
	return c.last.Load()
}

// Reset starts the sequence over.
func (c *ChunkCounter) Reset() {
	c.last.Store(0)
}
