// Package parcore tuning constants
package parcore

// Scratch arena parameters
const (
	// Alignment for scratch arena regions (cache line size)
	MemoryAlignment = 64

	// Per-member team-reduce scratch reserved for every team dispatch
	TeamReduceSize = 512
)

// Iteration space parameters
const (
	// Maximum product of tile extents for a multi-dimensional range.
	// Bounds the per-tile iteration cost; not a hardware constraint.
	MaxTileProduct = 1024

	// Work-stealing chunk bounds used when a policy leaves the chunk
	// size unset. The divisor trades stealing overhead against load
	// imbalance.
	MinChunkSize     = 1
	MaxChunkSize     = 4096
	ChunkPerThreadDiv = 8
)

// Spin-wait parameters
const (
	// Iterations between scheduler yields while spinning at a rendezvous.
	// Keeps oversubscribed pools from starving the Go scheduler.
	spinYieldInterval = 64
)

// defaultChunkSize picks a stealing chunk for a total extent divided
// among nthreads participants.
func defaultChunkSize(total, nthreads int) int {
	if nthreads < 1 {
		nthreads = 1
	}
	chunk := total / (nthreads * ChunkPerThreadDiv)
	if chunk < MinChunkSize {
		chunk = MinChunkSize
	}
	if chunk > MaxChunkSize {
		chunk = MaxChunkSize
	}
	return chunk
}
