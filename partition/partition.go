// Package partition assigns the static segment id space [1..N] to the
// W configured workers in contiguous blocks (§4.2). Ownership is a pure
// function of (segment id, N, W): every worker computes it the same
// way, with no coordination required.
package partition

import "metrosim/network"

// Partitioner divides segment ids [1..N] into ceil(N/W) sized
// contiguous blocks, one per worker rank in [0..W-1]. The last block
// holds whatever ids are left, so it can be smaller than the others.
type Partitioner struct {
	numSegments int
	numWorkers  int
	blockSize   int
}

// New builds a Partitioner for numSegments segments spread across
// numWorkers workers. numWorkers must be at least 1.
func New(numSegments, numWorkers int) *Partitioner {
	if numWorkers < 1 {
		numWorkers = 1
	}
	blockSize := (numSegments + numWorkers - 1) / numWorkers
	if blockSize < 1 {
		blockSize = 1
	}
	return &Partitioner{numSegments: numSegments, numWorkers: numWorkers, blockSize: blockSize}
}

// NumWorkers returns W.
func (p *Partitioner) NumWorkers() int { return p.numWorkers }

// OwnerOf returns the rank of the worker that owns segment id.
func (p *Partitioner) OwnerOf(id network.SegmentID) int {
	rank := (int(id) - 1) / p.blockSize
	if rank >= p.numWorkers {
		rank = p.numWorkers - 1
	}
	if rank < 0 {
		rank = 0
	}
	return rank
}

// Owns reports whether rank owns segment id.
func (p *Partitioner) Owns(id network.SegmentID, rank int) bool {
	return p.OwnerOf(id) == rank
}

// SegmentsFor returns, in ascending id order, the segments owned by
// rank.
func (p *Partitioner) SegmentsFor(rank int) []network.SegmentID {
	start := rank*p.blockSize + 1
	end := start + p.blockSize // exclusive
	if rank == p.numWorkers-1 {
		end = p.numSegments + 1
	}
	if start > p.numSegments {
		return nil
	}
	if end > p.numSegments+1 {
		end = p.numSegments + 1
	}
	out := make([]network.SegmentID, 0, end-start)
	for id := start; id < end; id++ {
		out = append(out, network.SegmentID(id))
	}
	return out
}
