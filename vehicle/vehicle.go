// Package vehicle holds the "troon" type and the per-segment waiting
// pool that orders them for platform admission.
package vehicle

import (
	"container/heap"

	"metrosim/network"
)

// State is one of the four positions a vehicle can occupy.
type State uint8

const (
	WaitingPlatform State = iota
	OnPlatform
	WaitingTransit
	InTransit
)

// Vehicle is a single "troon": its identity, which line it runs, where
// it currently sits, and when it got there.
type Vehicle struct {
	ID        uint64
	Line      network.Line
	State     State
	Timestamp int
	Segment   network.SegmentID
}

// WaitingPool orders vehicles by (timestamp, id) ascending — the
// earliest-arriving vehicle wins platform admission, ties broken by
// the lower numeric id (§4.4, §9: the tie-break is on the identifier
// itself, not its decimal-string rendering — that string ordering is
// reserved for the snapshot report's line sort, a distinct and
// unrelated comparison, see package snapshot).
type WaitingPool struct {
	items vehicleHeap
}

// NewWaitingPool returns an empty pool.
func NewWaitingPool() *WaitingPool {
	return &WaitingPool{}
}

// Push inserts v into the pool.
func (p *WaitingPool) Push(v Vehicle) {
	heap.Push(&p.items, v)
}

// Pop removes and returns the pool's minimum (timestamp, id) vehicle.
// It reports false if the pool is empty.
func (p *WaitingPool) Pop() (Vehicle, bool) {
	if p.items.Len() == 0 {
		return Vehicle{}, false
	}
	v := heap.Pop(&p.items).(Vehicle)
	return v, true
}

// Len returns the number of vehicles currently waiting.
func (p *WaitingPool) Len() int {
	return p.items.Len()
}

// All returns every waiting vehicle, in no particular order. It does
// not mutate the pool; used by the snapshot collector.
func (p *WaitingPool) All() []Vehicle {
	out := make([]Vehicle, len(p.items))
	copy(out, p.items)
	return out
}

type vehicleHeap []Vehicle

func (h vehicleHeap) Len() int { return len(h) }

func (h vehicleHeap) Less(i, j int) bool {
	if h[i].Timestamp != h[j].Timestamp {
		return h[i].Timestamp < h[j].Timestamp
	}
	return h[i].ID < h[j].ID
}

func (h vehicleHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *vehicleHeap) Push(x any) {
	*h = append(*h, x.(Vehicle))
}

func (h *vehicleHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
