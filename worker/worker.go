// Package worker implements the owned-segment runtime state, the
// vehicle scheduler's three-step tick (§4.4), and the transfer
// mechanics that move vehicles across worker boundaries (§4.5).
package worker

import (
	"context"

	"metrosim/network"
	"metrosim/partition"
	"metrosim/snapshot"
	"metrosim/stats"
	"metrosim/transfer"
	"metrosim/vehicle"
)

// SegmentRuntime is the mutable per-tick state of one owned segment:
// its waiting pool, its single platform and transit slots, and a
// buffer for vehicles that arrived or spawned this tick but aren't
// visible to admission until the next tick (§4.4's worked examples
// require this one-tick delay; see DESIGN.md).
type SegmentRuntime struct {
	Seg      network.Segment
	Waiting  *vehicle.WaitingPool
	Pending  []vehicle.Vehicle
	Platform *vehicle.Vehicle
	Transit  *vehicle.Vehicle
}

// Worker owns a contiguous block of segments and runs their scheduler
// and transfer logic for the lifetime of a run. One Worker = one
// goroutine.
type Worker struct {
	Rank          int
	Model         *network.Model
	Part          *partition.Partitioner
	Owned         []network.SegmentID
	Segments      map[network.SegmentID]*SegmentRuntime
	Inbox         transfer.Inbox
	Outboxes      map[int]transfer.Inbox
	ExpectedInbound int
	VehicleCounts [3]int
	Counters      *stats.Counters
	ChunkOut      chan<- snapshot.Chunk

	TransferBarrier *transfer.Barrier
	TickBarrier     *transfer.Barrier
}

// ExpectedInbound returns how many cross-worker messages rank must
// receive every tick: one per distinct predecessor of each segment it
// owns whose owner is some other rank. This is static, computable by
// every worker independently from the shared Model and Partitioner
// (§4.5's "the receiver knows statically how many messages it must
// collect this tick").
func ExpectedInbound(model *network.Model, part *partition.Partitioner, rank int) int {
	expected := 0
	for _, id := range part.SegmentsFor(rank) {
		for _, pred := range model.Predecessors(id) {
			if part.OwnerOf(pred) != rank {
				expected++
			}
		}
	}
	return expected
}

// New builds a Worker for rank, owning the segments part assigns it.
// inbox is this worker's own receive point; outboxes maps every other
// worker's rank to its inbox, used only to send.
func New(
	rank int,
	model *network.Model,
	part *partition.Partitioner,
	inbox transfer.Inbox,
	outboxes map[int]transfer.Inbox,
	vehicleCounts [3]int,
	counters *stats.Counters,
	chunkOut chan<- snapshot.Chunk,
	transferBarrier, tickBarrier *transfer.Barrier,
) *Worker {
	owned := part.SegmentsFor(rank)
	segments := make(map[network.SegmentID]*SegmentRuntime, len(owned))
	for _, id := range owned {
		seg, _ := model.Segment(id)
		segments[id] = &SegmentRuntime{Seg: seg, Waiting: vehicle.NewWaitingPool()}
	}
	expected := ExpectedInbound(model, part, rank)
	return &Worker{
		Rank:            rank,
		Model:           model,
		Part:            part,
		Owned:           owned,
		Segments:        segments,
		Inbox:           inbox,
		Outboxes:        outboxes,
		ExpectedInbound: expected,
		VehicleCounts:   vehicleCounts,
		Counters:        counters,
		ChunkOut:        chunkOut,
		TransferBarrier: transferBarrier,
		TickBarrier:     tickBarrier,
	}
}

// Run drives this worker through every tick of the simulation,
// stopping early if ctx is cancelled (e.g. a sibling worker failed).
// printFrom is the first tick (inclusive) for which a snapshot chunk
// should be emitted on ChunkOut.
func (w *Worker) Run(ctx context.Context, ticks, printFrom int) error {
	done := ctx.Done()
	for tick := 0; tick < ticks; tick++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := w.step1(tick); err != nil {
			return err
		}
		if err := w.TransferBarrier.Wait(done); err != nil {
			return err
		}

		if err := w.receiveInbound(); err != nil {
			return err
		}

		for _, id := range w.Owned {
			rt := w.Segments[id]
			w.step2(tick, rt)
			w.step3(tick, rt)
		}

		w.applySpawns(tick)
		w.flush()
		w.Counters.TicksCompleted.Inc()

		if tick >= printFrom && w.ChunkOut != nil {
			w.emitSnapshot(tick, ctx)
		}

		if err := w.TickBarrier.Wait(done); err != nil {
			return err
		}
	}
	return nil
}
