package worker

import (
	"context"

	"metrosim/network"
	"metrosim/simerr"
	"metrosim/snapshot"
	"metrosim/transfer"
	"metrosim/vehicle"
)

// step1 detects transit arrivals on every owned segment and, for each
// distinct line-successor those segments use (deduped per §4.5), posts
// exactly one hand-off: the arriving vehicle if this successor is the
// one its line departs to, a sentinel otherwise. Local successors are
// applied directly with no wire message; only cross-worker hand-offs
// go through the Inbox.
func (w *Worker) step1(tick int) error {
	for _, id := range w.Owned {
		rt := w.Segments[id]

		var arriving *vehicle.Vehicle
		if rt.Transit != nil && tick-rt.Transit.Timestamp >= int(rt.Seg.Length) {
			arriving = rt.Transit
			rt.Transit = nil
			arriving.State = vehicle.WaitingPlatform
			arriving.Timestamp = tick
		}

		for _, target := range w.Model.DistinctSuccessors(id) {
			var payload *vehicle.Vehicle
			if arriving != nil && target == rt.Seg.Successor[arriving.Line] {
				arriving.Segment = target
				payload = arriving
			}

			owner := w.Part.OwnerOf(target)
			if owner == w.Rank {
				if payload != nil {
					w.appendPending(target, *payload)
				}
				continue
			}

			msg := transfer.Message{ToSegment: target}
			if payload != nil {
				cp := *payload
				msg.Vehicle = &cp
			}
			w.Outboxes[owner] <- msg
			w.Counters.MessagesExchanged.Inc()
		}
	}
	return nil
}

// receiveInbound blocks until exactly ExpectedInbound messages have
// arrived this tick, discarding sentinels and buffering real vehicles
// for the next tick's admission. A closed inbox before the expected
// count is reached means a sibling worker died mid-send: that's a
// broken transfer-protocol invariant, not an ordinary runtime failure.
func (w *Worker) receiveInbound() error {
	for i := 0; i < w.ExpectedInbound; i++ {
		msg, ok := <-w.Inbox
		if !ok {
			return simerr.Protocol("worker %d: inbox closed after %d/%d expected messages", w.Rank, i, w.ExpectedInbound)
		}
		if msg.Vehicle != nil {
			w.appendPending(msg.ToSegment, *msg.Vehicle)
		}
	}
	return nil
}

// appendPending buffers v for segment id, owned locally by this
// worker. It becomes visible to step3 only after the next flush.
func (w *Worker) appendPending(id network.SegmentID, v vehicle.Vehicle) {
	rt, ok := w.Segments[id]
	if !ok {
		return // not ours; shouldn't happen given static ownership
	}
	rt.Pending = append(rt.Pending, v)
}

// step2 runs the platform/transit state machine for rt's platform
// occupant, if any. The two checks below are evaluated in sequence,
// not as mutually exclusive alternatives: a vehicle that becomes
// overdue this tick and finds the transit slot free moves all the way
// from ON_PLATFORM to IN_TRANSIT within the same tick (confirmed by
// the worked examples; see DESIGN.md).
func (w *Worker) step2(tick int, rt *SegmentRuntime) {
	v := rt.Platform
	if v == nil {
		return
	}

	if v.State == vehicle.OnPlatform {
		src, _ := w.Model.Station(rt.Seg.Source)
		if tick-v.Timestamp > int(src.Popularity) {
			v.State = vehicle.WaitingTransit
			v.Timestamp = tick
		}
	}

	if v.State == vehicle.WaitingTransit && rt.Transit == nil {
		v.State = vehicle.InTransit
		v.Timestamp = tick
		rt.Transit = v
		rt.Platform = nil
	}
}

// step3 admits the waiting pool's minimum vehicle onto an empty
// platform slot. Only vehicles already in the pool at the start of the
// tick are eligible; this tick's arrivals and spawns are still sitting
// in Pending and are not popped until a later tick.
func (w *Worker) step3(tick int, rt *SegmentRuntime) {
	if rt.Platform != nil {
		return
	}
	v, ok := rt.Waiting.Pop()
	if !ok {
		return
	}
	v.State = vehicle.OnPlatform
	v.Timestamp = tick
	rt.Platform = &v
}

// applySpawns issues any vehicles due to enter the network this tick
// at a spawn segment this worker owns.
func (w *Worker) applySpawns(tick int) {
	for _, ev := range ComputeSpawns(tick, w.VehicleCounts) {
		segID := w.Model.ForwardStart(ev.Line)
		if !ev.Forward {
			segID = w.Model.BackwardStart(ev.Line)
		}
		if w.Part.OwnerOf(segID) != w.Rank {
			continue
		}
		w.appendPending(segID, vehicle.Vehicle{
			ID:        ev.ID,
			Line:      ev.Line,
			State:     vehicle.WaitingPlatform,
			Timestamp: tick,
			Segment:   segID,
		})
		w.Counters.VehiclesSpawned.Inc()
	}
}

// flush merges this tick's buffered arrivals and spawns into their
// segments' live waiting pools, ready for next tick's step3.
func (w *Worker) flush() {
	for _, rt := range w.Segments {
		for _, v := range rt.Pending {
			rt.Waiting.Push(v)
		}
		rt.Pending = rt.Pending[:0]
	}
}

// emitSnapshot sends this worker's contribution to the current tick's
// report line: every vehicle presently on an owned segment, in any
// order (the collector sorts the merged result).
func (w *Worker) emitSnapshot(tick int, ctx context.Context) {
	var views []snapshot.View
	for _, id := range w.Owned {
		rt := w.Segments[id]
		if rt.Platform != nil {
			views = append(views, toView(rt.Platform))
		}
		if rt.Transit != nil {
			views = append(views, toView(rt.Transit))
		}
		for _, v := range rt.Waiting.All() {
			v := v
			views = append(views, toView(&v))
		}
	}
	select {
	case w.ChunkOut <- snapshot.Chunk{Tick: tick, Views: views}:
	case <-ctx.Done():
	}
}

func toView(v *vehicle.Vehicle) snapshot.View {
	return snapshot.View{ID: v.ID, Line: v.Line, State: v.State, Segment: v.Segment}
}
