package worker

import "metrosim/network"

// SpawnEvent is one vehicle entering the network this tick.
type SpawnEvent struct {
	ID      uint64
	Line    network.Line
	Forward bool // true: forward-start segment, false: backward-start segment
}

// ComputeSpawns is a pure function of (tick, vehicleCounts): every
// worker derives the same global vehicle ids and spawn points without
// coordination (§4.3). Vehicles are issued in pairs, one per slot, over
// the first ceil(V/2) ticks per line; ids are assigned in fixed line
// order (green, yellow, blue), forward before backward within a line,
// counting every vehicle spawned so far across all three lines.
func ComputeSpawns(tick int, vehicleCounts [3]int) []SpawnEvent {
	prior := 0
	for _, l := range network.Lines {
		prior += issuedBefore(tick, vehicleCounts[l])
	}
	nextID := uint64(prior)

	var events []SpawnEvent
	for _, l := range network.Lines {
		before := issuedBefore(tick, vehicleCounts[l])
		after := issuedBefore(tick+1, vehicleCounts[l])
		n := after - before
		if n >= 1 {
			events = append(events, SpawnEvent{ID: nextID, Line: l, Forward: true})
			nextID++
		}
		if n >= 2 {
			events = append(events, SpawnEvent{ID: nextID, Line: l, Forward: false})
			nextID++
		}
	}
	return events
}

// issuedBefore returns how many vehicles of a line with the given
// total quota have been issued strictly before tick t: up to two per
// tick, capped at the quota.
func issuedBefore(t int, quota int) int {
	n := 2 * t
	if n > quota {
		n = quota
	}
	if n < 0 {
		n = 0
	}
	return n
}
