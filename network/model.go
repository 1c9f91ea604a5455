// Package network holds the immutable description of stations, segments,
// and per-line connectivity that every worker in a run shares. Nothing in
// this package is ever mutated once a Model is built; workers only read it.
package network

import "fmt"

// StationID identifies a station. Stations are numbered densely from 0 in
// the order they appear in the input.
type StationID int

// SegmentID identifies a directed travel segment. Segment ids start at 1;
// the zero value, NoSegment, encodes "not used by this line" / "none".
type SegmentID int

// NoSegment is the sentinel for an absent segment reference.
const NoSegment SegmentID = 0

// Line is one of the three routes a vehicle can run.
type Line uint8

const (
	Green Line = iota
	Yellow
	Blue
	numLines = 3
)

// Lines enumerates the three lines in the fixed order used for spawn
// sequencing and message dedup (§4.3, §4.5 of the simulation design).
var Lines = [numLines]Line{Green, Yellow, Blue}

// Prefix is the single-letter line tag used in the printed report.
func (l Line) Prefix() byte {
	switch l {
	case Green:
		return 'g'
	case Yellow:
		return 'y'
	case Blue:
		return 'b'
	default:
		return '?'
	}
}

func (l Line) String() string {
	switch l {
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Blue:
		return "blue"
	default:
		return "unknown"
	}
}

// Station is created once from the input and never mutated during a run.
type Station struct {
	ID         StationID
	Name       string
	Popularity uint32
	// Outbound/Inbound record, per line, the segment this station first
	// dispatches to / receives from along that line's forward direction.
	// This is auxiliary bookkeeping exposed for queries; the scheduler
	// itself only ever follows Segment.Successor.
	Outbound [numLines]SegmentID
	Inbound  [numLines]SegmentID
}

// Segment is a directed travel path from Source to Dest, taking Length
// ticks to traverse end to end.
type Segment struct {
	ID     SegmentID
	Source StationID
	Dest   StationID
	Length uint32
	// Successor[line] is the next segment a vehicle of that line boards
	// on arrival at Dest, or NoSegment if this segment isn't used by line.
	Successor [numLines]SegmentID
}

// UsesLine reports whether the segment carries traffic for line l.
func (s Segment) UsesLine(l Line) bool {
	return s.Successor[l] != NoSegment
}

// Model is the read-only network description shared by every worker.
type Model struct {
	stations []Station
	segments []Segment // index 0 unused; segments[id] for id in [1..N]

	forwardStart  [numLines]SegmentID
	backwardStart [numLines]SegmentID

	// predecessors[s] lists, in ascending id order, the distinct segments
	// that name s as their line-successor on at least one line.
	predecessors map[SegmentID][]SegmentID
}

// Stations returns all stations in id order.
func (m *Model) Stations() []Station {
	return m.stations
}

// NumSegments returns N, the size of the segment id space [1..N].
func (m *Model) NumSegments() int {
	return len(m.segments) - 1
}

// Segment returns the segment with the given id.
func (m *Model) Segment(id SegmentID) (Segment, bool) {
	if int(id) <= 0 || int(id) >= len(m.segments) {
		return Segment{}, false
	}
	return m.segments[id], true
}

// Station returns the station with the given id.
func (m *Model) Station(id StationID) (Station, bool) {
	if int(id) < 0 || int(id) >= len(m.stations) {
		return Station{}, false
	}
	return m.stations[id], true
}

// ForwardStart returns the segment at which forward-spawned vehicles of
// line l first enter the network.
func (m *Model) ForwardStart(l Line) SegmentID {
	return m.forwardStart[l]
}

// BackwardStart returns the segment at which backward-spawned vehicles of
// line l first enter the network.
func (m *Model) BackwardStart(l Line) SegmentID {
	return m.backwardStart[l]
}

// DistinctSuccessors returns, in fixed line order (green, yellow, blue),
// the distinct segments that segment id's lines hand off to. A segment
// used by two lines that share a successor contributes that successor
// only once, matching the transfer protocol's send-side dedup (§4.5).
func (m *Model) DistinctSuccessors(id SegmentID) []SegmentID {
	seg, ok := m.Segment(id)
	if !ok {
		return nil
	}
	var out []SegmentID
	seen := map[SegmentID]bool{}
	for _, l := range Lines {
		succ := seg.Successor[l]
		if succ == NoSegment || seen[succ] {
			continue
		}
		seen[succ] = true
		out = append(out, succ)
	}
	return out
}

// Predecessors returns the distinct segments that name id as a
// line-successor, i.e. the segments whose departing vehicles (or
// sentinels) this segment can receive.
func (m *Model) Predecessors(id SegmentID) []SegmentID {
	return m.predecessors[id]
}

// Build constructs the Network Model from a parsed input description.
// It is a pure function: identical input yields a bit-identical Model on
// every worker (§4.1 Determinism).
func Build(
	stationNames []string,
	popularities []uint32,
	adjacency [][]uint32,
	lineStations [numLines][]string,
) (*Model, error) {
	n := len(stationNames)
	if len(popularities) != n || len(adjacency) != n {
		return nil, fmt.Errorf("network: mismatched station count: names=%d popularities=%d adjacency_rows=%d",
			n, len(popularities), len(adjacency))
	}
	nameToID := make(map[string]StationID, n)
	stations := make([]Station, n)
	for i, name := range stationNames {
		if _, dup := nameToID[name]; dup {
			return nil, fmt.Errorf("network: duplicate station name %q", name)
		}
		nameToID[name] = StationID(i)
		stations[i] = Station{ID: StationID(i), Name: name, Popularity: popularities[i]}
	}

	segments := []Segment{{}} // segments[0] unused, id 0 == NoSegment
	bySrcDst := map[[2]StationID]SegmentID{}
	for i := 0; i < n; i++ {
		if len(adjacency[i]) != n {
			return nil, fmt.Errorf("network: adjacency row %d has length %d, want %d", i, len(adjacency[i]), n)
		}
		for j := 0; j < n; j++ {
			length := adjacency[i][j]
			if length == 0 {
				continue
			}
			id := SegmentID(len(segments))
			segments = append(segments, Segment{
				ID:     id,
				Source: StationID(i),
				Dest:   StationID(j),
				Length: length,
			})
			bySrcDst[[2]StationID{StationID(i), StationID(j)}] = id
		}
	}

	m := &Model{stations: stations, segments: segments}

	for _, l := range Lines {
		names := lineStations[l]
		if len(names) < 2 {
			continue // line unused
		}
		ids := make([]StationID, len(names))
		for i, name := range names {
			sid, ok := nameToID[name]
			if !ok {
				return nil, fmt.Errorf("network: line %s references unknown station %q", l, name)
			}
			ids[i] = sid
		}

		k := len(ids)
		forward := make([]SegmentID, k-1)
		backward := make([]SegmentID, k-1)
		for i := 0; i < k-1; i++ {
			fwd, ok := bySrcDst[[2]StationID{ids[i], ids[i+1]}]
			if !ok {
				return nil, fmt.Errorf("network: line %s has no segment %s->%s", l, stations[ids[i]].Name, stations[ids[i+1]].Name)
			}
			bwd, ok := bySrcDst[[2]StationID{ids[i+1], ids[i]}]
			if !ok {
				return nil, fmt.Errorf("network: line %s has no segment %s->%s", l, stations[ids[i+1]].Name, stations[ids[i]].Name)
			}
			forward[i] = fwd
			backward[i] = bwd
		}

		for i := 0; i < k-1; i++ {
			if i < k-2 {
				segments[forward[i]].Successor[l] = forward[i+1]
			} else {
				segments[forward[i]].Successor[l] = backward[i] // terminal reversal
			}
			if i > 0 {
				segments[backward[i]].Successor[l] = backward[i-1]
			} else {
				segments[backward[i]].Successor[l] = forward[0] // terminal reversal
			}
		}

		m.forwardStart[l] = forward[0]
		m.backwardStart[l] = backward[k-2]

		for i := 0; i < k; i++ {
			if i < k-1 {
				stations[ids[i]].Outbound[l] = forward[i]
			}
			if i > 0 {
				stations[ids[i]].Inbound[l] = forward[i-1]
			}
		}
	}
	m.stations = stations

	predecessors := map[SegmentID][]SegmentID{}
	for id := 1; id < len(segments); id++ {
		for _, succ := range m.DistinctSuccessors(SegmentID(id)) {
			predecessors[succ] = append(predecessors[succ], SegmentID(id))
		}
	}
	m.predecessors = predecessors

	return m, nil
}
