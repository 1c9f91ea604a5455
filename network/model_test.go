package network

import "testing"

func TestBuildSimpleCycle(t *testing.T) {
	// A-B-C line, adjacency in both directions between neighbouring stations.
	names := []string{"A", "B", "C"}
	pops := []uint32{0, 0, 0}
	adj := [][]uint32{
		{0, 1, 0},
		{1, 0, 1},
		{0, 1, 0},
	}
	lines := [numLines][]string{
		{"A", "B", "C"},
		nil,
		nil,
	}

	m, err := Build(names, pops, adj, lines)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.NumSegments() != 4 {
		t.Fatalf("NumSegments: got %d, want 4", m.NumSegments())
	}

	fwd := m.ForwardStart(Green)
	bwd := m.BackwardStart(Green)
	if fwd == NoSegment || bwd == NoSegment {
		t.Fatalf("expected both start segments to be set")
	}

	// Walking successors along the line must return to the start after
	// a cycle of length 2*(stations-1) = 4.
	cur := fwd
	for i := 0; i < 4; i++ {
		seg, ok := m.Segment(cur)
		if !ok {
			t.Fatalf("segment %d missing", cur)
		}
		cur = seg.Successor[Green]
	}
	if cur != fwd {
		t.Fatalf("successor cycle did not return to start: got %d, want %d", cur, fwd)
	}
}

func TestBuildSingleStationPairCycleOfTwo(t *testing.T) {
	names := []string{"A", "B"}
	pops := []uint32{0, 0}
	adj := [][]uint32{
		{0, 1},
		{1, 0},
	}
	lines := [numLines][]string{{"A", "B"}, nil, nil}

	m, err := Build(names, pops, adj, lines)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.NumSegments() != 2 {
		t.Fatalf("NumSegments: got %d, want 2", m.NumSegments())
	}

	fwd := m.ForwardStart(Green)
	bwd := m.BackwardStart(Green)

	fwdSeg, _ := m.Segment(fwd)
	if fwdSeg.Successor[Green] != bwd {
		t.Fatalf("forward segment should alternate onto backward segment")
	}
	bwdSeg, _ := m.Segment(bwd)
	if bwdSeg.Successor[Green] != fwd {
		t.Fatalf("backward segment should alternate back onto forward segment")
	}
}

func TestPredecessorsListsEachUpstreamSegmentOnce(t *testing.T) {
	// Two lines sharing the same B->C hop must each still be listed as
	// a distinct predecessor of it.
	names := []string{"A", "B", "C", "D"}
	pops := []uint32{0, 0, 0, 0}
	adj := [][]uint32{
		{0, 1, 0, 0},
		{1, 0, 1, 1},
		{0, 1, 0, 1},
		{0, 1, 1, 0},
	}
	lines := [numLines][]string{
		{"A", "B", "C"},
		{"D", "B", "C"},
		nil,
	}
	m, err := Build(names, pops, adj, lines)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	abID := -1
	for id := 1; id <= m.NumSegments(); id++ {
		seg, _ := m.Segment(SegmentID(id))
		if seg.Source == StationID(0) && seg.Dest == StationID(1) {
			abID = id
		}
	}
	if abID < 0 {
		t.Fatalf("expected to find segment A->B")
	}

	bcID := -1
	for id := 1; id <= m.NumSegments(); id++ {
		seg, _ := m.Segment(SegmentID(id))
		if seg.Source == StationID(1) && seg.Dest == StationID(2) {
			bcID = id
		}
	}
	if bcID < 0 {
		t.Fatalf("expected to find segment B->C")
	}

	preds := m.Predecessors(SegmentID(bcID))
	count := 0
	for _, p := range preds {
		if p == SegmentID(abID) {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected B->C to list A->B as a predecessor exactly once, got %d", count)
	}
}

func TestDistinctSuccessorsDedupesSameTarget(t *testing.T) {
	// Segment 1 is used by both green and yellow, both handing off to
	// segment 2. DistinctSuccessors must report segment 2 once, not
	// twice, matching the send-side dedup in the transfer protocol.
	m := &Model{
		segments: []Segment{
			{}, // unused index 0
			{ID: 1, Successor: [numLines]SegmentID{2, 2, NoSegment}},
			{ID: 2, Successor: [numLines]SegmentID{NoSegment, NoSegment, NoSegment}},
		},
	}
	succ := m.DistinctSuccessors(1)
	if len(succ) != 1 || succ[0] != 2 {
		t.Fatalf("expected exactly one distinct successor (2), got %v", succ)
	}
}

func TestBuildRejectsMismatchedCounts(t *testing.T) {
	_, err := Build([]string{"A", "B"}, []uint32{0}, [][]uint32{{0, 1}, {1, 0}}, [numLines][]string{})
	if err == nil {
		t.Fatalf("expected an error for mismatched popularity count")
	}
}
