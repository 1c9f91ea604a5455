package worker

import (
	"testing"

	"metrosim/network"
)

func TestComputeSpawnsPairsPerTick(t *testing.T) {
	cases := []struct {
		tick    int
		quota   int
		wantLen int
	}{
		{0, 0, 0},
		{0, 1, 1}, // only the forward slot fires; quota exhausted after one vehicle
		{0, 2, 2}, // both slots fire
		{1, 2, 0}, // quota already exhausted by tick 0
		{1, 3, 1}, // one more forward slot at tick 1
	}
	for _, c := range cases {
		events := ComputeSpawns(c.tick, [3]int{c.quota, 0, 0})
		if len(events) != c.wantLen {
			t.Errorf("tick=%d quota=%d: got %d events, want %d", c.tick, c.quota, len(events), c.wantLen)
		}
	}
}

func TestComputeSpawnsGlobalIDOrdering(t *testing.T) {
	// green=1, yellow=1: at tick 0, green's forward vehicle must get id 0
	// (fixed line order, forward before backward), yellow's forward
	// vehicle must get id 1.
	events := ComputeSpawns(0, [3]int{1, 1, 0})
	if len(events) != 2 {
		t.Fatalf("expected 2 spawn events, got %d", len(events))
	}
	if events[0].Line != network.Green || events[0].ID != 0 {
		t.Errorf("first event: got line=%v id=%d, want green id=0", events[0].Line, events[0].ID)
	}
	if events[1].Line != network.Yellow || events[1].ID != 1 {
		t.Errorf("second event: got line=%v id=%d, want yellow id=1", events[1].Line, events[1].ID)
	}
}

func TestComputeSpawnsStopsAtQuota(t *testing.T) {
	for tick := 0; tick < 10; tick++ {
		events := ComputeSpawns(tick, [3]int{3, 0, 0})
		for _, e := range events {
			if e.ID >= 3 {
				t.Fatalf("tick %d produced id %d beyond quota 3", tick, e.ID)
			}
		}
	}
}
