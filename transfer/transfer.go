// Package transfer implements the cross-worker hand-off mechanics of
// §4.5: a wire message type, per-worker inboxes sized to the
// statically-known per-tick inbound count, and a reusable barrier that
// keeps every worker in lockstep between tick phases.
package transfer

import (
	"metrosim/network"
	"metrosim/vehicle"
)

// Message is one line-usage's worth of hand-off: either a real vehicle
// departing onto ToSegment, or a sentinel (Vehicle == nil) declaring
// that no vehicle departed this tick along that line-usage. Receivers
// know their exact expected per-tick count in advance, so sentinels
// exist purely to make that count statically true regardless of
// traffic (§4.5 rationale).
type Message struct {
	ToSegment network.SegmentID
	Vehicle   *vehicle.Vehicle
}

// Inbox is a worker's receive point: every cross-worker sender posts
// into the same channel. Buffering it to the statically-precomputed
// expected-per-tick count means a send never blocks on a slow
// receiver, matching §4.5's "sends are non-blocking" requirement.
type Inbox chan Message

// NewInbox allocates an inbox sized for capacity messages per tick.
func NewInbox(capacity int) Inbox {
	if capacity < 1 {
		capacity = 1
	}
	return make(Inbox, capacity)
}
