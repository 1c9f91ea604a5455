package stats

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAtomicCounterConcurrentIncrements(t *testing.T) {
	Convey("When many goroutines increment the same counter concurrently", t, func() {
		var c AtomicCounter
		numWriters := 200
		numOps := 1000

		var wg sync.WaitGroup
		wg.Add(numWriters)
		for i := 0; i < numWriters; i++ {
			go func() {
				defer wg.Done()
				for j := 0; j < numOps; j++ {
					c.Inc()
				}
			}()
		}
		wg.Wait()

		So(c.Load(), ShouldEqual, int64(numWriters*numOps))
	})
}

func TestCountersSnapshot(t *testing.T) {
	Convey("Given a Counters with some activity", t, func() {
		c := &Counters{}
		c.TicksCompleted.Add(5)
		c.VehiclesSpawned.Add(2)
		c.MessagesExchanged.Add(9)

		Convey("Snapshot reflects each field independently", func() {
			snap := c.Snapshot()
			So(snap.TicksCompleted, ShouldEqual, int64(5))
			So(snap.VehiclesSpawned, ShouldEqual, int64(2))
			So(snap.MessagesExchanged, ShouldEqual, int64(9))
		})
	})
}
