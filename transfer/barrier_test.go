package transfer

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBarrierReleasesAllPartiesTogether(t *testing.T) {
	Convey("Given a barrier for 4 parties", t, func() {
		parties := 4
		b := NewBarrier(parties)

		Convey("No party returns from Wait until every party has called it", func() {
			var mu sync.Mutex
			returned := 0
			arrived := make(chan struct{}, parties)

			for i := 0; i < parties-1; i++ {
				go func() {
					b.Wait(nil)
					mu.Lock()
					returned++
					mu.Unlock()
					arrived <- struct{}{}
				}()
			}

			// Give the first parties-1 goroutines a chance to block.
			time.Sleep(20 * time.Millisecond)
			mu.Lock()
			before := returned
			mu.Unlock()
			So(before, ShouldEqual, 0)

			go func() {
				b.Wait(nil)
				mu.Lock()
				returned++
				mu.Unlock()
				arrived <- struct{}{}
			}()

			for i := 0; i < parties; i++ {
				<-arrived
			}

			mu.Lock()
			defer mu.Unlock()
			So(returned, ShouldEqual, parties)
		})

		Convey("It is reusable across multiple generations", func() {
			for gen := 0; gen < 3; gen++ {
				var wg sync.WaitGroup
				wg.Add(parties)
				for i := 0; i < parties; i++ {
					go func() {
						defer wg.Done()
						b.Wait(nil)
					}()
				}
				wg.Wait()
			}
		})
	})
}

func TestBarrierSingleParty(t *testing.T) {
	Convey("A barrier with one party never blocks", t, func() {
		b := NewBarrier(1)
		done := make(chan struct{})
		go func() {
			b.Wait(nil)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("barrier with one party should not block")
		}
	})
}

func TestBarrierWaitCancelledByDone(t *testing.T) {
	Convey("A party stuck waiting for a sibling that will never arrive unblocks when done fires", t, func() {
		b := NewBarrier(2)
		done := make(chan struct{})
		errs := make(chan error, 1)

		go func() {
			errs <- b.Wait(done)
		}()

		// Give the lone waiter a chance to park before cancelling; with
		// only one of two parties ever arriving, the barrier itself would
		// otherwise block forever.
		time.Sleep(20 * time.Millisecond)
		close(done)

		select {
		case err := <-errs:
			So(err, ShouldEqual, ErrCancelled)
		case <-time.After(time.Second):
			t.Fatal("Wait did not return after done was closed")
		}
	})
}
