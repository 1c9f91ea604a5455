package vehicle

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWaitingPoolOrdering(t *testing.T) {
	Convey("Given a waiting pool with several vehicles", t, func() {
		pool := NewWaitingPool()
		pool.Push(Vehicle{ID: 5, Timestamp: 3})
		pool.Push(Vehicle{ID: 1, Timestamp: 3})
		pool.Push(Vehicle{ID: 9, Timestamp: 1})
		pool.Push(Vehicle{ID: 2, Timestamp: 2})

		Convey("Pop should return vehicles ordered by (timestamp, id) ascending", func() {
			order := []uint64{}
			for {
				v, ok := pool.Pop()
				if !ok {
					break
				}
				order = append(order, v.ID)
			}
			So(order, ShouldResemble, []uint64{9, 2, 1, 5})
		})

		Convey("Len should reflect the number of pending vehicles", func() {
			So(pool.Len(), ShouldEqual, 4)
			pool.Pop()
			So(pool.Len(), ShouldEqual, 3)
		})

		Convey("All should return every vehicle without mutating the pool", func() {
			all := pool.All()
			So(len(all), ShouldEqual, 4)
			So(pool.Len(), ShouldEqual, 4)
		})
	})

	Convey("Given an empty waiting pool", t, func() {
		pool := NewWaitingPool()
		Convey("Pop should report false", func() {
			_, ok := pool.Pop()
			So(ok, ShouldBeFalse)
		})
	})
}

func TestWaitingPoolTiesBreakOnNumericID(t *testing.T) {
	Convey("Given two vehicles with equal timestamps but ids 10 and 2", t, func() {
		pool := NewWaitingPool()
		pool.Push(Vehicle{ID: 10, Timestamp: 0})
		pool.Push(Vehicle{ID: 2, Timestamp: 0})

		Convey("The lower numeric id wins, not the lexicographically smaller string", func() {
			v, _ := pool.Pop()
			So(v.ID, ShouldEqual, uint64(2))
		})
	})
}
