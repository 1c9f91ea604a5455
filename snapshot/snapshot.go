// Package snapshot implements the Collector (§4.6): gathering each
// worker's owned-segment vehicle state during the trailing print
// window, and rendering it into the exact report line format of §6.
package snapshot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	channerics "github.com/niceyeti/channerics/channels"

	"metrosim/network"
	"metrosim/vehicle"
)

// View is one vehicle's reportable state at a tick boundary.
type View struct {
	ID      uint64
	Line    network.Line
	State   vehicle.State
	Segment network.SegmentID
}

// Chunk is a single worker's contribution to one tick's snapshot.
type Chunk struct {
	Tick  int
	Views []View
}

// Collector merges per-worker chunks and renders one report line per
// tick once every worker's chunk for that tick has arrived.
type Collector struct {
	Model      *network.Model
	NumWorkers int
}

// Collect drains merged, emitting one formatted line per tick once it
// has gathered NumWorkers chunks for that tick, until ticksTotal ticks
// have been produced. It closes the returned channel when done or when
// done is closed. Guarding the drain against a mid-gather cancellation
// is exactly the teacher's root_view.batchify idiom: wrap the source
// with channerics.OrDone(done, source) and range over that instead of
// hand-rolling a select on every iteration.
func (c *Collector) Collect(done <-chan struct{}, merged <-chan Chunk, ticksTotal int) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		pending := map[int][]View{}
		counts := map[int]int{}
		produced := 0
		for chunk := range channerics.OrDone(done, merged) {
			if produced >= ticksTotal {
				return
			}
			pending[chunk.Tick] = append(pending[chunk.Tick], chunk.Views...)
			counts[chunk.Tick]++
			if counts[chunk.Tick] == c.NumWorkers {
				line := FormatLine(chunk.Tick, pending[chunk.Tick], c.Model)
				select {
				case out <- line:
					produced++
				case <-done:
					return
				}
				delete(pending, chunk.Tick)
				delete(counts, chunk.Tick)
			}
		}
	}()
	return out
}

// FormatLine renders one tick's worth of vehicle views into the exact
// §6 format: "<tick>: <vehicle>[ <vehicle>]*", tokens sorted by line
// letter, then by the lexicographic order of the vehicle id's decimal
// string representation — not its numeric value; see the doc
// comment on vehicle.WaitingPool for why that's a distinct ordering.
func FormatLine(tick int, views []View, model *network.Model) string {
	sorted := make([]View, len(views))
	copy(sorted, views)
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	tokens := make([]string, len(sorted))
	for i, v := range sorted {
		tokens[i] = formatToken(v, model)
	}
	return fmt.Sprintf("%d: %s", tick, strings.Join(tokens, " "))
}

func less(a, b View) bool {
	if a.Line.Prefix() != b.Line.Prefix() {
		return a.Line.Prefix() < b.Line.Prefix()
	}
	as := strconv.FormatUint(a.ID, 10)
	bs := strconv.FormatUint(b.ID, 10)
	return as < bs
}

func formatToken(v View, model *network.Model) string {
	seg, _ := model.Segment(v.Segment)
	src, _ := model.Station(seg.Source)

	var suffix string
	switch v.State {
	case vehicle.InTransit:
		dst, _ := model.Station(seg.Dest)
		suffix = "->" + dst.Name
	case vehicle.WaitingPlatform:
		suffix = "#"
	default: // OnPlatform, WaitingTransit
		suffix = "%"
	}
	return fmt.Sprintf("%c%d-%s%s", v.Line.Prefix(), v.ID, src.Name, suffix)
}
