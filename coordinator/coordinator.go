// Package coordinator wires every other package together: it takes the
// parsed run description, builds the shared Network Model, partitions
// segments across workers, drives them to completion, and prints the
// final report (§4.7).
package coordinator

import (
	"context"
	"fmt"
	"io"
	"log"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"metrosim/config"
	"metrosim/input"
	"metrosim/network"
	"metrosim/partition"
	"metrosim/simerr"
	"metrosim/snapshot"
	"metrosim/stats"
	"metrosim/telemetry"
	"metrosim/transfer"
	"metrosim/worker"
)

// Run executes one full simulation from a parsed Spec, writing the
// report to out. Model-building and report-writing failures come back as
// simerr errors; a worker's failure comes back wrapped with its rank
// ("worker N: ..."), so errors.Is/errors.As still see any simerr kind in it.
func Run(ctx context.Context, spec *input.Spec, cfg config.RunConfig, out io.Writer, telemetrySrv *telemetry.Server) error {
	var lineNames [3][]string
	for l := 0; l < 3; l++ {
		lineNames[l] = spec.LineNames[l]
	}
	model, err := network.Build(spec.StationNames, spec.Popularities, spec.Adjacency, lineNames)
	if err != nil {
		return simerr.Input("building network model: %w", err)
	}

	numWorkers := cfg.Workers
	if numWorkers < 1 {
		numWorkers = 1
	}
	part := partition.New(model.NumSegments(), numWorkers)

	inboxes := make([]transfer.Inbox, numWorkers)
	for rank := 0; rank < numWorkers; rank++ {
		capacity := worker.ExpectedInbound(model, part, rank)
		inboxes[rank] = transfer.NewInbox(capacity)
	}
	outboxes := make([]map[int]transfer.Inbox, numWorkers)
	for rank := range outboxes {
		m := make(map[int]transfer.Inbox, numWorkers-1)
		for other := 0; other < numWorkers; other++ {
			if other != rank {
				m[other] = inboxes[other]
			}
		}
		outboxes[rank] = m
	}

	transferBarrier := transfer.NewBarrier(numWorkers)
	tickBarrier := transfer.NewBarrier(numWorkers)

	counters := &stats.Counters{}

	printFrom := spec.Ticks - spec.PrintLines
	if printFrom < 0 {
		printFrom = 0
	}

	chunkChans := make([]chan snapshot.Chunk, numWorkers)
	chunkSrcs := make([]<-chan snapshot.Chunk, numWorkers)
	for i := range chunkChans {
		chunkChans[i] = make(chan snapshot.Chunk)
		chunkSrcs[i] = chunkChans[i]
	}

	group, groupCtx := errgroup.WithContext(ctx)
	done := groupCtx.Done()
	merged := channerics.Merge(done, chunkSrcs...)

	collector := &snapshot.Collector{Model: model, NumWorkers: numWorkers}
	lines := collector.Collect(done, merged, spec.Ticks-printFrom)

	for rank := 0; rank < numWorkers; rank++ {
		rank := rank
		w := worker.New(rank, model, part, inboxes[rank], outboxes[rank], spec.VehicleCounts, counters, chunkChans[rank], transferBarrier, tickBarrier)
		group.Go(func() error {
			defer close(chunkChans[rank])
			if err := w.Run(groupCtx, spec.Ticks, printFrom); err != nil {
				return fmt.Errorf("worker %d: %w", rank, err)
			}
			return nil
		})
	}

	telemetryCtx, cancelTelemetry := context.WithCancel(ctx)
	defer cancelTelemetry()
	if telemetrySrv != nil {
		go func() {
			if err := telemetrySrv.ListenAndServe(telemetryCtx); err != nil {
				log.Printf("telemetry: %v", err)
			}
		}()
	}

	reportDone := make(chan error, 1)
	go func() {
		tick := printFrom
		for line := range lines {
			if _, err := fmt.Fprintln(out, line); err != nil {
				reportDone <- err
				return
			}
			if telemetrySrv != nil {
				telemetrySrv.Broadcast(telemetry.TickUpdate{Tick: tick, Line: line, Stats: counters.Snapshot()})
			}
			tick++
		}
		reportDone <- nil
	}()

	if err := group.Wait(); err != nil {
		return err
	}
	if err := <-reportDone; err != nil {
		return simerr.Runtime("writing report: %w", err)
	}

	if cfg.Debug {
		snap := counters.Snapshot()
		log.Printf("run complete: ticks=%d spawned=%d messages=%d", snap.TicksCompleted, snap.VehiclesSpawned, snap.MessagesExchanged)
	}
	return nil
}
