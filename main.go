// Command metrosim runs a distributed tick-driven metro network
// simulation from a text description and prints the trailing window of
// its per-tick vehicle report to stdout (§6).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"metrosim/config"
	"metrosim/coordinator"
	"metrosim/input"
	"metrosim/simerr"
	"metrosim/telemetry"
)

var (
	configPath    *string
	workers       *int
	telemetryAddr *string
	debug         *bool
)

func init() {
	configPath = flag.String("config", "", "path to an optional YAML run config")
	workers = flag.Int("workers", 0, "number of simulation workers (0: use the config value, which defaults to 1; runtime.NumCPU() if the config sets it below 1)")
	telemetryAddr = flag.String("telemetry-addr", "", "address to serve live websocket telemetry on, e.g. :8080 (empty disables it)")
	debug = flag.Bool("debug", false, "log run-wide counters on completion")
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: metrosim [flags] <input-file>")
		os.Exit(1)
	}

	spec, err := input.Load(flag.Arg(0))
	if err != nil {
		var inputErr *simerr.InputError
		if errors.As(err, &inputErr) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *workers > 0 {
		cfg.Workers = *workers
	} else if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	if *telemetryAddr != "" {
		cfg.TelemetryAddr = *telemetryAddr
	}
	if *debug {
		cfg.Debug = true
	}

	if cfg.TelemetryAddr != "" {
		if err := config.Watch(*configPath, func(updated config.RunConfig) {
			log.Printf("config changed: telemetry_rate=%s debug=%v", updated.TelemetryRate, updated.Debug)
		}); err != nil {
			log.Printf("config watch disabled: %v", err)
		}
	}

	var telemetrySrv *telemetry.Server
	if cfg.TelemetryAddr != "" {
		telemetrySrv = telemetry.NewServer(cfg.TelemetryAddr)
		log.Printf("telemetry listening on %s", cfg.TelemetryAddr)
	}

	if err := coordinator.Run(context.Background(), spec, cfg, os.Stdout, telemetrySrv); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
