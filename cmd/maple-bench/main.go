// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

// Command maple-bench measures AllocRange latency and memory footprint as a
// tree grows (AllocRangeReverse is not measured), grounded on the benchmark
// harness shape
// of NikolasRummel-db-index-performance-evaluation's src/main.go (CSV
// output, runtime.ReadMemStats sampling) but retargeted at maple's
// allocation-mode search instead of a generic index insert/lookup sweep.
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/mapletree/maple"
)

// benchResult is one sampled row of the sweep.
type benchResult struct {
	Scale     int
	Operation string
	LatencyNs int64
	AllocMB   uint64
	Objects   uint64
}

func sampleMem() (allocMB, objects uint64) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return m.Alloc / 1024 / 1024, m.HeapObjects
}

func record(w *csv.Writer, r benchResult) {
	w.Write([]string{
		strconv.Itoa(r.Scale),
		r.Operation,
		strconv.FormatInt(r.LatencyNs, 10),
		strconv.FormatUint(r.AllocMB, 10),
		strconv.FormatUint(r.Objects, 10),
	})
}

func main() {
	f, err := os.Create("maple_bench_results.csv")
	if err != nil {
		fmt.Fprintln(os.Stderr, "maple-bench:", err)
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"Scale", "Operation", "LatencyNs", "AllocMB", "HeapObjects"})

	var points []latencyPoint

	scales := []int{1_000, 10_000, 100_000, 1_000_000}
	for _, n := range scales {
		t := &maple.Tree[int]{}
		t.Init(maple.AllocMode)

		stride := uint(^uint(0)) / uint(n*4)
		for i := 0; i < n; i++ {
			v := i
			lo := uint(i) * stride * 2
			_ = t.Insert(lo, &v)
		}

		start := time.Now()
		const trials = 200
		for k := 0; k < trials; k++ {
			_, _ = t.AllocRange(1, 0, ^uint(0))
		}
		latency := time.Since(start).Nanoseconds() / trials

		allocMB, objects := sampleMem()
		record(w, benchResult{Scale: n, Operation: "AllocRange", LatencyNs: latency, AllocMB: allocMB, Objects: objects})
		points = append(points, latencyPoint{x: float64(n), y: float64(latency)})

		t.Destroy()
	}

	w.Flush()

	if err := plotLatency(points, "maple_bench_latency.png"); err != nil {
		fmt.Fprintln(os.Stderr, "maple-bench: chart:", err)
	}
	fmt.Println("maple-bench: wrote maple_bench_results.csv and maple_bench_latency.png")
}
