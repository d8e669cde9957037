// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package main

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// latencyPoint is one (tree size, alloc-search latency) sample.
type latencyPoint struct {
	x, y float64
}

// plotLatency renders a scatter chart of AllocRange latency against tree
// size to path, using gonum.org/v1/plot the same way
// NikolasRummel-db-index-performance-evaluation's benchmark stack pulls it
// in for thesis-style result charting.
func plotLatency(points []latencyPoint, path string) error {
	p := plot.New()
	p.Title.Text = "maple AllocRange latency vs tree size"
	p.X.Label.Text = "entries"
	p.Y.Label.Text = "ns/op"

	pts := make(plotter.XYs, len(points))
	for i, pt := range points {
		pts[i].X = pt.x
		pts[i].Y = pt.y
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	p.Add(scatter)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
