// Copyright (c) 2025 The Maple Authors
// SPDX-License-Identifier: MIT

package maple

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes a Tree's node-pool occupancy as Prometheus metrics
// (spec's supplemented observability surface, see SPEC_FULL.md's AMBIENT
// STACK; entirely optional — a Tree works without ever registering one).
// It satisfies prometheus.Collector.
type Collector[V any] struct {
	tree *Tree[V]

	live  *prometheus.Desc
	total *prometheus.Desc
	size  *prometheus.Desc
}

// NewCollector builds a Collector reporting t's node-pool statistics and
// entry count (Len) under the given metric name prefix.
func NewCollector[V any](t *Tree[V], namespace string) *Collector[V] {
	return &Collector[V]{
		tree: t,
		live: prometheus.NewDesc(
			namespace+"_maple_nodes_live", "Number of tree nodes currently checked out of the pool.", nil, nil),
		total: prometheus.NewDesc(
			namespace+"_maple_nodes_allocated_total", "Cumulative number of tree nodes ever allocated.", nil, nil),
		size: prometheus.NewDesc(
			namespace+"_maple_entries", "Number of distinct stored (non-null) ranges.", nil, nil),
	}
}

func (c *Collector[V]) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.live
	ch <- c.total
	ch <- c.size
}

func (c *Collector[V]) Collect(ch chan<- prometheus.Metric) {
	live, total := c.tree.pool.Stats()
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(live))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.CounterValue, float64(total))
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(c.tree.Len()))
}
