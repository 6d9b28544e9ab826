// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package series derives memory-subsystem throughput metrics from
// nvbandwidth testcases and orders them for charting.
package series

import (
	"errors"

	"github.com/aclements/go-moremath/stats"
)

// ErrEmpty is returned by Build when no metric is available.
var ErrEmpty = errors.New("no valid metrics found")

// A Metric is a throughput in GB/s that may be absent.
type Metric struct {
	GBps float64
	OK   bool
}

// Present returns a Metric holding v.
func Present(v float64) Metric {
	return Metric{v, true}
}

// Avg returns the arithmetic mean of the present metrics in ms, or an
// absent Metric if none are present.
func Avg(ms ...Metric) Metric {
	xs := make([]float64, 0, len(ms))
	for _, m := range ms {
		if m.OK {
			xs = append(xs, m.GBps)
		}
	}
	if len(xs) == 0 {
		return Metric{}
	}
	// Sum then divide, so the mean of two values is exactly (a+b)/2.
	return Present(stats.Sample{Xs: xs}.Sum() / float64(len(xs)))
}

// A Source looks up the throughput of a named testcase.
type Source interface {
	Sum(name string) (float64, bool)
}

// Lookup returns the named testcase's throughput from src.
func Lookup(src Source, name string) Metric {
	v, ok := src.Sum(name)
	return Metric{v, ok}
}

// A Tier is a metric computed as the mean over a set of testcases.
type Tier struct {
	// Name identifies the tier in Go benchmark format output. It
	// must not contain spaces.
	Name string
	// Label is the chart label. It may span lines.
	Label string
	// Testcases are the nvbandwidth testcases averaged into this
	// tier.
	Testcases []string
}

// Metric computes t from src.
func (t Tier) Metric(src Source) Metric {
	ms := make([]Metric, len(t.Testcases))
	for i, name := range t.Testcases {
		ms[i] = Lookup(src, name)
	}
	return Avg(ms...)
}

// DefaultTiers are the memory subsystems charted by nvbwplot, in chart
// order: on-device HBM, then host<->device PCIe via copy engines and via
// SM kernels, each unidirectional and bidirectional.
var DefaultTiers = []Tier{
	{
		Name:      "HBM/path=device_local_copy",
		Label:     "HBM\n(device_local_copy)",
		Testcases: []string{"device_local_copy"},
	},
	{
		Name:  "PCIe/engine=CE/dir=uni",
		Label: "PCIe CE\nH↔D uni",
		Testcases: []string{
			"host_to_device_memcpy_ce",
			"device_to_host_memcpy_ce",
		},
	},
	{
		Name:  "PCIe/engine=CE/dir=bidi",
		Label: "PCIe CE\nH↔D bidi",
		Testcases: []string{
			"host_to_device_bidirectional_memcpy_ce",
			"device_to_host_bidirectional_memcpy_ce",
		},
	},
	{
		Name:  "PCIe/engine=SM/dir=uni",
		Label: "PCIe SM\nH↔D uni",
		Testcases: []string{
			"host_to_device_memcpy_sm",
			"device_to_host_memcpy_sm",
		},
	},
	{
		Name:  "PCIe/engine=SM/dir=bidi",
		Label: "PCIe SM\nH↔D bidi",
		Testcases: []string{
			"host_to_device_bidirectional_memcpy_sm",
			"device_to_host_bidirectional_memcpy_sm",
		},
	},
}

// DefaultSMEM is the shared memory throughput in GB/s of an H100,
// measured by a separate SMEM kernel. nvbandwidth does not measure it.
const DefaultSMEM = 73526.90

// A Point is one bar of the chart.
type Point struct {
	Name  string
	Label string
	Value float64
}

// SMEM returns the point for an externally measured on-chip shared
// memory throughput of gbps.
func SMEM(gbps float64) Point {
	return Point{Name: "SMEM/path=kernel", Label: "SMEM / SRAM\n(kernel)", Value: gbps}
}

// A Series is an ordered sequence of points. Order is chart order.
type Series []Point

// Labels returns the labels of s.
func (s Series) Labels() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Label
	}
	return out
}

// Values returns the values of s.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Bounds returns the smallest and largest value in s.
// s must not be empty.
func (s Series) Bounds() (min, max float64) {
	return stats.Bounds(s.Values())
}

// Build computes every tier from src, in order, and appends a point
// for each tier that is present. It then appends constants, which are
// always included. If the result is empty, Build returns ErrEmpty.
func Build(src Source, tiers []Tier, constants ...Point) (Series, error) {
	var s Series
	for _, t := range tiers {
		m := t.Metric(src)
		if !m.OK {
			continue
		}
		s = append(s, Point{Name: t.Name, Label: t.Label, Value: m.GBps})
	}
	s = append(s, constants...)
	if len(s) == 0 {
		return nil, ErrEmpty
	}
	return s, nil
}
