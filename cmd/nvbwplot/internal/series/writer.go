// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package series

import (
	"bytes"
	"fmt"
	"io"
)

// Unit is the unit of every Point value.
const Unit = "GB/s"

// A Writer writes series in the Go benchmark format
// (https://golang.org/design/14313-benchmark-format), so runs on
// different machines or drivers can be compared with benchstat.
type Writer struct {
	w   io.Writer
	buf bytes.Buffer

	config []string
}

// NewWriter returns a writer that writes series to w.
//
// config is an alternating sequence of keys and values. It is written
// as file-level configuration before every series.
func NewWriter(w io.Writer, config ...string) *Writer {
	if len(config)%2 != 0 {
		panic("len(config) must be a multiple of 2")
	}
	return &Writer{w: w, config: config}
}

// Write writes one benchmark line per point of s, preceded by the
// file configuration.
func (w *Writer) Write(s Series) error {
	for i := 0; i < len(w.config); i += 2 {
		fmt.Fprintf(&w.buf, "%s: %s\n", w.config[i], w.config[i+1])
	}
	if len(w.config) > 0 {
		w.buf.WriteByte('\n')
	}
	for _, p := range s {
		// Each point is a single derived measurement.
		fmt.Fprintf(&w.buf, "Benchmark%s 1 %v %s\n", p.Name, p.Value, Unit)
	}

	// Write to the buffer can't fail, so we only have to check if
	// this fails.
	_, err := w.w.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}
