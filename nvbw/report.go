// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nvbw reads the JSON report written by nvbandwidth
// (https://github.com/NVIDIA/nvbandwidth) when run with --json.
//
// A report is a single object of the form
//
//	{"nvbandwidth": {"testcases": [{"name": ..., "status": ..., "sum": ...}, ...]}}
//
// Only the fields needed to look up per-testcase throughput, plus the
// version metadata nvbandwidth records alongside them, are decoded.
// Everything else is ignored.
package nvbw

import (
	"bytes"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusPassed is the status of a testcase that ran to completion.
// Testcases with any other status carry no usable measurement.
const StatusPassed = "Passed"

// A Report is the "nvbandwidth" object of a results file.
//
// Reports are read-only once returned by Read.
type Report struct {
	// CUDARuntimeVersion, DriverVersion and GitVersion are copied
	// verbatim from the input. nvbandwidth has emitted these as both
	// JSON numbers and strings, so they are kept raw.
	CUDARuntimeVersion jsoniter.RawMessage `json:"CUDA Runtime Version,omitempty"`
	DriverVersion      jsoniter.RawMessage `json:"Driver Version,omitempty"`
	GitVersion         jsoniter.RawMessage `json:"git_version,omitempty"`

	// Testcases is every testcase in file order. It is never nil in
	// a Report returned by Read.
	Testcases []Testcase `json:"testcases"`

	fileName string
}

// A Testcase is a single nvbandwidth test and its aggregate result.
type Testcase struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"bandwidth_description,omitempty"`

	// Sum is the sum over the bandwidth matrix in GB/s, or nil if
	// the testcase did not report one.
	Sum *float64 `json:"sum,omitempty"`
}

// Passed reports whether t ran to completion.
func (t *Testcase) Passed() bool {
	return t.Status == StatusPassed
}

// A FormatError reports a results file that is valid JSON but does not
// have the shape of an nvbandwidth report.
type FormatError struct {
	FileName string
	Msg      string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.FileName, e.Msg)
}

type document struct {
	Nvbandwidth *Report `json:"nvbandwidth"`
}

// Read decodes an nvbandwidth report from r. fileName is used in error
// messages; it is purely diagnostic.
func Read(r io.Reader, fileName string) (*Report, error) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	if doc.Nvbandwidth == nil {
		return nil, &FormatError{fileName, `missing "nvbandwidth" object`}
	}
	rep := doc.Nvbandwidth
	if rep.Testcases == nil {
		return nil, &FormatError{fileName, `missing "testcases" array`}
	}
	rep.fileName = fileName
	return rep, nil
}

// ReadFile opens and decodes the nvbandwidth report at path.
func ReadFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, path)
}

// FileName returns the name the report was read from.
func (r *Report) FileName() string {
	return r.fileName
}

// Sum returns the sum of the first testcase named name whose status is
// "Passed". ok is false if there is no such testcase or it did not
// report a sum. Later testcases with the same name are ignored.
func (r *Report) Sum(name string) (sum float64, ok bool) {
	for i := range r.Testcases {
		t := &r.Testcases[i]
		if t.Name != name || !t.Passed() {
			continue
		}
		if t.Sum == nil {
			return 0, false
		}
		return *t.Sum, true
	}
	return 0, false
}

// FileConfig returns the report's version metadata as an alternating
// sequence of keys and values, in the style of Go benchmark format
// file configuration. Metadata absent from the input is omitted.
func (r *Report) FileConfig() []string {
	var cfg []string
	add := func(key string, raw jsoniter.RawMessage) {
		val := rawString(raw)
		if val != "" {
			cfg = append(cfg, key, val)
		}
	}
	add("cuda-runtime-version", r.CUDARuntimeVersion)
	add("driver-version", r.DriverVersion)
	add("git-version", r.GitVersion)
	return cfg
}

// rawString renders a raw JSON scalar as plain text, unquoting strings.
func rawString(raw jsoniter.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
