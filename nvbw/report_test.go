// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nvbw

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sample = `{
  "nvbandwidth": {
    "CUDA Runtime Version": 12040,
    "Driver Version": "550.54.15",
    "git_version": "v0.5",
    "testcases": [
      {"name": "host_to_device_memcpy_ce", "status": "Waived"},
      {"name": "device_local_copy", "status": "Error", "sum": 1.0},
      {"name": "device_local_copy", "status": "Passed", "sum": 3350.0,
       "bandwidth_description": "memcpy CE CPU(row) <- GPU(column) bandwidth (GB/s)"},
      {"name": "device_local_copy", "status": "Passed", "sum": 9999.0},
      {"name": "device_to_host_memcpy_ce", "status": "Passed"}
    ]
  }
}`

func read(t *testing.T, data string) *Report {
	t.Helper()
	rep, err := Read(strings.NewReader(data), "test")
	if err != nil {
		t.Fatal(err)
	}
	return rep
}

func TestSum(t *testing.T) {
	rep := read(t, sample)
	for _, test := range []struct {
		name string
		want float64
		ok   bool
	}{
		// The failed entry is skipped, the second passing
		// duplicate is ignored.
		{"device_local_copy", 3350.0, true},
		{"host_to_device_memcpy_ce", 0, false},
		{"device_to_host_memcpy_ce", 0, false},
		{"no_such_testcase", 0, false},
	} {
		got, ok := rep.Sum(test.name)
		if got != test.want || ok != test.ok {
			t.Errorf("Sum(%q) = %v, %v; want %v, %v", test.name, got, ok, test.want, test.ok)
		}
	}
}

func TestReadErrors(t *testing.T) {
	for _, test := range []struct {
		name, input string
		format      bool
	}{
		{"not json", "this is not json", false},
		{"truncated", `{"nvbandwidth": {"testcases": [`, false},
		{"no section", `{"other": {}}`, true},
		{"no testcases", `{"nvbandwidth": {}}`, true},
		{"null testcases", `{"nvbandwidth": {"testcases": null}}`, true},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(test.input), "in.json")
			if err == nil {
				t.Fatal("want error, got nil")
			}
			if !strings.HasPrefix(err.Error(), "in.json: ") {
				t.Errorf("error %q does not name the file", err)
			}
			var ferr *FormatError
			if got := errors.As(err, &ferr); got != test.format {
				t.Errorf("errors.As(*FormatError) = %v, want %v", got, test.format)
			}
		})
	}
}

func TestEmptyTestcases(t *testing.T) {
	rep := read(t, `{"nvbandwidth": {"testcases": []}}`)
	if rep.Testcases == nil || len(rep.Testcases) != 0 {
		t.Fatalf("want empty non-nil testcases, got %#v", rep.Testcases)
	}
	if _, ok := rep.Sum("device_local_copy"); ok {
		t.Error("Sum on empty report reported a value")
	}
}

func TestFileConfig(t *testing.T) {
	rep := read(t, sample)
	want := []string{
		"cuda-runtime-version", "12040",
		"driver-version", "550.54.15",
		"git-version", "v0.5",
	}
	if got := rep.FileConfig(); !reflect.DeepEqual(got, want) {
		t.Errorf("FileConfig() = %q, want %q", got, want)
	}

	rep = read(t, `{"nvbandwidth": {"Driver Version": null, "testcases": []}}`)
	if got := rep.FileConfig(); len(got) != 0 {
		t.Errorf("FileConfig() = %q, want empty", got)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nvbandwidth_results.json")
	if err := os.WriteFile(path, []byte(sample), 0666); err != nil {
		t.Fatal(err)
	}
	rep, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if rep.FileName() != path {
		t.Errorf("FileName() = %q, want %q", rep.FileName(), path)
	}
	if len(rep.Testcases) != 5 {
		t.Errorf("got %d testcases, want 5", len(rep.Testcases))
	}

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile(missing) = %v, want ErrNotExist", err)
	}
}
