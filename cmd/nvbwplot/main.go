// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Nvbwplot charts GPU memory subsystem throughput from nvbandwidth
// results.
//
// Usage:
//
//	nvbwplot [flags]
//
// nvbwplot reads the JSON report written by ``nvbandwidth --json''
// (by default nvbandwidth_results.json in the current directory) and
// draws a single log-scale bar chart, by default
// graphs/memory_subsystems_bar_log.png, with one bar per memory
// subsystem:
//
//	HBM\n(device_local_copy)  device_local_copy
//	PCIe CE\nH↔D uni          mean of host_to_device_memcpy_ce and device_to_host_memcpy_ce
//	PCIe CE\nH↔D bidi         mean of the bidirectional CE testcases
//	PCIe SM\nH↔D uni          mean of host_to_device_memcpy_sm and device_to_host_memcpy_sm
//	PCIe SM\nH↔D bidi         mean of the bidirectional SM testcases
//	SMEM / SRAM\n(kernel)     the -smem value
//
// A testcase contributes only if its status is "Passed". A subsystem
// with no passing testcase is left out of the chart rather than drawn
// as zero. The mean is over whichever of the two directions passed.
//
// nvbandwidth cannot measure on-chip shared memory, so the last bar
// always shows the throughput given by -smem, which defaults to a
// separate SMEM kernel measurement on an H100.
//
// With -bench, nvbwplot also writes the chart values in the Go
// benchmark format, so that results from several machines or driver
// versions can be compared with benchstat:
//
//	$ nvbwplot -bench a100.txt -in a100.json -o graphs/a100.png
//	$ nvbwplot -bench h100.txt
//	$ benchstat a100.txt h100.txt
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wkun-upenn/ffpa-playground/cmd/nvbwplot/internal/barchart"
	"github.com/wkun-upenn/ffpa-playground/cmd/nvbwplot/internal/series"
	"github.com/wkun-upenn/ffpa-playground/nvbw"
)

func usage(flags *flag.FlagSet) {
	fmt.Fprintf(flags.Output(), `Usage: nvbwplot [flags]

nvbwplot charts GPU memory subsystem throughput from an nvbandwidth
JSON report as a log-scale bar chart.

For details, see the package documentation.
`)
	flags.PrintDefaults()
}

func main() {
	err := nvbwplot(os.Stdout, os.Stderr, os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "nvbwplot: %s\n", err)
		os.Exit(1)
	}
}

func nvbwplot(w, wErr io.Writer, args []string) error {
	opts := barchart.DefaultOptions()
	flags := flag.NewFlagSet("nvbwplot", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() { usage(flags) }
	flagIn := flags.String("in", "nvbandwidth_results.json", "read nvbandwidth JSON results from `file`")
	flags.StringVar(&opts.Path, "o", opts.Path, "write the PNG chart to `file`")
	flagSMEM := flags.Float64("smem", series.DefaultSMEM, "shared memory throughput in `GB/s`, charted as the last bar")
	flags.Int64Var(&opts.Seed, "seed", opts.Seed, "random `seed` for bar colors")
	flags.StringVar(&opts.Title, "title", opts.Title, "chart `title`")
	flagBench := flags.String("bench", "", "also write chart values in Go benchmark format to `file`")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() != 0 {
		flags.Usage()
		return fmt.Errorf("unexpected arguments: %q", flags.Args())
	}
	if !(*flagSMEM > 0) {
		return fmt.Errorf("-smem must be positive")
	}

	rep, err := nvbw.ReadFile(*flagIn)
	if err != nil {
		return err
	}

	s, err := series.Build(rep, series.DefaultTiers, series.SMEM(*flagSMEM))
	if errors.Is(err, series.ErrEmpty) {
		return fmt.Errorf("No valid metrics found in %s", rep.FileName())
	} else if err != nil {
		return err
	}

	if err := barchart.Render(s, opts); err != nil {
		return err
	}
	if *flagBench != "" {
		if err := writeBench(*flagBench, rep, s); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "✔ Log-scale memory subsystem bar chart saved to: %s\n", opts.Path)
	return nil
}

func writeBench(path string, rep *nvbw.Report, s series.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := series.NewWriter(f, rep.FileConfig()...).Write(s); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
