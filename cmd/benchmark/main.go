// Command benchmark runs the microbenchmarks on every execution engine,
// checks that they agree and reports throughput.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv        Output results in CSV format (default: human-readable)
//	-json       Output results in JSON format
//	-core       Run only the core benchmark subset
//	-backends   Comma-separated engines to run (default: interpreter,recompiler)
//	-config     Path to timing configuration JSON file
//
// Example:
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
//
// The exit status is 1 when a benchmark fails or the engines disagree.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/r3ksim/backend"
	"github.com/sarchlab/r3ksim/benchmarks"
	"github.com/sarchlab/r3ksim/timing/latency"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	backends := flag.String("backends", "interpreter,recompiler", "Comma-separated execution engines")
	configPath := flag.String("config", "", "Path to timing configuration JSON file")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	config := benchmarks.DefaultConfig()
	config.Output = os.Stdout
	config.Logger = logger
	config.Backends = nil
	for _, name := range strings.Split(*backends, ",") {
		kind, err := backend.ParseKind(strings.TrimSpace(name))
		if err != nil {
			logger.WithError(err).Fatal("invalid -backends")
		}
		config.Backends = append(config.Backends, kind)
	}
	if *configPath != "" {
		timing, err := latency.LoadConfig(*configPath)
		if err != nil {
			logger.WithError(err).Fatal("invalid -config")
		}
		config.Timing = timing
	}

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	if !*csvOutput && !*jsonOutput {
		fmt.Println("r3ksim Benchmark Harness")
		fmt.Println("========================")
		fmt.Printf("Backends: %s\n", *backends)
		fmt.Println("")
	}

	results, err := harness.RunAll()
	if err != nil {
		logger.WithError(err).Fatal("benchmark run failed")
	}

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			logger.WithError(err).Fatal("failed to write JSON report")
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		summary := benchmarks.Summarize(results)
		fmt.Println("=== Summary ===")
		fmt.Printf("Runs:         %d\n", summary.TotalRuns)
		fmt.Printf("Failed:       %d\n", summary.Failed)
		fmt.Printf("Mismatches:   %d\n", summary.Mismatches)
		fmt.Printf("Instructions: %d\n", summary.TotalInstructions)
		fmt.Printf("Wall Time:    %v\n", summary.TotalWallTime)
	}

	if s := benchmarks.Summarize(results); s.Failed > 0 || s.Mismatches > 0 {
		os.Exit(1)
	}
}
