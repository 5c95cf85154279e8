// Package benchmarks runs guest microbenchmarks on the execution engines
// and checks that every engine reaches the same architectural state.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/r3ksim/backend"
	"github.com/sarchlab/r3ksim/dynarec"
	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/insts"
	"github.com/sarchlab/r3ksim/timing/latency"
)

// ProgramBase is where benchmark programs are loaded and started.
const ProgramBase = 0x80010000

// DefaultBudget bounds every run so a broken engine cannot hang the harness.
const DefaultBudget = 1 << 24

// BenchmarkResult holds the results of one benchmark on one engine.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Backend is the engine that actually ran, after any fallback
	Backend string `json:"backend"`

	// Cycles is the guest cycle counter at exit
	Cycles uint64 `json:"cycles"`

	// Instructions is the number of executed instructions
	Instructions uint64 `json:"instructions"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	ICacheHits   uint64 `json:"icache_hits"`
	ICacheMisses uint64 `json:"icache_misses"`

	// Blocks is the number of blocks translated by a recompiler
	Blocks uint64 `json:"blocks,omitempty"`

	// Result is the value of the benchmark's result register
	Result uint32 `json:"result"`

	// Passed is true when Result matched the expected value and the run
	// reached the exit address
	Passed bool `json:"passed"`

	// Mismatch describes the state difference against the first engine, or
	// is empty when the engines agree
	Mismatch string `json:"mismatch,omitempty"`

	// WallTime is the actual time taken by Execute
	WallTime time.Duration `json:"wall_time_ns"`

	// MIPS is the host throughput in millions of guest instructions per second
	MIPS float64 `json:"mips"`

	regs emu.Registers
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Program is the machine code, loaded at ProgramBase
	Program []uint32

	// Exit is the address where the run stops. Zero means the idle loop
	// formed by the last two words.
	Exit uint32

	// ResultReg is the register holding the benchmark's answer
	ResultReg uint32

	// Expected is the value ResultReg must hold at exit
	Expected uint32
}

func (b Benchmark) exit() uint32 {
	if b.Exit != 0 {
		return b.Exit
	}
	return ProgramBase + uint32(len(b.Program)-2)*4
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Backends lists the engines to run every benchmark on. The first one
	// is the reference for the equivalence check.
	Backends []backend.Kind

	// Timing is the cycle accounting model. Nil means the defaults.
	Timing *latency.TimingConfig

	// DynarecOptions are passed to the recompiler.
	DynarecOptions []dynarec.Option

	// Budget caps the instructions of a single run.
	Budget uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Logger receives engine warnings. Nil means a logger writing nowhere.
	Logger *logrus.Logger
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Backends: []backend.Kind{backend.Interpreter, backend.Recompiler},
		Budget:   DefaultBudget,
		Output:   os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
	table      *latency.Table
	logger     *logrus.Entry
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Budget == 0 {
		config.Budget = DefaultBudget
	}
	if len(config.Backends) == 0 {
		config.Backends = []backend.Kind{backend.Interpreter}
	}

	table := latency.NewTable()
	if config.Timing != nil {
		table = latency.NewTableWithConfig(config.Timing)
	}

	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Harness{
		config: config,
		table:  table,
		logger: logger.WithField("component", "benchmarks"),
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes every benchmark on every configured backend. Results are
// grouped by benchmark, in backend order.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.benchmarks)*len(h.config.Backends))

	for _, bench := range h.benchmarks {
		var reference *BenchmarkResult
		for _, kind := range h.config.Backends {
			result, err := h.runBenchmark(bench, kind)
			if err != nil {
				return nil, err
			}

			if reference == nil {
				reference = &result
			} else if diff := cmp.Diff(reference.regs, result.regs); diff != "" {
				result.Mismatch = diff
				h.logger.WithFields(logrus.Fields{
					"benchmark": bench.Name,
					"reference": reference.Backend,
					"backend":   result.Backend,
				}).Warn("engines disagree")
			}

			results = append(results, result)
		}
	}

	return results, nil
}

// exitSystem stops the run loop when the core reaches an address or the
// budget runs out.
type exitSystem struct {
	core   *emu.Core
	exit   uint32
	budget emu.Budget
}

func (s *exitSystem) Running() bool {
	if s.core.Regs.PC == s.exit {
		return false
	}
	return s.budget.Running()
}

// runBenchmark executes a single benchmark on a fresh core.
func (h *Harness) runBenchmark(bench Benchmark, kind backend.Kind) (BenchmarkResult, error) {
	bus := emu.NewBus(emu.RAMSize2M)
	if err := bus.LoadRAM(ProgramBase, insts.Bytes(bench.Program...)); err != nil {
		return BenchmarkResult{}, fmt.Errorf("benchmark %s: %w", bench.Name, err)
	}

	core := emu.NewCore(
		emu.WithMemory(bus),
		emu.WithLatencyTable(h.table),
		emu.WithLogger(h.logger.WithField("benchmark", bench.Name)),
	)
	sys := &exitSystem{core: core, exit: bench.exit()}
	sys.budget.Reset(h.config.Budget)
	core.SetSystem(sys)

	engine := backend.New(kind, core, h.config.DynarecOptions...)
	defer engine.Shutdown()
	core.Regs.PC = ProgramBase

	start := time.Now()
	engine.Execute()
	wallTime := time.Since(start)

	stats := core.Stats()
	result := BenchmarkResult{
		Name:         bench.Name,
		Description:  bench.Description,
		Backend:      engine.Name(),
		Cycles:       core.Regs.Cycle,
		Instructions: stats.Instructions,
		ICacheHits:   stats.CacheHits,
		ICacheMisses: stats.CacheMisses,
		Result:       core.Regs.GPR.R[bench.ResultReg],
		WallTime:     wallTime,
		regs:         core.Regs,
	}
	if stats.Instructions > 0 {
		result.CPI = float64(result.Cycles) / float64(stats.Instructions)
	}
	if wallTime > 0 {
		result.MIPS = float64(stats.Instructions) / wallTime.Seconds() / 1e6
	}
	if r, ok := engine.(*dynarec.Recompiler); ok {
		result.Blocks = r.Stats().BlocksTranslated
	}
	result.Passed = core.Regs.PC == bench.exit() && result.Result == bench.Expected

	h.logger.WithFields(backend.Fields(engine)).WithFields(logrus.Fields{
		"benchmark":    bench.Name,
		"instructions": result.Instructions,
		"passed":       result.Passed,
	}).Debug("benchmark finished")

	return result, nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== r3ksim Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s [%s]\n", r.Name, r.Backend)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Result: %d (passed: %v)\n", r.Result, r.Passed)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Execution ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Cycles:       %d\n", r.Cycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions: %d\n", r.Instructions)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:          %.3f\n", r.CPI)
		_, _ = fmt.Fprintln(h.config.Output, "  --- I-Cache ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.ICacheHits)
		_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.ICacheMisses)
		if r.Blocks > 0 {
			_, _ = fmt.Fprintf(h.config.Output, "  Blocks translated: %d\n", r.Blocks)
		}
		if r.Mismatch != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  MISMATCH (-reference +%s):\n%s", r.Backend, r.Mismatch)
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v (%.2f MIPS)\n", r.WallTime, r.MIPS)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,backend,cycles,instructions,cpi,icache_hits,icache_misses,blocks,result,passed,equivalent,mips")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%s,%d,%d,%.3f,%d,%d,%d,%d,%v,%v,%.2f\n",
			r.Name,
			r.Backend,
			r.Cycles,
			r.Instructions,
			r.CPI,
			r.ICacheHits,
			r.ICacheMisses,
			r.Blocks,
			r.Result,
			r.Passed,
			r.Mismatch == "",
			r.MIPS,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Backends that were requested
	Backends []string `json:"backends"`

	// Timing is the cycle accounting model used
	Timing *latency.TimingConfig `json:"timing"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalRuns         int           `json:"total_runs"`
	Failed            int           `json:"failed"`
	Mismatches        int           `json:"mismatches"`
	TotalInstructions uint64        `json:"total_instructions"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	s := ReportSummary{TotalRuns: len(results)}
	for _, r := range results {
		if !r.Passed {
			s.Failed++
		}
		if r.Mismatch != "" {
			s.Mismatches++
		}
		s.TotalInstructions += r.Instructions
		s.TotalWallTime += r.WallTime
	}
	return s
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	backends := make([]string, 0, len(h.config.Backends))
	for _, k := range h.config.Backends {
		backends = append(backends, k.String())
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Backends:  backends,
			Timing:    h.table.Config(),
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
