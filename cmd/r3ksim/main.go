// Command r3ksim runs a BIOS image and/or a guest executable on the R3000A
// execution engine.
//
// Usage:
//
//	r3ksim [flags] [program.exe|program.elf]
//
// Without -bios the program starts directly at its entry point. With -bios
// the firmware boots first and the program is side-loaded when the shell
// entry point is reached.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/r3ksim/backend"
	"github.com/sarchlab/r3ksim/dynarec"
	"github.com/sarchlab/r3ksim/emu"
	"github.com/sarchlab/r3ksim/loader"
	"github.com/sarchlab/r3ksim/timing/latency"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options are the parsed command line flags.
type options struct {
	bios        string
	backendName string
	budget      uint64
	configPath  string
	ram8M       bool
	tty         bool
	kernelLog   bool
	verbose     bool
	trace       bool
	dump        bool
	snapshot    string
	arenaSize   int
	program     string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("r3ksim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.bios, "bios", "", "Path to a 512 KiB BIOS image")
	fs.StringVar(&o.backendName, "backend", "interpreter", "Execution engine: interpreter or recompiler")
	fs.Uint64Var(&o.budget, "budget", 0, "Stop after this many instructions (0 = until interrupted)")
	fs.StringVar(&o.configPath, "config", "", "Path to timing configuration JSON file")
	fs.BoolVar(&o.ram8M, "ram8m", false, "Use 8 MiB of RAM instead of 2 MiB")
	fs.BoolVar(&o.tty, "tty", true, "Copy firmware console output to stdout")
	fs.BoolVar(&o.kernelLog, "kernel-log", false, "Log firmware kernel calls")
	fs.BoolVar(&o.verbose, "v", false, "Verbose output")
	fs.BoolVar(&o.trace, "trace", false, "Log every executed instruction")
	fs.BoolVar(&o.dump, "dump", false, "Print the registers on exit")
	fs.StringVar(&o.snapshot, "snapshot", "", "Write a register snapshot to this path on exit")
	fs.IntVar(&o.arenaSize, "arena", dynarec.DefaultArenaSize, "Recompiler translation arena size in bytes")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: r3ksim [options] [program.exe|program.elf]\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return nil, fmt.Errorf("expected at most one program, got %d", fs.NArg())
	}
	o.program = fs.Arg(0)
	if o.program == "" && o.bios == "" {
		fs.Usage()
		return nil, errors.New("nothing to run: give a program, -bios, or both")
	}
	return o, nil
}

func newLogger(o *options, stderr io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(stderr)
	switch {
	case o.trace:
		logger.SetLevel(logrus.TraceLevel)
	case o.verbose:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

// runSystem is the run/stop flag of the CLI: a StopFlag or a Budget.
type runSystem interface {
	emu.System
	Stop()
	Start()
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logger := newLogger(o, stderr)
	log := logger.WithField("component", "r3ksim")

	if err := simulate(o, logger, stdout); err != nil {
		log.WithError(err).Error("simulation failed")
		return 1
	}
	return 0
}

func simulate(o *options, logger *logrus.Logger, stdout io.Writer) error {
	log := logger.WithField("component", "r3ksim")

	kind, err := backend.ParseKind(o.backendName)
	if err != nil {
		return err
	}

	timing := latency.DefaultTimingConfig()
	if o.configPath != "" {
		timing, err = latency.LoadConfig(o.configPath)
		if err != nil {
			return err
		}
		if err := timing.Validate(); err != nil {
			return err
		}
	}

	ramSize := emu.RAMSize2M
	if o.ram8M {
		ramSize = emu.RAMSize8M
	}
	bus := emu.NewBus(ramSize)

	if o.bios != "" {
		image, err := os.ReadFile(o.bios)
		if err != nil {
			return fmt.Errorf("failed to read BIOS: %w", err)
		}
		if err := bus.LoadBIOS(image); err != nil {
			return err
		}
	}

	var prog *loader.Program
	symbols := emu.NewSymbols()
	if o.program != "" {
		prog, err = loader.Load(o.program)
		if err != nil {
			return err
		}
		symbols = prog.SymbolTable()
		log.WithFields(logrus.Fields{
			"program":  o.program,
			"entry":    fmt.Sprintf("%08x", prog.Entry),
			"segments": len(prog.Segments),
			"symbols":  symbols.Len(),
		}).Debug("program loaded")
	}

	var sys runSystem = emu.NewStopFlag()
	if o.budget > 0 {
		sys = emu.NewBudget(o.budget)
	}

	// With a BIOS the program waits for the shell; stopping here hands
	// control back to simulate, which side-loads it.
	shell := false
	events := emu.EventFunc(func(e emu.Event) {
		log.WithField("event", e).Debug("milestone")
		if e == emu.ShellReached && prog != nil && o.bios != "" {
			shell = true
			sys.Stop()
		}
	})

	coreOpts := []emu.Option{
		emu.WithMemory(bus),
		emu.WithSystem(sys),
		emu.WithEventBus(events),
		emu.WithLatencyTable(latency.NewTableWithConfig(timing)),
		emu.WithLogger(logrus.NewEntry(logger)),
		emu.WithRAMMask(bus.RAMMask()),
		emu.WithSymbols(symbols),
		emu.WithKernelLog(o.kernelLog),
	}
	if o.tty {
		coreOpts = append(coreOpts, emu.WithTTY(stdout))
	}
	core := emu.NewCore(coreOpts...)

	engine := backend.New(kind, core, dynarec.WithArenaSize(o.arenaSize))
	defer engine.Shutdown()
	log.WithFields(backend.Fields(engine)).Info("engine ready")

	if o.bios == "" {
		if err := sideload(engine, bus, prog); err != nil {
			return err
		}
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-interrupts:
			log.Info("interrupted")
			sys.Stop()
		case <-done:
		}
	}()

	engine.Execute()
	if shell {
		log.WithField("pc", fmt.Sprintf("%08x", core.Regs.PC)).Info("shell reached, side-loading program")
		if err := sideload(engine, bus, prog); err != nil {
			return err
		}
		sys.Start()
		engine.Execute()
	}

	stats := core.Stats()
	log.WithFields(logrus.Fields{
		"pc":           fmt.Sprintf("%08x", core.Regs.PC),
		"cycles":       core.Regs.Cycle,
		"instructions": stats.Instructions,
		"exceptions":   stats.Exceptions,
		"interrupts":   stats.Interrupts,
		"icache_hits":  stats.CacheHits,
		"icache_miss":  stats.CacheMisses,
	}).Info("stopped")

	if o.dump {
		dumpRegisters(stdout, core)
	}
	if o.snapshot != "" {
		if err := os.WriteFile(o.snapshot, core.Snapshot(), 0644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		log.WithField("path", o.snapshot).Debug("snapshot written")
	}
	return nil
}

// sideload copies prog into RAM, drops stale translations of it and points
// the core at its entry.
func sideload(engine emu.Engine, ram loader.RAM, prog *loader.Program) error {
	if err := prog.LoadInto(ram); err != nil {
		return err
	}
	for _, seg := range prog.Segments {
		size := seg.MemSize
		if uint32(len(seg.Data)) > size {
			size = uint32(len(seg.Data))
		}
		engine.Clear(seg.Addr, size)
	}
	prog.Apply(engine.Core())
	return nil
}
