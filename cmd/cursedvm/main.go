// Command cursedvm is the reference CLI front end for the CursedVM
// interpreter and toolchain: assemble, link, run, step-debug, and
// cross-reference over a single source file. It is a thin, swappable
// embedding over the core (spec §1) — not a dependency of it.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cursedvm/cursedvm/asm"
	"github.com/cursedvm/cursedvm/config"
	"github.com/cursedvm/cursedvm/debugger"
	"github.com/cursedvm/cursedvm/internal/stats"
	"github.com/cursedvm/cursedvm/internal/trace"
	"github.com/cursedvm/cursedvm/link"
	"github.com/cursedvm/cursedvm/vm"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in the step-debugger REPL instead of running to completion")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum cycles before a forced halt (0 = use the config's execution.max_cycles; a config value of 0 means unlimited)")
		configPath  = flag.String("config", "", "Path to a config.toml overriding the default execution limits")
		verbose     = flag.Bool("verbose", false, "Verbose output")

		enableTrace = flag.Bool("trace", false, "Enable an execution trace, written to -trace-file")
		traceFile   = flag.String("trace-file", "", "Trace output file (default: <config log dir>/trace.log)")

		enableStats = flag.Bool("stats", false, "Enable instruction-class statistics, written to -stats-file")
		statsFile   = flag.String("stats-file", "", "Statistics output file (default: the config's statistics.output_file; unused for the text format, which prints to stdout)")
		statsFormat = flag.String("stats-format", "json", "Statistics format: json, csv, or text")

		xref = flag.Bool("xref", false, "Print the assembled program's symbol cross-reference and exit")
	)

	flag.Usage = printHelp
	flag.Parse()

	if *showVersion {
		fmt.Printf("cursedvm %s (%s)\n", Version, Commit)
		return
	}
	if *showHelp || flag.NArg() == 0 {
		printHelp()
		if flag.NArg() == 0 {
			os.Exit(1)
		}
		return
	}

	srcPath := flag.Arg(0)
	src, err := os.ReadFile(srcPath) // #nosec G304 -- user-specified source file
	if err != nil {
		fatalf("reading %s: %v", srcPath, err)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
		if err != nil {
			fatalf("loading config: %v", err)
		}
	}

	if *verbose {
		fmt.Printf("assembling %s\n", srcPath)
	}
	text, rodata, err := asm.Assemble(srcPath, string(src))
	if err != nil {
		fatalf("assemble error: %v", err)
	}

	if *xref {
		fmt.Print(asm.Report(asm.XRef(text, rodata)))
		return
	}

	result, err := link.Link(text, rodata)
	if err != nil {
		fatalf("link error: %v", err)
	}
	if *verbose {
		fmt.Printf("linked %d words, %d symbols\n", len(result.Words), len(result.Labels))
	}

	opts := []vm.Option{
		vm.WithWordMemSize(cfg.Execution.WordMemSize),
	}
	machine := vm.New(opts...)

	cycleLimit := *maxCycles
	if cycleLimit == 0 {
		cycleLimit = cfg.Execution.MaxCycles
	}

	var traceSink *trace.Sink
	if *enableTrace || cfg.Execution.EnableTrace {
		traceSink = setupTrace(cfg, *traceFile)
		machine.Trace = traceSink
		traceSink.Start()
	}

	var statsSink *stats.Sink
	if *enableStats || cfg.Execution.EnableStats {
		statsSink = stats.NewSink()
		machine.Stats = statsSink
		statsSink.Start()
	}

	if err := machine.LoadProgram(result.Words); err != nil {
		fatalf("loading program: %v", err)
	}

	if *debugMode {
		runDebugger(machine, result.Labels)
		flushDiagnostics(cfg, traceSink, statsSink, *statsFile, *statsFormat)
		return
	}

	exitVal, runErr := runWithCycleLimit(machine, cycleLimit)
	flushDiagnostics(cfg, traceSink, statsSink, *statsFile, *statsFormat)

	if runErr != nil {
		fatalf("runtime fault: %v", runErr)
	}

	code := 0
	if n, ok := exitVal.Int(); ok {
		code = int(n)
	}
	if *verbose {
		fmt.Printf("exit value: %s (cycles: %d)\n", formatExitValue(exitVal), machine.Cycles)
	}
	os.Exit(code)
}

// runWithCycleLimit steps the VM until it stops, faults, or hits limit
// cycles, whichever comes first (spec §5's external, non-preemptive
// cancellation: the embedder simply stops calling Step).
func runWithCycleLimit(m *vm.VM, limit uint64) (vm.Value, error) {
	for !m.Stopped {
		if limit > 0 && m.Cycles >= limit {
			return vm.Value{}, fmt.Errorf("cycle limit %d reached", limit)
		}
		if err := m.Step(); err != nil {
			return vm.Value{}, err
		}
	}
	return m.ExitValue, nil
}

func runDebugger(m *vm.VM, symbols map[string]uint32) {
	dbg := debugger.NewDebugger(m)
	dbg.LoadSymbols(symbols)
	if err := debugger.RunCLI(dbg); err != nil {
		fatalf("debugger: %v", err)
	}
}

func setupTrace(cfg *config.Config, path string) *trace.Sink {
	if path == "" {
		path = filepath.Join(config.GetLogPath(), "trace.log")
	}
	f, err := os.Create(path) // #nosec G304 -- user-specified trace output path
	if err != nil {
		fatalf("creating trace file: %v", err)
	}
	sink := trace.NewSink(f)
	sink.MaxEntries = cfg.Trace.MaxEntries
	return sink
}

func flushDiagnostics(cfg *config.Config, traceSink *trace.Sink, statsSink *stats.Sink, statsFile, statsFormat string) {
	if traceSink != nil {
		if err := traceSink.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush trace: %v\n", err)
		}
	}
	if statsSink == nil {
		return
	}
	statsSink.Finalize()

	if statsFile == "" {
		statsFile = cfg.Statistics.OutputFile
	}
	if statsFormat == "" {
		statsFormat = cfg.Statistics.Format
	}

	var werr error
	switch strings.ToLower(statsFormat) {
	case "csv":
		f, err := os.Create(statsFile) // #nosec G304 -- user-specified stats output path
		if err == nil {
			defer f.Close()
			werr = statsSink.ExportCSV(f)
		} else {
			werr = err
		}
	case "text":
		fmt.Print(statsSink.String())
	default:
		f, err := os.Create(statsFile) // #nosec G304 -- user-specified stats output path
		if err == nil {
			defer f.Close()
			werr = statsSink.ExportJSON(f)
		} else {
			werr = err
		}
	}
	if werr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write statistics: %v\n", werr)
	}
}

func formatExitValue(v vm.Value) string {
	switch v.Kind() {
	case vm.KindInt:
		n, _ := v.Int()
		return "int " + strconv.FormatInt(int64(n), 10)
	case vm.KindFloat:
		f, _ := v.Float()
		return "float " + strconv.FormatFloat(float64(f), 'g', -1, 32)
	default:
		return v.Kind().String()
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "cursedvm: "+format+"\n", args...)
	os.Exit(1)
}

func printHelp() {
	fmt.Println(`cursedvm - assembler, linker, and interpreter for the CursedVM instruction set

Usage:
  cursedvm [options] <source.asm>

Options:`)
	flag.PrintDefaults()
	fmt.Println(`
Examples:
  cursedvm program.asm
  cursedvm -debug program.asm
  cursedvm -trace -trace-file trace.log program.asm
  cursedvm -stats -stats-format text program.asm
  cursedvm -xref program.asm`)
}
