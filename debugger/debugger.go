package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cursedvm/cursedvm/vm"
)

// StepMode selects how Debugger.Drive advances the machine between
// prompts.
type StepMode int

const (
	StepNone   StepMode = iota // not stepping; wait at the prompt
	StepSingle                 // execute exactly one instruction
	StepOver                   // run until PC reaches StepOverAt (the word after the call)
)

// Debugger wraps a *vm.VM with breakpoints, command history, and label
// resolution for a line-oriented stepping session.
type Debugger struct {
	VM *vm.VM

	Breakpoints *BreakpointManager
	History     *CommandHistory

	Running    bool
	StepMode   StepMode
	StepOverAt uint32 // PC to stop at when StepMode is StepOver

	// Symbols maps assembler labels to word offsets, loaded from a link
	// result so break/tbreak can name addresses symbolically (through
	// ResolveAddress); print and set do not consult it.
	Symbols map[string]uint32

	LastCommand string
	Output      strings.Builder
}

// NewDebugger wraps machine in a fresh debugging session.
func NewDebugger(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(),
		Symbols:     make(map[string]uint32),
	}
}

// LoadSymbols installs a label table produced by the linker.
func (d *Debugger) LoadSymbols(symbols map[string]uint32) {
	d.Symbols = symbols
}

// ResolveAddress resolves a label, or parses a decimal/0x-prefixed
// numeric word offset.
func (d *Debugger) ResolveAddress(s string) (uint32, error) {
	if addr, ok := d.Symbols[s]; ok {
		return addr, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid address: %s", s)
		}
		return uint32(n), nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", s)
	}
	return uint32(n), nil
}

// ExecuteCommand parses and runs one command line. An empty line repeats
// the last non-empty command, matching the convention of stepping
// debuggers where pressing enter continues the last action.
func (d *Debugger) ExecuteCommand(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		line = d.LastCommand
	}
	if line != "" {
		d.History.Add(line)
		d.LastCommand = line
	}

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "backtrace", "bt", "where":
		return d.cmdBacktrace(args)
	case "set":
		return d.cmdSet(args)
	case "history":
		return d.cmdHistory(args)
	case "reset":
		return d.cmdReset(args)
	case "help", "h", "?":
		return d.cmdHelp(args)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak reports whether execution should pause at the VM's current
// PC, and a human-readable reason.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc, err := d.VM.Registers.PC()
	if err != nil {
		return true, fmt.Sprintf("fault reading PC: %v", err)
	}

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"
	case StepOver:
		if pc.Offset == d.StepOverAt {
			d.StepMode = StepNone
			return true, "step over complete"
		}
		return false, ""
	}

	if bp := d.Breakpoints.GetBreakpoint(pc.Offset); bp != nil && bp.Enabled {
		bp.HitCount++
		if bp.Temporary {
			_ = d.Breakpoints.DeleteBreakpoint(bp.ID)
		}
		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}
	return false, ""
}

// GetOutput drains and clears the session's output buffer.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

func (d *Debugger) Printf(format string, args ...any) {
	fmt.Fprintf(&d.Output, format, args...)
}

func (d *Debugger) Println(args ...any) {
	fmt.Fprintln(&d.Output, args...)
}
