package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cursedvm/cursedvm/vm"
)

func (d *Debugger) cmdRun(args []string) error {
	d.VM.Reset()
	d.Running = true
	d.StepMode = StepNone
	d.Println("Starting program execution...")
	return nil
}

func (d *Debugger) cmdContinue(args []string) error {
	if d.VM.Stopped {
		return fmt.Errorf("program is not running")
	}
	d.Running = true
	d.StepMode = StepNone
	d.Println("Continuing...")
	return nil
}

func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdNext steps over a call instruction at the current PC, or behaves
// like a single step for anything else.
func (d *Debugger) cmdNext(args []string) error {
	pc, err := d.VM.Registers.PC()
	if err != nil {
		return err
	}
	raw, err := d.VM.WordMem.Read(pc.Offset)
	if err != nil {
		return err
	}
	ins := vm.Decode(uint32(raw))
	if ins.Class == vm.ClassB && ins.C0&1 != 0 { // bit 0: call
		d.StepOverAt = pc.Offset + 1
		d.StepMode = StepOver
	} else {
		d.StepMode = StepSingle
	}
	d.Running = true
	return nil
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|label>")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(addr, false)
	d.Printf("Breakpoint %d at word %d\n", bp.ID, addr)
	return nil
}

func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address|label>")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(addr, true)
	d.Printf("Temporary breakpoint %d at word %d\n", bp.ID, addr)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.SetEnabled(id, true); err != nil {
		return err
	}
	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.SetEnabled(id, false); err != nil {
		return err
	}
	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdPrint prints a register's Value by number ($N) or an environment
// key. Symbolic register names are not accepted.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <$register|env-key>")
	}
	target := args[0]
	if strings.HasPrefix(target, "$") {
		idx, err := strconv.Atoi(target[1:])
		if err != nil || idx < 0 || idx >= vm.NumRegisters {
			return fmt.Errorf("invalid register: %s", target)
		}
		d.Printf("%s = %s\n", target, formatValue(d.VM.PeekRegister(idx)))
		return nil
	}
	if val, ok := d.VM.GetEnvironment(target); ok {
		d.Printf("%s = %v\n", target, val)
		return nil
	}
	return fmt.Errorf("unknown environment key: %s", target)
}

func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|stack|callstack>")
	}
	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		return d.showRegisters()
	case "stack", "s":
		return d.showDataStack()
	case "callstack", "cs":
		return d.showCallStack()
	case "breakpoints", "b":
		return d.showBreakpoints()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

func (d *Debugger) showRegisters() error {
	d.Println("Registers:")
	for i := 0; i < vm.NumRegisters; i++ {
		d.Printf("  r%-2d = %s\n", i, formatValue(d.VM.PeekRegister(i)))
	}
	return nil
}

func (d *Debugger) showDataStack() error {
	depth := d.VM.DataStackDepth()
	d.Printf("Data stack (depth %d):\n", depth)
	for i := 0; i < depth && i < DataStackDisplayWindow; i++ {
		v, err := d.VM.DataStackPeek(i)
		if err != nil {
			break
		}
		d.Printf("  [%d] %s\n", i, formatValue(v))
	}
	return nil
}

func (d *Debugger) showCallStack() error {
	depth := d.VM.CallDepth()
	d.Printf("Call stack (depth %d):\n", depth)
	for i := 0; i < depth && i < CallStackDisplayWindow; i++ {
		ret, err := d.VM.CallFrame(i)
		if err != nil {
			break
		}
		d.Printf("  #%d return to word %d\n", i, ret)
	}
	return nil
}

func (d *Debugger) showBreakpoints() error {
	bps := d.Breakpoints.GetAllBreakpoints()
	if len(bps) == 0 {
		d.Println("No breakpoints")
		return nil
	}
	d.Println("Breakpoints:")
	for _, bp := range bps {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}
		d.Printf("  %d: word %d %s%s (hit %d times)\n", bp.ID, bp.Address, status, temp, bp.HitCount)
	}
	return nil
}

func (d *Debugger) cmdBacktrace(args []string) error {
	pc, err := d.VM.Registers.PC()
	if err != nil {
		return err
	}
	d.Println("Call stack:")
	d.Printf("  #0  pc=word %d\n", pc.Offset)
	depth := d.VM.CallDepth()
	for i := 0; i < depth && i < CallStackDisplayWindow; i++ {
		ret, err := d.VM.CallFrame(i)
		if err != nil {
			break
		}
		d.Printf("  #%d  return to word %d\n", i+1, ret)
	}
	return nil
}

// cmdSet writes an Int into a register: "set $3 = 42".
func (d *Debugger) cmdSet(args []string) error {
	if len(args) < 3 || args[1] != "=" {
		return fmt.Errorf("usage: set $<register> = <int>")
	}
	target := args[0]
	if !strings.HasPrefix(target, "$") {
		return fmt.Errorf("usage: set $<register> = <int>")
	}
	idx, err := strconv.Atoi(target[1:])
	if err != nil || idx < 0 || idx >= vm.NumRegisters {
		return fmt.Errorf("invalid register: %s", target)
	}
	n, err := strconv.ParseInt(args[2], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid value: %s", args[2])
	}
	if err := d.VM.Registers.Set(idx, vm.NewInt(int32(n))); err != nil {
		return err
	}
	d.Printf("%s set to %d\n", target, n)
	return nil
}

func (d *Debugger) cmdReset(args []string) error {
	d.VM.Reset()
	d.Println("VM reset")
	return nil
}

func (d *Debugger) cmdHelp(args []string) error {
	d.Println("CursedVM debugger commands:")
	d.Println()
	d.Println("  run (r)              - reset and start execution")
	d.Println("  continue (c)         - resume execution")
	d.Println("  step (s, si)         - execute a single instruction")
	d.Println("  next (n)             - step over a call instruction")
	d.Println("  break (b) <addr>     - set a breakpoint")
	d.Println("  tbreak (tb) <addr>   - set a temporary breakpoint")
	d.Println("  delete (d) [id]      - delete breakpoint(s)")
	d.Println("  enable/disable <id>  - toggle a breakpoint")
	d.Println("  print (p) $<reg>     - show a register's Value")
	d.Println("  info (i) <what>      - registers, stack, callstack, breakpoints")
	d.Println("  backtrace (bt)       - show the call stack")
	d.Println("  set $<reg> = <int>   - write a register")
	d.Println("  history [verb]       - show command history, optionally filtered")
	d.Println("  reset                - reset the VM")
	d.Println("  help (h, ?)          - this text")
	return nil
}

// cmdHistory prints the session's recorded command lines, or, given a
// verb (e.g. "history break"), only the ones starting with that verb.
func (d *Debugger) cmdHistory(args []string) error {
	var cmds []string
	if len(args) > 0 {
		cmds = d.History.Search(args[0])
	} else {
		cmds = d.History.GetAll()
	}
	if len(cmds) == 0 {
		d.Println("(no matching history)")
		return nil
	}
	for i, cmd := range cmds {
		d.Printf("%4d  %s\n", i+1, cmd)
	}
	return nil
}

func formatValue(v vm.Value) string {
	switch v.Kind() {
	case vm.KindNull:
		return "null"
	case vm.KindInt:
		n, _ := v.Int()
		return fmt.Sprintf("int %d", n)
	case vm.KindFloat:
		f, _ := v.Float()
		return fmt.Sprintf("float %g", f)
	case vm.KindPtr:
		p, _ := v.AsPtr()
		return fmt.Sprintf("ptr %s:%d", p.Region, p.Offset)
	case vm.KindExt:
		h, _ := v.Ext()
		return fmt.Sprintf("ext %v", h)
	default:
		return "?"
	}
}
