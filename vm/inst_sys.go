package vm

import "fmt"

// sys class c0 bit assignment.
//
//	c0 bit 0: 0 = print register r0, 1 = print full VM state
//	c0 bit 2: high variant — also sets the breakpoint/stopped flag
const (
	sysPrintFull  = 1 << 0
	sysBreakpoint = 1 << 2
)

// execSys implements class 15 (sys). Output goes to the VM's configured
// byte sink. sys never triggers an S/IRS push.
func execSys(m *VM, ins Instruction) (execResult, error) {
	if ins.C0&sysPrintFull != 0 {
		m.printState()
	} else {
		v, err := regValue(m, ins.R0)
		if err != nil {
			return execResult{}, err
		}
		fmt.Fprintf(m.Out, "r%d = %s\n", ins.R0, formatValue(v))
	}

	if ins.C0&sysBreakpoint != 0 {
		m.Stopped = true
		m.Breakpoint = true
	}
	return execResult{}, nil
}

func formatValue(v Value) string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindInt:
		n, _ := v.Int()
		return fmt.Sprintf("int %d", n)
	case KindFloat:
		f, _ := v.Float()
		return fmt.Sprintf("float %g", f)
	case KindPtr:
		p, _ := v.AsPtr()
		return fmt.Sprintf("ptr %s:%d", p.Region, p.Offset)
	case KindExt:
		h, _ := v.Ext()
		return fmt.Sprintf("ext %v", h)
	default:
		return "?"
	}
}

// printState dumps all 32 registers, the top of the data stack, and a
// window of the call stack, without disturbing any side-effecting slot
// (it peeks rather than calling Get).
func (m *VM) printState() {
	fmt.Fprintln(m.Out, "-- registers --")
	for i := 0; i < numRegisters; i++ {
		fmt.Fprintf(m.Out, "r%-2d %s\n", i, formatValue(m.Registers.Peek(i)))
	}

	fmt.Fprintln(m.Out, "-- data stack --")
	sp := m.Registers.Peek(RegSP)
	if p, ok := sp.AsPtr(); ok && p.Offset > 0 {
		top, err := m.DataStack.region.Read(p.Offset - 1)
		if err == nil {
			fmt.Fprintf(m.Out, "top: %s\n", formatValue(top))
		}
	}

	fmt.Fprintln(m.Out, "-- call stack --")
	const window = 8
	csp := m.callStack.csp
	start := uint32(0)
	if csp > window {
		start = csp - window
	}
	for i := csp; i > start; i-- {
		word, err := m.callStack.region.Read(i - 1)
		if err != nil {
			break
		}
		fmt.Fprintf(m.Out, "[%d] %#x\n", i-1, uint32(word))
	}
}
