package vm

// NumRegisters is the size of the register file, for embedders that want
// to enumerate every slot (e.g. a debugger's register dump).
const NumRegisters = numRegisters

// PeekRegister reads register i without triggering IPOP/IPTR/POP's
// pop-on-read side effect. For diagnostics only.
func (m *VM) PeekRegister(i int) Value {
	return m.Registers.Peek(i)
}

// CallDepth returns the number of return addresses currently on the call
// stack.
func (m *VM) CallDepth() int {
	return int(m.callStack.csp)
}

// CallFrame reads the return address at the given depth below the top of
// the call stack (0 is the most recently pushed). It never pops.
func (m *VM) CallFrame(depth int) (uint32, error) {
	if depth < 0 || uint32(depth) >= m.callStack.csp {
		return 0, &Fault{Kind: BoundsError, Message: "call stack frame index out of range"}
	}
	word, err := m.callStack.region.Read(m.callStack.csp - 1 - uint32(depth))
	if err != nil {
		return 0, err
	}
	return uint32(word), nil
}

// DataStackDepth returns the number of Values currently on the data
// stack.
func (m *VM) DataStackDepth() int {
	sp := m.Registers.Peek(RegSP)
	p, ok := sp.AsPtr()
	if !ok {
		return 0
	}
	return int(p.Offset)
}

// DataStackPeek reads the Value at the given depth below the top of the
// data stack (0 is the most recently pushed) without popping.
func (m *VM) DataStackPeek(depth int) (Value, error) {
	sp := m.Registers.Peek(RegSP)
	p, ok := sp.AsPtr()
	if !ok {
		return Value{}, &Fault{Kind: TypeError, Message: "SP does not hold a Ptr"}
	}
	if depth < 0 || uint32(depth) >= p.Offset {
		return Value{}, &Fault{Kind: BoundsError, Message: "data stack frame index out of range"}
	}
	return m.DataStack.region.Read(p.Offset - 1 - uint32(depth))
}
