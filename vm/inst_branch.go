package vm

// b class c0/c1 bit assignment. The spec leaves exact bit positions to
// the implementation ("two orthogonal mode bits inside c0 ... plus a
// conditional bit inside c1"); this is CursedVM's fixed assignment.
//
//	c0 bit 0: 0 = branch, 1 = call
//	c0 bit 1: 0 = relative, 1 = absolute
//	c0 bit 2: 0 = immediate target (imm_signed), 1 = register target (r0)
//	c1 bit 0: 0 = unconditional, 1 = conditional on the comp register
const (
	bModeCall     = 1 << 0
	bModeAbsolute = 1 << 1
	bModeRegister = 1 << 2
	bModeCond     = 1 << 0
)

// execBranch implements class 6 (b): branch and call. b never triggers an
// S/IRS push.
func execBranch(m *VM, ins Instruction) (execResult, error) {
	isCall := ins.C0&bModeCall != 0
	isAbsolute := ins.C0&bModeAbsolute != 0
	isRegister := ins.C0&bModeRegister != 0
	isConditional := ins.C1&bModeCond != 0

	if isCall && !isAbsolute {
		return execResult{}, &Fault{Kind: DecodeError, Message: "relative call is illegal"}
	}

	if isConditional {
		compVal, err := regValue(m, RegComp)
		if err != nil {
			return execResult{}, err
		}
		n, ok := compVal.Int()
		if !ok {
			return execResult{}, &Fault{Kind: TypeError, Message: "conditional branch requires comp register to hold Int"}
		}
		if n == 0 {
			return execResult{}, nil // not taken: PC advances normally
		}
	}

	pc, err := m.Registers.PC()
	if err != nil {
		return execResult{}, err
	}
	pcSucc := pc.Offset + 1

	if isCall {
		return execCall(m, ins, isRegister, pcSucc)
	}
	return execPlainBranch(m, ins, isAbsolute, isRegister, pc)
}

func execPlainBranch(m *VM, ins Instruction, isAbsolute, isRegister bool, pc Ptr) (execResult, error) {
	if isAbsolute {
		var target Ptr
		if isRegister {
			v, err := regValue(m, ins.R0)
			if err != nil {
				return execResult{}, err
			}
			switch v.Kind() {
			case KindInt:
				n, _ := v.Int()
				target = Ptr{Region: RegionWord, Offset: uint32(n)}
			case KindPtr:
				p, _ := v.AsPtr()
				if p.Region != RegionWord {
					return execResult{}, &Fault{Kind: TypeError, Message: "absolute branch target must address word memory"}
				}
				target = p
			default:
				return execResult{}, &Fault{Kind: TypeError, Message: "absolute branch register target must be Int or Ptr"}
			}
		} else {
			target = Ptr{Region: RegionWord, Offset: uint32(ins.ImmSigned)}
		}
		m.Registers.SetPC(target)
		return execResult{branched: true}, nil
	}

	// Relative.
	var delta int32
	if isRegister {
		v, err := regValue(m, ins.R0)
		if err != nil {
			return execResult{}, err
		}
		n, ok := v.Int()
		if !ok {
			return execResult{}, &Fault{Kind: TypeError, Message: "relative branch register target must be Int"}
		}
		delta = n
	} else {
		delta = ins.ImmSigned
	}
	newOffset := uint32(int64(pc.Offset) + int64(delta))
	m.Registers.SetPC(Ptr{Region: RegionWord, Offset: newOffset})
	return execResult{branched: true}, nil
}

func execCall(m *VM, ins Instruction, isRegister bool, pcSucc uint32) (execResult, error) {
	if !isRegister {
		if err := m.callStack.push(pcSucc); err != nil {
			return execResult{}, err
		}
		m.Registers.SetPC(Ptr{Region: RegionWord, Offset: uint32(ins.ImmSigned)})
		return execResult{branched: true}, nil
	}

	v, err := regValue(m, ins.R0)
	if err != nil {
		return execResult{}, err
	}
	switch v.Kind() {
	case KindExt:
		return execExternalCall(m, v)
	case KindInt:
		n, _ := v.Int()
		if err := m.callStack.push(pcSucc); err != nil {
			return execResult{}, err
		}
		m.Registers.SetPC(Ptr{Region: RegionWord, Offset: uint32(n)})
		return execResult{branched: true}, nil
	case KindPtr:
		p, _ := v.AsPtr()
		if p.Region != RegionWord {
			return execResult{}, &Fault{Kind: TypeError, Message: "call target must address word memory"}
		}
		if err := m.callStack.push(pcSucc); err != nil {
			return execResult{}, err
		}
		m.Registers.SetPC(p)
		return execResult{branched: true}, nil
	default:
		return execResult{}, &Fault{Kind: TypeError, Message: "call register target must be Int, Ptr, or Ext"}
	}
}

// execExternalCall implements the two host-call shapes of §4.2. It never
// repositions PC: control simply continues at the next instruction once
// the host callable returns.
func execExternalCall(m *VM, handleVal Value) (execResult, error) {
	handle, _ := handleVal.Ext()

	var result any
	var err error
	switch fn := handle.(type) {
	case *HostFunc:
		args := make([]Value, fn.Arity)
		for i := 0; i < fn.Arity; i++ {
			args[i], err = m.DataStack.popValue()
			if err != nil {
				return execResult{}, err
			}
		}
		result, err = fn.Fn(args)
	case HostCallable:
		result, err = invokeOrdinaryCallable(m, fn)
	case func(args []any) (any, error):
		result, err = invokeOrdinaryCallable(m, fn)
	default:
		return execResult{}, &Fault{Kind: TypeError, Message: "Ext is not a callable host handle"}
	}
	if err != nil {
		return execResult{}, &Fault{Kind: DomainError, Message: "external call failed: " + err.Error()}
	}

	var out Value
	if result == nil {
		out = Null
	} else {
		out = NewExt(result)
	}
	if err := m.DataStack.pushValue(out); err != nil {
		return execResult{}, err
	}
	return execResult{}, nil
}

func invokeOrdinaryCallable(m *VM, fn func(args []any) (any, error)) (any, error) {
	countVal, err := m.DataStack.popValue()
	if err != nil {
		return nil, err
	}
	n, ok := countVal.Int()
	if !ok {
		return nil, &Fault{Kind: TypeError, Message: "ordinary call argument count must be Int"}
	}
	args := make([]any, n)
	for i := int32(0); i < n; i++ {
		v, err := m.DataStack.popValue()
		if err != nil {
			return nil, err
		}
		args[i], err = marshalScalar(m, v)
		if err != nil {
			return nil, err
		}
	}
	return fn(args)
}

func marshalScalar(m *VM, v Value) (any, error) {
	switch v.Kind() {
	case KindPtr:
		p, _ := v.AsPtr()
		return m.readCString(p)
	case KindInt:
		n, _ := v.Int()
		return n, nil
	case KindFloat:
		f, _ := v.Float()
		return f, nil
	case KindExt:
		h, _ := v.Ext()
		return h, nil
	default:
		return nil, nil
	}
}
