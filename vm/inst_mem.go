package vm

// mem class c0 bit assignment.
//
//	c0 bit 2: 0 = read, 1 = write
//	c0 bits 1..0 (read only): destination reinterpretation type T,
//	  using the same numbering as cvt's destination codes (1=int,
//	  2=float, 3=ptr; 0 is reserved and fatal, matching "null/ext are
//	  fatal in read").
const memOpWrite = 1 << 2

// execMem implements class 10 (mem). The address is register r1 (a Ptr)
// offset by register r2 (Int or Ptr). mem never triggers an S/IRS push.
func execMem(m *VM, ins Instruction) (execResult, error) {
	base, err := regValue(m, ins.R1)
	if err != nil {
		return execResult{}, err
	}
	p, ok := base.AsPtr()
	if !ok {
		return execResult{}, &Fault{Kind: TypeError, Message: "mem: r1 must hold a Ptr"}
	}

	delta, err := memDelta(m, ins.R2)
	if err != nil {
		return execResult{}, err
	}
	addr := uint32(int64(p.Offset) + int64(delta))

	if ins.C0&memOpWrite != 0 {
		val, err := regValue(m, ins.R0)
		if err != nil {
			return execResult{}, err
		}
		return execResult{}, execMemWrite(m, p.Region, addr, val)
	}
	return execResult{}, execMemRead(m, ins, p.Region, addr, ins.C0&0x3)
}

func memDelta(m *VM, idx byte) (int32, error) {
	v, err := regValue(m, idx)
	if err != nil {
		return 0, err
	}
	switch v.Kind() {
	case KindInt:
		n, _ := v.Int()
		return n, nil
	case KindPtr:
		p, _ := v.AsPtr()
		return int32(p.Offset), nil
	default:
		return 0, &Fault{Kind: TypeError, Message: "mem: offset operand must be Int or Ptr"}
	}
}

// execMemRead loads from region:addr into r0. Object-region cells carry
// their own tag, so T is ignored there; word-region cells are untagged
// ints reinterpreted as T.
func execMemRead(m *VM, ins Instruction, region RegionID, addr uint32, t byte) error {
	if objRegion, ok := m.objectRegionFor(region); ok {
		v, err := objRegion.Read(addr)
		if err != nil {
			return err
		}
		return m.Registers.Set(int(ins.R0), v)
	}
	wordRegion, ok := m.wordRegionFor(region)
	if !ok {
		return &Fault{Kind: TypeError, Message: "mem: pointer addresses an unreadable region"}
	}
	kind, err := memReadKind(t)
	if err != nil {
		return err
	}
	v, err := wordRegion.ReadValue(addr, kind)
	if err != nil {
		return err
	}
	return m.Registers.Set(int(ins.R0), v)
}

func memReadKind(t byte) (Kind, error) {
	switch t {
	case cvtDestInt:
		return KindInt, nil
	case cvtDestFloat:
		return KindFloat, nil
	case cvtDestPtr:
		return KindPtr, nil
	default:
		return 0, &Fault{Kind: DecodeError, Message: "mem: null/ext is not a valid read type"}
	}
}

// execMemWrite stores v at region:addr. Object regions accept any Value;
// word regions require Int/Float/Ptr (their raw view is stored).
func execMemWrite(m *VM, region RegionID, addr uint32, v Value) error {
	if objRegion, ok := m.objectRegionFor(region); ok {
		return objRegion.Write(addr, v)
	}
	wordRegion, ok := m.wordRegionFor(region)
	if !ok {
		return &Fault{Kind: TypeError, Message: "mem: pointer addresses an unwritable region"}
	}
	return wordRegion.WriteValue(addr, v)
}

func (m *VM) wordRegionFor(id RegionID) (*WordRegion, bool) {
	switch id {
	case RegionWord:
		return m.WordMem, true
	case RegionCallStack:
		return m.callStack.region, true
	case RegionIRS:
		return m.IRS.region, true
	default:
		return nil, false
	}
}

func (m *VM) objectRegionFor(id RegionID) (*ObjectRegion, bool) {
	switch id {
	case RegionObject:
		return m.ObjectMem, true
	case RegionDataStack:
		return m.DataStack.region, true
	default:
		return nil, false
	}
}
