package vm

// Register slot indices with defined side effects. All other slots are
// plain read/write storage.
const (
	RegZero  = 0  // always reads Int 0; writes are silently dropped
	RegComp  = 1  // comparison destination/source for immediate cmp
	RegPC    = 2  // must hold a Ptr into word memory
	RegP0    = 24 // preserved across Reset
	RegP1    = 25 // preserved across Reset
	RegIRSP  = 26 // must hold a Ptr into the IRS backing region
	RegIPOP  = 27 // read-only: each read pops a word from the IRS as Int
	RegIPTR  = 28 // read-only: each read pops a word from the IRS as Ptr
	RegSP    = 29 // must hold a Ptr into the data stack backing region
	RegPUSH  = 30 // write-only: each write pushes onto the data stack
	RegPOP   = 31 // read-only: each read pops from the data stack
	numRegisters = 32
)

// RegisterFile holds the VM's 32 Value slots and implements the
// side-effecting hooks on the designated indices, per §4 of the design:
// a small per-slot capability record rather than dynamic per-slot dispatch.
type RegisterFile struct {
	slots [numRegisters]Value
	vm    *VM
}

func newRegisterFile(vm *VM) *RegisterFile {
	rf := &RegisterFile{vm: vm}
	rf.slots[RegZero] = NewInt(0)
	return rf
}

// Get reads register i, triggering IPOP/IPTR's pop-on-read side effect.
func (rf *RegisterFile) Get(i int) (Value, error) {
	switch i {
	case RegZero:
		return NewInt(0), nil
	case RegIPOP:
		word, err := rf.vm.IRS.popWord()
		if err != nil {
			return Value{}, err
		}
		v := NewInt(word)
		rf.slots[RegIPOP] = v
		return v, nil
	case RegIPTR:
		word, err := rf.vm.IRS.popWord()
		if err != nil {
			return Value{}, err
		}
		v := NewPtr(RegionWord, uint32(word))
		rf.slots[RegIPTR] = v
		return v, nil
	case RegPOP:
		v, err := rf.vm.DataStack.popValue()
		if err != nil {
			return Value{}, err
		}
		rf.slots[RegPOP] = v
		return v, nil
	default:
		return rf.slots[i], nil
	}
}

// Set writes register i, triggering PUSH's push-on-write side effect and
// enforcing the fixed-purpose slots' type invariants.
func (rf *RegisterFile) Set(i int, v Value) error {
	switch i {
	case RegZero:
		return nil // silently dropped
	case RegIPOP, RegIPTR, RegPOP:
		return &Fault{Kind: TypeError, Message: "register is read-only"}
	case RegPUSH:
		if err := rf.vm.DataStack.pushValue(v); err != nil {
			return err
		}
		rf.slots[RegPUSH] = v
		return nil
	case RegPC:
		if p, ok := v.AsPtr(); !ok || p.Region != RegionWord {
			return &Fault{Kind: TypeError, Message: "PC must hold a Ptr into word memory"}
		}
		rf.slots[RegPC] = v
		return nil
	case RegIRSP:
		p, ok := v.AsPtr()
		if !ok || p.Region != RegionIRS {
			return &Fault{Kind: TypeError, Message: "IRSP must hold a Ptr into the IRS"}
		}
		rf.slots[RegIRSP] = v
		return nil
	case RegSP:
		p, ok := v.AsPtr()
		if !ok || p.Region != RegionDataStack {
			return &Fault{Kind: TypeError, Message: "SP must hold a Ptr into the data stack"}
		}
		rf.slots[RegSP] = v
		return nil
	default:
		rf.slots[i] = v
		return nil
	}
}

// Peek reads register i's stored slot directly, bypassing IPOP/IPTR/POP's
// pop-on-read side effect. Used by diagnostics that must not disturb VM
// state while printing it.
func (rf *RegisterFile) Peek(i int) Value {
	if i == RegZero {
		return NewInt(0)
	}
	return rf.slots[i]
}

// PC is a convenience accessor returning the current PC as a Ptr.
func (rf *RegisterFile) PC() (Ptr, error) {
	v, _ := rf.Get(RegPC)
	p, ok := v.AsPtr()
	if !ok {
		return Ptr{}, &Fault{Kind: TypeError, Message: "PC does not hold a Ptr"}
	}
	return p, nil
}

// SetPC overwrites PC directly, bypassing Set's generic dispatch (used by
// Step and by the branch/call/ret handlers, which always supply a Ptr).
func (rf *RegisterFile) SetPC(p Ptr) {
	rf.slots[RegPC] = NewPtr(RegionWord, p.Offset)
}

// reset clears all slots to Null except the two preserved general-purpose
// slots (P0, P1) and re-initializes PC, SP, and IRSP to offset 0 of their
// respective regions.
func (rf *RegisterFile) reset() {
	p0, p1 := rf.slots[RegP0], rf.slots[RegP1]
	for i := range rf.slots {
		rf.slots[i] = Null
	}
	rf.slots[RegZero] = NewInt(0)
	rf.slots[RegP0] = p0
	rf.slots[RegP1] = p1
	rf.slots[RegPC] = NewPtr(RegionWord, 0)
	rf.slots[RegIRSP] = NewPtr(RegionIRS, 0)
	rf.slots[RegSP] = NewPtr(RegionDataStack, 0)
}
