package vm

// execPop implements class 3 (pop). The low two bits of c0 select the
// variant: 00 pops a Value off the data stack into r0; 01 pops a 32-bit
// IRS word into r0 as Int; 11 pops an IRS word into r0 as a Ptr into word
// memory. 10 is not assigned and is a DecodeError. All variants honor the
// S-flag IRS push.
func execPop(m *VM, ins Instruction) (execResult, error) {
	var v Value
	switch ins.C0 & 0x3 {
	case 0x0:
		popped, err := m.DataStack.popValue()
		if err != nil {
			return execResult{}, err
		}
		v = popped
	case 0x1:
		word, err := m.IRS.popWord()
		if err != nil {
			return execResult{}, err
		}
		v = NewInt(word)
	case 0x3:
		word, err := m.IRS.popWord()
		if err != nil {
			return execResult{}, err
		}
		v = NewPtr(RegionWord, uint32(word))
	default:
		return execResult{}, &Fault{Kind: DecodeError, Message: "pop: unassigned c0 subfunction"}
	}
	if err := m.Registers.Set(int(ins.R0), v); err != nil {
		return execResult{}, err
	}
	return execResult{pushIRS: ins.S}, nil
}
