package vm

// execPush implements class 2 (push). If c0 bit 0 is set, the Value in
// register r0 is pushed onto the data stack (S, if set, additionally
// IRS-pushes imm_signed). Otherwise a fresh Int built from imm_signed is
// pushed and S has no effect.
func execPush(m *VM, ins Instruction) (execResult, error) {
	if ins.C0&1 != 0 {
		v, err := regValue(m, ins.R0)
		if err != nil {
			return execResult{}, err
		}
		if err := m.DataStack.pushValue(v); err != nil {
			return execResult{}, err
		}
		return execResult{pushIRS: ins.S}, nil
	}
	if err := m.DataStack.pushValue(NewInt(ins.ImmSigned)); err != nil {
		return execResult{}, err
	}
	return execResult{}, nil
}
