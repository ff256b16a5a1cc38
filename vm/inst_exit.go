package vm

// execExit implements class 1 (exit): stop execution. If c0 bit 0 is set
// the exit value is the Value in register r0; otherwise it is
// imm_signed. Exit never triggers an IRS push regardless of S.
func execExit(m *VM, ins Instruction) (execResult, error) {
	var exitVal Value
	if ins.C0&1 != 0 {
		v, err := regValue(m, ins.R0)
		if err != nil {
			return execResult{}, err
		}
		exitVal = v
	} else {
		exitVal = NewInt(ins.ImmSigned)
	}
	m.ExitValue = exitVal
	m.Stopped = true
	return execResult{branched: true}, nil
}
