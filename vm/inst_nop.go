package vm

// execNop implements class 0 (nop): no operation. If S is set, imm_signed
// is pushed to the IRS.
func execNop(m *VM, ins Instruction) (execResult, error) {
	return execResult{pushIRS: ins.S}, nil
}
