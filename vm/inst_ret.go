package vm

// execRet implements class 4 (ret): pop the call stack into PC and mark
// the step as having branched (so Step doesn't also advance PC). Honors S.
func execRet(m *VM, ins Instruction) (execResult, error) {
	offset, err := m.callStack.pop()
	if err != nil {
		return execResult{}, err
	}
	m.Registers.SetPC(Ptr{Region: RegionWord, Offset: offset})
	return execResult{branched: true, pushIRS: ins.S}, nil
}
