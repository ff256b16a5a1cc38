package vm

// execResult tells Step whether the handler already repositioned PC
// (branched) and whether this invocation's S-triggered IRS push should
// actually happen.
type execResult struct {
	branched bool
	pushIRS  bool
}

type handlerFunc func(m *VM, ins Instruction) (execResult, error)

var classHandlers = map[byte]handlerFunc{
	ClassNop:  execNop,
	ClassExit: execExit,
	ClassPush: execPush,
	ClassPop:  execPop,
	ClassRet:  execRet,
	ClassEnv:  execEnv,
	ClassB:    execBranch,
	ClassCmp:  execCmp,
	ClassCvt:  execCvt,
	ClassNum:  execNum,
	ClassMem:  execMem,
	ClassSys:  execSys,
}

// regValue reads register idx through the register file's Get, so
// IPOP/IPTR/POP's pop-on-read side effects apply.
func regValue(m *VM, idx byte) (Value, error) {
	return m.Registers.Get(int(idx))
}
