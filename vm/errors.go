package vm

import "fmt"

// FaultKind categorizes a VM fault. Every fault aborts the current step;
// none of them unwind prior register or memory state.
type FaultKind int

const (
	// DecodeError covers reserved classes/subclasses and illegal bit
	// combinations discovered while decoding or routing an instruction.
	DecodeError FaultKind = iota
	// TypeError covers an operand type disallowed for the operation
	// attempted (e.g. a bitwise op fed a Float).
	TypeError
	// BoundsError covers memory or stack access outside its region.
	BoundsError
	// DomainError covers numeric domain violations: division by zero,
	// unconvertible environment keys, non-finite coercions.
	DomainError
)

func (k FaultKind) String() string {
	switch k {
	case DecodeError:
		return "DecodeError"
	case TypeError:
		return "TypeError"
	case BoundsError:
		return "BoundsError"
	case DomainError:
		return "DomainError"
	default:
		return "UnknownFault"
	}
}

// Fault is the single error kind a VM step can raise. It carries enough
// context for post-mortem inspection but never anything that would let a
// caller resume the faulted step.
type Fault struct {
	Kind    FaultKind
	Message string
	PC      uint32 // word offset of the faulting instruction, if known
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s at pc=%#x: %s", f.Kind, f.PC, f.Message)
}

func newFault(kind FaultKind, pc uint32, format string, args ...any) *Fault {
	return &Fault{Kind: kind, PC: pc, Message: fmt.Sprintf(format, args...)}
}
