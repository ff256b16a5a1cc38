package vm

import (
	"io"
	"os"
)

// Sizes of the VM's backing stores. WordMemSize is fixed by §3 ("the
// single large addressable region of capacity 2^24 words"); the others
// are the object-memory and stack capacities from §3. Only word memory's
// size can be changed (WithWordMemSize); the other regions always use
// these constants.
const (
	WordMemSize     = 1 << 24
	ObjectMemSize   = 1 << 16
	DataStackSize   = 1 << 16
	CallStackSize   = 1 << 16
	IRSSize         = 1 << 16
)

// Clock is the VM's external cycle-accounting collaborator (§1's "clock
// source for cycle accounting"). Tick is called once per executed
// instruction and its return value becomes VM.Cycles.
type Clock interface {
	Tick() uint64
}

// monotonicClock is the default Clock: a plain incrementing counter, no
// wall-clock dependency.
type monotonicClock struct{ n uint64 }

func (c *monotonicClock) Tick() uint64 {
	c.n++
	return c.n
}

// VM is the complete CursedVM machine: register file, four memory
// regions, environment, and the bookkeeping needed to run or single-step
// a loaded program.
type VM struct {
	Registers *RegisterFile

	WordMem   *WordRegion
	ObjectMem *ObjectRegion
	DataStack *dataStack
	IRS       *irsStack
	callStack *callStack

	Env *Environment

	Clock  Clock
	Cycles uint64
	Out    io.Writer

	Stopped   bool
	ExitValue Value

	// Breakpoint is set by the sys class's high-subclass print variant.
	Breakpoint bool

	// Trace and Stats are optional diagnostic collaborators; nil unless
	// attached (see internal/trace and internal/stats).
	Trace TraceSink
	Stats StatsSink
}

// TraceSink receives one record per executed instruction when attached.
type TraceSink interface {
	Record(pc uint32, ins Instruction)
}

// StatsSink receives one count per executed instruction class when
// attached.
type StatsSink interface {
	Count(class byte)
}

// New constructs a VM with default region sizes, an empty environment, a
// monotonic clock, and stdout as its output sink. Use the With* options
// to override the word memory size, the clock, or the output sink.
func New(opts ...Option) *VM {
	m := &VM{
		Env:   NewEnvironment(),
		Clock: &monotonicClock{},
		Out:   os.Stdout,
	}
	m.Registers = newRegisterFile(m)
	m.WordMem = newWordRegion(RegionWord, WordMemSize)
	m.ObjectMem = newObjectRegion(RegionObject, ObjectMemSize)
	dsRegion := newObjectRegion(RegionDataStack, DataStackSize)
	m.DataStack = &dataStack{region: dsRegion, vm: m}
	irsRegion := newWordRegion(RegionIRS, IRSSize)
	m.IRS = &irsStack{region: irsRegion, vm: m}
	m.callStack = &callStack{region: newWordRegion(RegionCallStack, CallStackSize)}

	for _, opt := range opts {
		opt(m)
	}

	m.Registers.reset()
	return m
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithOutput overrides the VM's debug/trace byte sink.
func WithOutput(w io.Writer) Option {
	return func(m *VM) { m.Out = w }
}

// WithClock overrides the VM's cycle-accounting clock source.
func WithClock(c Clock) Option {
	return func(m *VM) { m.Clock = c }
}

// WithWordMemSize overrides word memory's capacity (words). Intended for
// tests that don't want to allocate the full 2^24-word default.
func WithWordMemSize(words uint32) Option {
	return func(m *VM) { m.WordMem = newWordRegion(RegionWord, words) }
}

// SetEnvironment registers a host binding under key.
func (m *VM) SetEnvironment(key string, value any) { m.Env.Set(key, value) }

// GetEnvironment looks up a host binding.
func (m *VM) GetEnvironment(key string) (any, bool) { return m.Env.Get(key) }

// DeclareHostFunction registers a fixed-arity host callable.
func (m *VM) DeclareHostFunction(name string, arity int, fn func(args []Value) (any, error)) {
	m.Env.DeclareHostFunction(name, arity, fn)
}

// Push pushes v onto the data stack, for embedder bootstrap use.
func (m *VM) Push(v Value) error { return m.DataStack.pushValue(v) }

// Pop pops a Value off the data stack, for embedder bootstrap use.
func (m *VM) Pop() (Value, error) { return m.DataStack.popValue() }

// PushIRS pushes a raw 32-bit word onto the Immediate Reuse Stack, for
// embedder bootstrap use (mirrors what an S-flagged instruction does).
func (m *VM) PushIRS(word int32) error { return m.IRS.pushWord(word) }

// PopIRS pops a raw 32-bit word off the Immediate Reuse Stack, for
// embedder bootstrap use (mirrors what IPOP/IPTR do on read).
func (m *VM) PopIRS() (int32, error) { return m.IRS.popWord() }

// Reset zeroes all regions and re-initializes PC/SP/IRSP, preserving
// registers P0 and P1. The word memory loaded program, if any, is erased;
// call LoadProgram again to restore it.
func (m *VM) Reset() {
	m.WordMem.reset()
	m.ObjectMem.reset()
	m.DataStack.region.reset()
	m.IRS.region.reset()
	m.callStack.reset()
	m.Registers.reset()
	m.Stopped = false
	m.Breakpoint = false
	m.ExitValue = Value{}
	m.Cycles = 0
}

// LoadProgram resets the VM and copies words into word memory starting at
// offset 0.
func (m *VM) LoadProgram(words []uint32) error {
	m.Reset()
	if uint32(len(words)) > m.WordMem.len() {
		return &Fault{Kind: BoundsError, Message: "program larger than word memory"}
	}
	for i, w := range words {
		if err := m.WordMem.Write(uint32(i), int32(w)); err != nil {
			return err
		}
	}
	return nil
}

// Run steps the VM until Stopped is set by exit or breakpoint, then
// returns the exit value.
func (m *VM) Run() (Value, error) {
	for !m.Stopped {
		if err := m.Step(); err != nil {
			return Value{}, err
		}
	}
	return m.ExitValue, nil
}

// Step decodes and dispatches exactly one instruction.
func (m *VM) Step() error {
	if m.Stopped {
		return nil
	}
	pc, err := m.Registers.PC()
	if err != nil {
		return err
	}
	if pc.Region != RegionWord {
		return newFault(TypeError, pc.Offset, "PC does not address word memory")
	}
	raw, err := m.WordMem.Read(pc.Offset)
	if err != nil {
		return err
	}
	ins := Decode(uint32(raw))

	if classReserved(ins.Class) {
		return newFault(DecodeError, pc.Offset, "reserved instruction class")
	}
	handler, ok := classHandlers[ins.Class]
	if !ok {
		return newFault(DecodeError, pc.Offset, "unknown instruction class")
	}

	if m.Trace != nil {
		m.Trace.Record(pc.Offset, ins)
	}
	if m.Stats != nil {
		m.Stats.Count(ins.Class)
	}

	res, err := handler(m, ins)
	if err != nil {
		// Instruction handlers build their Faults without a PC (most have
		// no cheap access to it); stamp the faulting instruction's offset
		// on here, at the single chokepoint that does, for post-mortem
		// inspection per §7.
		if f, ok := err.(*Fault); ok && f.PC == 0 {
			f.PC = pc.Offset
		}
		return err
	}
	if res.pushIRS {
		if err := m.IRS.pushWord(ins.ImmSigned); err != nil {
			return err
		}
	}
	if !res.branched {
		m.Registers.SetPC(Ptr{Region: RegionWord, Offset: pc.Offset + 1})
	}
	m.Cycles = m.Clock.Tick()
	return nil
}
