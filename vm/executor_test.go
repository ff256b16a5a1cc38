package vm_test

import (
	"testing"

	"github.com/cursedvm/cursedvm/asm"
	"github.com/cursedvm/cursedvm/link"
	"github.com/cursedvm/cursedvm/vm"
)

// runSource assembles, links, and runs src on a fresh VM, returning its
// exit value. Any failure along the pipeline fails the test immediately:
// these tests exercise the whole toolchain, not one stage in isolation.
func runSource(t *testing.T, src string) (vm.Value, *vm.VM) {
	t.Helper()
	text, rodata, err := asm.Assemble("t.asm", src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	result, err := link.Link(text, rodata)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	m := vm.New(vm.WithWordMemSize(128))
	if err := m.LoadProgram(result.Words); err != nil {
		t.Fatalf("load: %v", err)
	}
	exit, err := m.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return exit, m
}

func TestExitImmediateStopsWithThatIntValue(t *testing.T) {
	exit, _ := runSource(t, "exit.i #7\n")
	n, ok := exit.Int()
	if !ok || n != 7 {
		t.Fatalf("exit value = %v, want Int 7", exit)
	}
}

func TestFloatDivisionProducesExactQuotient(t *testing.T) {
	exit, _ := runSource(t, `
cvt.float.i $3, #1
cvt.float.i $4, #2
div $5, $3, $4
exit.r $5
`)
	f, ok := exit.Float()
	if !ok || f != 0.5 {
		t.Fatalf("exit value = %v, want Float 0.5", exit)
	}
}

// Instruction handlers build their Faults with no PC (they have no cheap
// access to it); Step must stamp the faulting word's offset on before
// returning, so a fault raised deep inside a handler still reports where
// it happened.
func TestDivisionByZeroFaultReportsFaultingPC(t *testing.T) {
	text, _, err := asm.Assemble("t.asm", `
cvt.int.i $3, #1
cvt.int.i $4, #0
div $5, $3, $4
`)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	result, err := link.Link(text)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	m := vm.New(vm.WithWordMemSize(128))
	if err := m.LoadProgram(result.Words); err != nil {
		t.Fatalf("load: %v", err)
	}
	_, runErr := m.Run()
	fault, ok := runErr.(*vm.Fault)
	if !ok {
		t.Fatalf("run error = %v (%T), want *vm.Fault", runErr, runErr)
	}
	if fault.Kind != vm.DomainError {
		t.Fatalf("fault kind = %v, want DomainError", fault.Kind)
	}
	if fault.PC != 2 {
		t.Fatalf("fault PC = %d, want 2 (the div instruction's word offset)", fault.PC)
	}
}

func TestConditionalBranchTakenWhenComparisonHolds(t *testing.T) {
	exit, _ := runSource(t, `
cvt.int.i $3, #4
c.eq.i $3, #4
bc.i ^taken
exit.i #0
taken: exit.i #1
`)
	n, ok := exit.Int()
	if !ok || n != 1 {
		t.Fatalf("exit value = %v, want Int 1 (branch taken)", exit)
	}
}

func TestConditionalBranchNotTakenWhenComparisonFails(t *testing.T) {
	exit, _ := runSource(t, `
cvt.int.i $3, #5
c.eq.i $3, #4
bc.i ^taken
exit.i #0
taken: exit.i #1
`)
	n, ok := exit.Int()
	if !ok || n != 0 {
		t.Fatalf("exit value = %v, want Int 0 (branch not taken)", exit)
	}
}

// TestHostCallRoundTripsThroughExt registers a fixed-arity host callable,
// loads it by key, invokes it across the data stack, and checks the
// wrapped result comes back as an Ext on the other side of call.r, per
// the host-callable duality described alongside the environment class.
func TestHostCallRoundTripsThroughExt(t *testing.T) {
	text, rodata, err := asm.Assemble("t.asm", `
cvt.int.i $4, #7
env.load $5, $4
push.i #3
push.i #4
call.r $5
pop.v $6
exit.r $6
`)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	result, err := link.Link(text, rodata)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	m := vm.New(vm.WithWordMemSize(128))
	m.SetEnvironment("7", &vm.HostFunc{
		Arity: 2,
		Fn: func(args []vm.Value) (any, error) {
			a, _ := args[0].Int()
			b, _ := args[1].Int()
			return a + b, nil
		},
	})
	if err := m.LoadProgram(result.Words); err != nil {
		t.Fatalf("load: %v", err)
	}
	exit, err := m.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if exit.Kind() != vm.KindExt {
		t.Fatalf("exit kind = %v, want Ext", exit.Kind())
	}
	handle, ok := exit.Ext()
	if !ok {
		t.Fatal("expected an Ext handle")
	}
	sum, ok := handle.(int32)
	if !ok || sum != 7 {
		t.Fatalf("host call result = %v, want int32 7", handle)
	}
}

// TestReprRoundTripPreservesRawBits exercises the reinterpret primitive
// through the cvt.*.repr mnemonics: reinterpreting a Ptr's raw bits as a
// Float and then immediately back as a Ptr must reproduce the original
// value exactly, since neither leg performs a value conversion (both
// legs name the same source and destination type).
func TestReprRoundTripPreservesRawBits(t *testing.T) {
	exit, m := func() (vm.Value, *vm.VM) {
		text, rodata, err := asm.Assemble("t.asm", `
cvt.float.repr $5, @float, $4
cvt.ptr.repr $6, @ptr, $5
exit.r $6
`)
		if err != nil {
			t.Fatalf("assemble: %v", err)
		}
		result, err := link.Link(text, rodata)
		if err != nil {
			t.Fatalf("link: %v", err)
		}
		m := vm.New(vm.WithWordMemSize(128))
		if err := m.LoadProgram(result.Words); err != nil {
			t.Fatalf("load: %v", err)
		}
		if err := m.Registers.Set(4, vm.NewPtr(vm.RegionWord, 100)); err != nil {
			t.Fatalf("seed r4: %v", err)
		}
		exit, err := m.Run()
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return exit, m
	}()
	_ = m
	p, ok := exit.AsPtr()
	if !ok || p.Region != vm.RegionWord || p.Offset != 100 {
		t.Fatalf("round-tripped value = %v, want Ptr(word, 100)", exit)
	}
}
