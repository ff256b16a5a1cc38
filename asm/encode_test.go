package asm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursedvm/cursedvm/asm"
	"github.com/cursedvm/cursedvm/vm"
)

func TestAssembleExitImmediateEncodesClassAndImmediate(t *testing.T) {
	text, rodata, err := asm.Assemble("t.asm", "exit.i #7\n")
	require.NoError(t, err)
	require.Empty(t, rodata.Words)
	require.Len(t, text.Words, 1)

	ins := vm.Decode(text.Words[0])
	require.EqualValues(t, vm.ClassExit, ins.Class)
	require.EqualValues(t, 0, ins.C0)
	require.EqualValues(t, 7, ins.ImmSigned)
}

func TestAssembleLabelDefinesOffsetAtNextInstruction(t *testing.T) {
	text, _, err := asm.Assemble("t.asm", `
exit.i #0
here: exit.i #1
`)
	require.NoError(t, err)
	require.Equal(t, uint32(1), text.Labels["here"])
}

func TestAssembleRelativeBranchRecordsARelocation(t *testing.T) {
	text, _, err := asm.Assemble("t.asm", `
b.i ^there
there: exit.i #0
`)
	require.NoError(t, err)
	require.Len(t, text.Relocs, 1)
	require.Equal(t, "there", text.Relocs[0].Symbol)
	require.Equal(t, asm.RelocRelative, text.Relocs[0].Kind)
	require.EqualValues(t, 0, text.Relocs[0].Site)
}

func TestAssembleAbsoluteCallRecordsAnAbsoluteRelocation(t *testing.T) {
	text, _, err := asm.Assemble("t.asm", `
call.i ^callee
ret
callee: ret
`)
	require.NoError(t, err)
	require.Len(t, text.Relocs, 1)
	require.Equal(t, asm.RelocAbsolute, text.Relocs[0].Kind)
}

func TestAssembleStringLiteralHoistsIntoRodataNulTerminatedAndPadded(t *testing.T) {
	text, rodata, err := asm.Assemble("t.asm", `cvt.ptr.i $3, "hi"`+"\n")
	require.NoError(t, err)
	require.Len(t, text.Relocs, 1)
	require.Equal(t, asm.RelocAbsolute, text.Relocs[0].Kind)

	// "hi" is 2 bytes, +1 NUL = 3, padded up to the next 4-word boundary.
	require.Len(t, rodata.Words, 4)
	require.EqualValues(t, 'h', rodata.Words[0])
	require.EqualValues(t, 'i', rodata.Words[1])
	require.EqualValues(t, 0, rodata.Words[2])
	require.EqualValues(t, 0, rodata.Words[3])
}

func TestAssembleFloatDirectiveEncodesIEEE754Bits(t *testing.T) {
	_, rodata, err := asm.Assemble("t.asm", ".rodata\n.float F#1.5\n")
	require.NoError(t, err)
	require.Len(t, rodata.Words, 1)
	require.EqualValues(t, 0x3FC00000, rodata.Words[0])
}

func TestAssembleIntDirectiveEmitsRawWord(t *testing.T) {
	_, rodata, err := asm.Assemble("t.asm", ".rodata\n.int -1, 42\n")
	require.NoError(t, err)
	require.Len(t, rodata.Words, 2)
	require.EqualValues(t, 0xFFFFFFFF, rodata.Words[0])
	require.EqualValues(t, 42, rodata.Words[1])
}

func TestAssembleIPushFoldsIntoPrecedingPushWord(t *testing.T) {
	text, _, err := asm.Assemble("t.asm", "push.r $3\nipush #9\n")
	require.NoError(t, err)
	require.Len(t, text.Words, 1)

	ins := vm.Decode(text.Words[0])
	require.EqualValues(t, vm.ClassPush, ins.Class)
	require.True(t, ins.S, "ipush must set S on the folded word")
	require.EqualValues(t, 9, ins.ImmSigned)
}

func TestAssembleIPushWithNoPrecedingEligibleInstructionIsAnError(t *testing.T) {
	_, _, err := asm.Assemble("t.asm", "exit.i #0\nipush #9\n")
	require.Error(t, err)
}

// TestSubstrateBitsCarryRotatedFromThePreviousWord pins the load-bearing
// quirk described alongside wordBuilder: every bit position a mnemonic's
// encoder leaves unbound is filled from the previous emitted word's bits,
// rotated left by one, rather than zeroed. ret leaves every field but
// class unbound, so its word other than the class nibble should equal
// the first word's bits rotated left by one.
func TestSubstrateBitsCarryRotatedFromThePreviousWord(t *testing.T) {
	text, _, err := asm.Assemble("t.asm", "push.i #0x1234\nret\n")
	require.NoError(t, err)
	require.Len(t, text.Words, 2)

	first := text.Words[0]
	second := text.Words[1]

	const classMask = uint32(0xF) << 28
	rotated := (first<<1 | first>>31)
	require.Equal(t, rotated&^classMask, second&^classMask,
		"ret's unbound bits should be the previous word rotated left by one")
}

func TestAssembleUnrecognizedMnemonicIsAnError(t *testing.T) {
	_, _, err := asm.Assemble("t.asm", "bogus.mnemonic $1\n")
	require.Error(t, err)
	var aerr *asm.Error
	require.ErrorAs(t, err, &aerr)
}

func TestAssembleDuplicateLabelIsAnError(t *testing.T) {
	_, _, err := asm.Assemble("t.asm", "again: nop\nagain: nop\n")
	require.Error(t, err)
}

func TestAssembleSimpleDefineSubstitutesInPlace(t *testing.T) {
	text, _, err := asm.Assemble("t.asm", "DEFINE FIVE #5\nexit.i [FIVE]\n")
	require.NoError(t, err)
	require.Len(t, text.Words, 1)

	ins := vm.Decode(text.Words[0])
	require.EqualValues(t, 5, ins.ImmSigned)
}

// DEFINEX's parameterized `[tag] a b c` form (spec.md:127) must expand
// over each line's raw text before that text is split into Head/Args.
// Tokenizing first would split the tag from its trailing parameter words
// before expansion ever sees them together.
func TestAssembleDefinexParameterizedMacroExpandsBeforeTokenizing(t *testing.T) {
	text, _, err := asm.Assemble("t.asm", "DEFINEX (dup;?reg) push.r ?reg\n[dup] $3\n")
	require.NoError(t, err)
	require.Len(t, text.Words, 1)

	ins := vm.Decode(text.Words[0])
	require.EqualValues(t, vm.ClassPush, ins.Class)
	require.EqualValues(t, 1, ins.C0)
	require.EqualValues(t, 3, ins.R0)
}

func TestAssembleDefinexMacroWithMultipleParametersSubstitutesEachByPosition(t *testing.T) {
	text, _, err := asm.Assemble("t.asm", "DEFINEX (mov3;?a;?b;?c) add ?a, ?b, ?c\n[mov3] $3 $4 $5\n")
	require.NoError(t, err)
	require.Len(t, text.Words, 1)

	ins := vm.Decode(text.Words[0])
	require.EqualValues(t, vm.ClassNum, ins.Class)
	require.EqualValues(t, 3, ins.R0)
	require.EqualValues(t, 4, ins.R1)
	require.EqualValues(t, 5, ins.R2)
}

func TestAssembleDefinexMacroMayBeDeclaredAfterItsFirstUseSite(t *testing.T) {
	text1, _, err := asm.Assemble("t.asm", "[dup] $3\nDEFINEX (dup;?reg) push.r ?reg\n")
	require.NoError(t, err)

	text2, _, err := asm.Assemble("t.asm", "DEFINEX (dup;?reg) push.r ?reg\n[dup] $3\n")
	require.NoError(t, err)

	require.Equal(t, text2.Words, text1.Words)
}
