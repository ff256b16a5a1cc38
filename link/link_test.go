package link_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/cursedvm/cursedvm/asm"
	"github.com/cursedvm/cursedvm/link"
	"github.com/cursedvm/cursedvm/vm"
)

func assembleOne(t *testing.T, src string) (*asm.Object, *asm.Object) {
	t.Helper()
	text, rodata, err := asm.Assemble("t.asm", src)
	require.NoError(t, err)
	return text, rodata
}

func TestLinkConcatenatesInArgumentOrder(t *testing.T) {
	text, rodata := assembleOne(t, `exit.i #7`)
	res, err := link.Link(text, rodata)
	require.NoError(t, err)
	require.Equal(t, text.Words, res.Words[:len(text.Words)])
}

// TestLinkRelativeBranchLow16Bits pins spec §8 scenario 5: assembling
// `start: cvt.int.i $3, #1; b.i ^start` and linking must leave the
// branch word's low 16 bits equal to -1.
func TestLinkRelativeBranchLow16Bits(t *testing.T) {
	text, rodata := assembleOne(t, "start: cvt.int.i $3, #1\nb.i ^start")
	res, err := link.Link(text, rodata)
	require.NoError(t, err)
	require.Len(t, res.Words, 2)

	branch := res.Words[1]
	imm := int32(int16(uint16(branch & 0xFFFF)))
	require.Equal(t, int32(-1), imm)
}

func TestLinkAbsoluteRelocationResolvesToTargetAddress(t *testing.T) {
	text, rodata := assembleOne(t, "cvt.ptr.i $3, &target\ntarget: exit.i #0")
	res, err := link.Link(text, rodata)
	require.NoError(t, err)

	word := res.Words[0]
	require.Equal(t, uint32(1), word&0xFFFF)
	require.Equal(t, uint32(1), res.Labels["target"])
}

func TestLinkMergesTwoObjectsReoffsettingLabels(t *testing.T) {
	textA, _, err := asm.Assemble("a.asm", "entry: b.i ^loop\nloop: exit.i #0")
	require.NoError(t, err)
	textB, _, err := asm.Assemble("b.asm", "second: exit.i #1")
	require.NoError(t, err)

	res, err := link.Link(textA, textB)
	require.NoError(t, err)
	require.Equal(t, uint32(2), res.Labels["second"])
	require.Len(t, res.Words, 3)
}

// TestLinkMergedLabelMapMatchesExpected compares the full resolved
// address-space label map structurally, since a plain require.Equal
// hides which individual symbol regressed in a map this shape.
func TestLinkMergedLabelMapMatchesExpected(t *testing.T) {
	textA, _, err := asm.Assemble("a.asm", "entry: b.i ^loop\nloop: exit.i #0")
	require.NoError(t, err)
	textB, _, err := asm.Assemble("b.asm", "second: exit.i #1")
	require.NoError(t, err)

	res, err := link.Link(textA, textB)
	require.NoError(t, err)

	want := map[string]uint32{
		"entry":  0,
		"loop":   1,
		"second": 2,
	}
	if diff := cmp.Diff(want, res.Labels); diff != "" {
		t.Fatalf("linked label map mismatch (-want +got):\n%s", diff)
	}
}

func TestLinkDuplicateLabelIsFatal(t *testing.T) {
	textA, _, err := asm.Assemble("a.asm", "dup: exit.i #0")
	require.NoError(t, err)
	textB, _, err := asm.Assemble("b.asm", "dup: exit.i #1")
	require.NoError(t, err)

	_, err = link.Link(textA, textB)
	require.Error(t, err)
}

func TestLinkUndefinedLabelIsFatal(t *testing.T) {
	text, rodata := assembleOne(t, "b.i ^nowhere")
	_, err := link.Link(text, rodata)
	require.Error(t, err)
}

// TestLinkedProgramRunsOnVM exercises the full pipeline end to end:
// assemble, link, load, run (spec §8 scenario 2).
func TestLinkedProgramRunsOnVM(t *testing.T) {
	src := "cvt.int.i $3, #2\ncvt.int.i $4, #3\nadd $5, $3, $4\nexit.r $5"
	text, rodata := assembleOne(t, src)
	res, err := link.Link(text, rodata)
	require.NoError(t, err)

	m := vm.New()
	require.NoError(t, m.LoadProgram(res.Words))
	exitVal, err := m.Run()
	require.NoError(t, err)
	got, ok := exitVal.Int()
	require.True(t, ok)
	require.Equal(t, int32(5), got)
}
