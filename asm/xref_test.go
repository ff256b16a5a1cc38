package asm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cursedvm/cursedvm/asm"
)

func TestXRefReportsDefinitionSiteAndReferenceCount(t *testing.T) {
	text, rodata, err := asm.Assemble("t.asm", `
b.i ^loop
loop: exit.i #0
`)
	require.NoError(t, err)

	syms := asm.XRef(text, rodata)
	loop, ok := syms["loop"]
	require.True(t, ok)
	require.Equal(t, "text", loop.DefinedIn)
	require.EqualValues(t, 1, loop.DefinedAt)
	require.Len(t, loop.References, 1)
	require.Equal(t, asm.RelocRelative, loop.References[0].Kind)
}

func TestXRefUndefinedListsReferencedButNeverDefinedSymbols(t *testing.T) {
	text, rodata, err := asm.Assemble("t.asm", "b.i ^nowhere\n")
	require.NoError(t, err)

	syms := asm.XRef(text, rodata)
	require.Equal(t, []string{"nowhere"}, asm.Undefined(syms))
	require.Empty(t, asm.Unused(syms))
}

func TestXRefUnusedListsDefinedButNeverReferencedSymbols(t *testing.T) {
	text, rodata, err := asm.Assemble("t.asm", "dead: exit.i #0\n")
	require.NoError(t, err)

	syms := asm.XRef(text, rodata)
	require.Equal(t, []string{"dead"}, asm.Unused(syms))
	require.Empty(t, asm.Undefined(syms))
}

func TestXRefReportIncludesEverySymbolName(t *testing.T) {
	text, rodata, err := asm.Assemble("t.asm", "loop: b.i ^loop\n")
	require.NoError(t, err)

	report := asm.Report(asm.XRef(text, rodata))
	require.Contains(t, report, "loop")
	require.Contains(t, report, "referenced: 1 time(s)")
}
