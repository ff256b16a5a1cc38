// Package link implements the CursedVM linker: concatenating the text and
// rodata Objects an assembly unit produces into the flat word stream the VM
// loads, per spec §4.4.
package link

import (
	"fmt"

	"github.com/cursedvm/cursedvm/asm"
)

// Error is the linker's single fault kind: missing label, duplicate
// label, or any malformed relocation discovered while resolving.
// Corresponds to spec §7's LinkError.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Result is a linked program: the flat word stream ready to load into
// word memory, plus the merged label table for symbolic debugging
// (spec §6's loader input, and the debugger's Symbols map).
type Result struct {
	Words  []uint32
	Labels map[string]uint32
}

// Link concatenates objs in argument order, re-offsetting and merging
// their label tables and relocation lists, then resolves every
// relocation in place. Duplicate labels across objects are fatal, as is
// a relocation whose target label is undefined anywhere in the
// concatenation.
func Link(objs ...*asm.Object) (*Result, error) {
	words := make([]uint32, 0)
	labels := make(map[string]uint32)
	type pending struct {
		site   uint32
		symbol string
		kind   asm.RelocKind
		pos    asm.Position
	}
	var relocs []pending

	for _, o := range objs {
		base := uint32(len(words))
		for name, off := range o.Labels {
			addr := base + off
			if _, exists := labels[name]; exists {
				return nil, newError("duplicate label %q", name)
			}
			labels[name] = addr
		}
		for _, r := range o.Relocs {
			relocs = append(relocs, pending{site: base + r.Site, symbol: r.Symbol, kind: r.Kind, pos: r.Pos})
		}
		words = append(words, o.Words...)
	}

	for _, r := range relocs {
		target, ok := labels[r.symbol]
		if !ok {
			return nil, newError("%s: undefined label %q", r.pos, r.symbol)
		}
		var fixup uint32
		if r.kind == asm.RelocRelative {
			fixup = target - r.site
		} else {
			fixup = target
		}
		words[r.site] = (words[r.site] &^ 0xFFFF) | (fixup & 0xFFFF)
	}

	return &Result{Words: words, Labels: labels}, nil
}
