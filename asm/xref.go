package asm

import (
	"fmt"
	"sort"
	"strings"
)

// Symbol is one label's definition site plus every relocation that
// references it, across both the text and rodata Objects an assembly
// unit produces. Grounded on the teacher's tools/xref.go, retargeted
// from ARM's label/BL/LDR symbol model to CursedVM's text/rodata
// label+relocation model.
type Symbol struct {
	Name       string
	DefinedIn  string // "text", "rodata", or "" if never defined
	DefinedAt  uint32 // word offset within DefinedIn
	References []Reference
}

// Reference is one relocation site pointing at a Symbol.
type Reference struct {
	Object string // "text" or "rodata"
	Site   uint32 // word offset of the relocated instruction
	Kind   RelocKind
	Pos    Position
}

// XRef builds the cross-reference table for a text/rodata Object pair.
func XRef(text, rodata *Object) map[string]*Symbol {
	syms := make(map[string]*Symbol)

	lookup := func(name string) *Symbol {
		s, ok := syms[name]
		if !ok {
			s = &Symbol{Name: name}
			syms[name] = s
		}
		return s
	}

	note := func(objName string, o *Object) {
		for name, off := range o.Labels {
			s := lookup(name)
			s.DefinedIn = objName
			s.DefinedAt = off
		}
		for _, r := range o.Relocs {
			s := lookup(r.Symbol)
			s.References = append(s.References, Reference{
				Object: objName, Site: r.Site, Kind: r.Kind, Pos: r.Pos,
			})
		}
	}
	note("text", text)
	note("rodata", rodata)

	return syms
}

// Undefined returns the names referenced but never defined in either
// object, sorted.
func Undefined(syms map[string]*Symbol) []string {
	var out []string
	for name, s := range syms {
		if s.DefinedIn == "" {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Unused returns the names defined but never referenced, sorted.
func Unused(syms map[string]*Symbol) []string {
	var out []string
	for name, s := range syms {
		if s.DefinedIn != "" && len(s.References) == 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Report formats syms as a human-readable cross-reference listing, in
// the same spirit as the teacher's XRefReport.String but over
// CursedVM's label/relocation model instead of ARM operand text.
func Report(syms map[string]*Symbol) string {
	names := make([]string, 0, len(syms))
	for name := range syms {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Symbol Cross-Reference\n")
	sb.WriteString("=======================\n\n")
	for _, name := range names {
		s := syms[name]
		sb.WriteString(name)
		sb.WriteString("\n")
		if s.DefinedIn == "" {
			sb.WriteString("  defined:    (undefined)\n")
		} else {
			fmt.Fprintf(&sb, "  defined:    %s+%d\n", s.DefinedIn, s.DefinedAt)
		}
		if len(s.References) == 0 {
			sb.WriteString("  referenced: (never)\n")
			continue
		}
		fmt.Fprintf(&sb, "  referenced: %d time(s)\n", len(s.References))
		for _, r := range s.References {
			kind := "relative"
			if r.Kind == RelocAbsolute {
				kind = "absolute"
			}
			fmt.Fprintf(&sb, "    %s+%d (%s) at %s\n", r.Object, r.Site, kind, r.Pos)
		}
	}
	return sb.String()
}
