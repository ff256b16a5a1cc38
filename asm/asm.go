// Package asm implements the CursedVM assembler: it turns newline- or
// semicolon-delimited source text into a pair of linkable Objects (text
// and rodata), per spec §4.3.
package asm

// Assemble compiles one source file into its text and rodata Objects.
// filename is used only to annotate error positions.
//
// Preprocessing (spec §4.3 step 1: strip comments, collect DEFINE/DEFINEX,
// apply `[name]`/`[tag] a b c` substitution) runs over each line's raw
// text before tokenizing (step 2) splits that text into Head/Args.
// Tokenizing first would permanently separate a `[tag]` from its trailing
// parameter words, so DEFINEX's ?p1/?p2 substitution would never see them
// together.
func Assemble(filename, source string) (text, rodata *Object, err error) {
	b := newBuilder(filename)

	rawLines := splitSource(source)
	stripped := make([]string, len(rawLines))
	for i, raw := range rawLines {
		stripped[i] = stripComment(raw)
	}

	// collect also blanks out the DEFINE/DEFINEX declaration lines
	// themselves, so a macro may be declared after its first use,
	// matching the teacher corpus's forward-reference tolerance.
	body := b.macros.collect(stripped)

	lines := make([]Line, 0, len(body))
	for i, raw := range body {
		pos := Position{Filename: filename, Line: i + 1}
		line, ok := tokenizeLine(pos, b.macros.expand(raw))
		if !ok {
			continue
		}
		lines = append(lines, line)
	}

	if err := b.encodeLines(lines); err != nil {
		return nil, nil, err
	}
	return b.text, b.rodata, nil
}
