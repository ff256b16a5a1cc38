package asm

import (
	"math"
	"strconv"
	"strings"
)

// builder accumulates the text and rodata objects for one assembly unit
// as it processes preprocessed, tokenized lines in order.
type builder struct {
	filename string
	text     *Object
	rodata   *Object
	macros   *macroTable
	lastWord uint32 // the previous emitted word, across both objects, for the substrate rule
	hoistSeq int
}

func newBuilder(filename string) *builder {
	return &builder{
		filename: filename,
		text:     newObject(),
		rodata:   newObject(),
		macros:   newMacroTable(),
	}
}

// encodeLines walks preprocessed Lines, emitting into text or rodata,
// defining labels, and folding a trailing `ipush` line into the
// preceding instruction's imm field.
func (b *builder) encodeLines(lines []Line) error {
	active := b.text
	var pendingIPush *string // set once an ipush-eligible word has just been emitted

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if line.Label != "" {
			if !active.defineLabel(line.Label) {
				return newError(line.Pos, "duplicate label %q", line.Label)
			}
		}
		if line.Head == "" {
			continue
		}

		switch strings.ToLower(line.Head) {
		case ".text":
			active = b.text
			continue
		case ".rodata":
			active = b.rodata
			continue
		case ".int", ".float", ".ptr", ".utf8", ".string", ".str":
			if err := b.encodeDirective(active, line); err != nil {
				return err
			}
			pendingIPush = nil
			continue
		case "ipush":
			if pendingIPush == nil {
				return newError(line.Pos, "ipush with no preceding S-meaningful instruction")
			}
			if err := b.foldIPush(active, line); err != nil {
				return err
			}
			pendingIPush = nil
			continue
		}

		eligible, err := b.encodeInstruction(active, line)
		if err != nil {
			return err
		}
		if eligible {
			pendingIPush = &line.Head
		} else {
			pendingIPush = nil
		}
	}
	return nil
}

// encodeInstruction encodes one mnemonic line into active, resolving a
// label operand's relocation and the substrate bit carry from the
// previously emitted word of either object. Macro expansion already ran
// over this line's raw text in Assemble, before tokenizing; line.Args
// need no further expansion here.
func (b *builder) encodeInstruction(active *Object, line Line) (bool, error) {
	fn, ok := mnemonicTable[strings.ToLower(line.Head)]
	if !ok {
		return false, newError(line.Pos, "unrecognized mnemonic %q", line.Head)
	}

	ctx := &encCtx{pos: line.Pos, rodata: b.rodata, hoistString: b.hoistString, hoistFloat: b.hoistFloat}

	wb := newWordBuilder(b.lastWord)
	eligible, err := fn(ctx, wb, line.Args)
	if err != nil {
		return false, err
	}

	site := active.emit(wb.build())
	b.lastWord = active.Words[site]
	if ctx.reloc != nil {
		active.addReloc(site, ctx.reloc.Symbol, ctx.reloc.Kind, line.Pos)
	}
	return eligible, nil
}

// foldIPush rewrites the word just emitted into active, setting S and
// replacing its imm field with this line's single immediate operand.
func (b *builder) foldIPush(active *Object, line Line) error {
	if len(line.Args) != 1 {
		return newError(line.Pos, "ipush takes exactly one operand")
	}
	ctx := &encCtx{pos: line.Pos}
	imm, err := parseImmediate(ctx, line.Args[0])
	if err != nil {
		return err
	}
	idx := len(active.Words) - 1
	word := active.Words[idx]
	word |= 1 << bitS
	word = (word &^ mask(bitImmHi, bitImmLo)) | (uint32(uint16(imm)) & mask(bitImmHi, bitImmLo))
	active.Words[idx] = word
	b.lastWord = word
	return nil
}

// encodeDirective handles the data directives, hoisting quoted strings
// and F#-literal floats that appear as `.int`/`.ptr` arguments into
// rodata at an auto-generated label first.
func (b *builder) encodeDirective(active *Object, line Line) error {
	switch strings.ToLower(line.Head) {
	case ".utf8", ".string", ".str":
		if len(line.Args) != 1 {
			return newError(line.Pos, "%s takes exactly one string literal", line.Head)
		}
		return b.emitString(active, line.Pos, line.Args[0])
	case ".float":
		for _, a := range line.Args {
			f, err := parseFloatLiteral(line.Pos, a)
			if err != nil {
				return err
			}
			active.emit(floatBits(f))
			b.lastWord = active.Words[len(active.Words)-1]
		}
		return nil
	case ".int", ".ptr":
		for _, a := range line.Args {
			if strings.HasPrefix(a, "\"") || strings.HasPrefix(a, "F#") {
				hoist := b.hoistString
				if strings.HasPrefix(a, "F#") {
					hoist = b.hoistFloat
				}
				label, err := hoist(line.Pos, a)
				if err != nil {
					return err
				}
				site := active.emit(0)
				active.addReloc(site, label, RelocAbsolute, line.Pos)
				b.lastWord = 0
				continue
			}
			n, err := strconv.ParseInt(a, 0, 32)
			if err != nil {
				return newError(line.Pos, "malformed integer literal %q: %v", a, err)
			}
			active.emit(uint32(int32(n)))
			b.lastWord = active.Words[len(active.Words)-1]
		}
		return nil
	}
	return newError(line.Pos, "unrecognized directive %q", line.Head)
}

// emitString hoists a quoted string literal into rodata, one ASCII byte
// per word's low 8 bits, NUL-terminated and NUL-padded to a 4-word
// boundary, matching how vm/environment.go's readCString walks word
// memory.
func (b *builder) emitString(active *Object, pos Position, tok string) error {
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return newError(pos, "unterminated string literal %q", tok)
	}
	content := tok[1 : len(tok)-1]
	start := len(active.Words)
	for i := 0; i < len(content); i++ {
		active.emit(uint32(content[i]))
	}
	active.emit(0) // NUL terminator
	for (len(active.Words)-start)%4 != 0 {
		active.emit(0)
	}
	b.lastWord = active.Words[len(active.Words)-1]
	return nil
}

// hoistString emits a quoted string literal into rodata under a fresh
// label and returns that label's name, for use as a relocation target.
func (b *builder) hoistString(pos Position, tok string) (string, error) {
	label := b.labelSeq("str")
	if !b.rodata.defineLabel(label) {
		return "", newError(pos, "internal: hoisted label %q collided", label)
	}
	if err := b.emitString(b.rodata, pos, tok); err != nil {
		return "", err
	}
	return label, nil
}

// hoistFloat emits an F#-literal into rodata under a fresh label and
// returns that label's name.
func (b *builder) hoistFloat(pos Position, tok string) (string, error) {
	f, err := parseFloatLiteral(pos, tok)
	if err != nil {
		return "", err
	}
	label := b.labelSeq("flt")
	if !b.rodata.defineLabel(label) {
		return "", newError(pos, "internal: hoisted label %q collided", label)
	}
	b.rodata.emit(floatBits(f))
	return label, nil
}

func (b *builder) labelSeq(prefix string) string {
	b.hoistSeq++
	return "__" + prefix + strconv.Itoa(b.hoistSeq)
}

func parseFloatLiteral(pos Position, tok string) (float32, error) {
	if !strings.HasPrefix(tok, "F#") {
		return 0, newError(pos, "expected an F#<number> float literal, got %q", tok)
	}
	f, err := strconv.ParseFloat(tok[2:], 32)
	if err != nil {
		return 0, newError(pos, "malformed float literal %q: %v", tok, err)
	}
	return float32(f), nil
}

func floatBits(f float32) uint32 {
	return math.Float32bits(f)
}
