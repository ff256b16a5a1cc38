package asm

import "math/bits"

// Fixed bit positions shared by every instruction word (spec §4.1).
const (
	bitClassHi, bitClassLo = 31, 28
	bitS                   = 27
	bitC0Hi, bitC0Lo       = 26, 24
	bitC1Hi, bitC1Lo       = 23, 21
	bitR0Hi, bitR0Lo       = 20, 16
	bitC2Hi, bitC2Lo       = 15, 13
	bitR1Hi, bitR1Lo       = 12, 8
	bitC3Hi, bitC3Lo       = 7, 5
	bitR2Hi, bitR2Lo       = 4, 0
	bitImmHi, bitImmLo     = 15, 0
)

// field names a contiguous bit group an encoding template can bind.
type field int

const (
	fieldClass field = iota
	fieldS
	fieldC0
	fieldC1
	fieldR0
	fieldC2
	fieldR1
	fieldC3
	fieldR2
	fieldImm
)

func fieldRange(f field) (hi, lo uint) {
	switch f {
	case fieldClass:
		return bitClassHi, bitClassLo
	case fieldS:
		return bitS, bitS
	case fieldC0:
		return bitC0Hi, bitC0Lo
	case fieldC1:
		return bitC1Hi, bitC1Lo
	case fieldR0:
		return bitR0Hi, bitR0Lo
	case fieldC2:
		return bitC2Hi, bitC2Lo
	case fieldR1:
		return bitR1Hi, bitR1Lo
	case fieldC3:
		return bitC3Hi, bitC3Lo
	case fieldR2:
		return bitR2Hi, bitR2Lo
	case fieldImm:
		return bitImmHi, bitImmLo
	default:
		return 0, 0
	}
}

func mask(hi, lo uint) uint32 {
	width := hi - lo + 1
	if width >= 32 {
		return 0xFFFFFFFF
	}
	return ((uint32(1) << width) - 1) << lo
}

// wordBuilder assembles one 32-bit instruction word from named field
// bindings, filling every bit position the template leaves unbound with
// the substrate quirk of §4.3/§9: each unbound bit copies the
// corresponding bit of the previous emitted word rotated left by one.
// This is a deliberate, load-bearing quirk preserved byte-for-byte.
type wordBuilder struct {
	word  uint32
	bound uint32 // mask of bit positions already set by a named field
}

func newWordBuilder(prevWord uint32) *wordBuilder {
	substrate := bits.RotateLeft32(prevWord, 1)
	return &wordBuilder{word: substrate}
}

func (b *wordBuilder) set(f field, value uint32) {
	hi, lo := fieldRange(f)
	m := mask(hi, lo)
	b.word = (b.word &^ m) | ((value << lo) & m)
	b.bound |= m
}

func (b *wordBuilder) build() uint32 {
	return b.word
}
