package asm

import (
	"strconv"
	"strings"
)

// encCtx carries the state a single mnemonic's encode function needs
// beyond the bits of the word it is building: where literal strings and
// floats get hoisted to, and the source position for error reporting.
type encCtx struct {
	pos    Position
	rodata *Object
	reloc  *pendingReloc // set by bindRelocArg; read and cleared by the line encoder

	// hoistString/hoistFloat auto-hoist a literal operand into rodata
	// under a fresh label, returning that label's name (spec §4.3's
	// implicit-rodata-label note for string/float operands).
	hoistString func(pos Position, tok string) (string, error)
	hoistFloat  func(pos Position, tok string) (string, error)
}

// mnemonicFunc encodes one instruction's operand tokens into the word
// under construction. It returns whether this mnemonic's encoding
// declares S as meaningful, i.e. whether a following `ipush` pseudo-op
// may fold its operand into this word's imm field (spec §4.3/§9).
type mnemonicFunc func(c *encCtx, b *wordBuilder, args []string) (irsEligible bool, err error)

func argErr(c *encCtx, format string, a ...any) error {
	return newError(c.pos, format, a...)
}

func parseReg(c *encCtx, tok string) (int, error) {
	if len(tok) == 0 || tok[0] != '$' {
		return 0, argErr(c, "expected a register operand, got %q", tok)
	}
	n, ok := parseRegister(tok[1:])
	if !ok {
		return 0, argErr(c, "unknown register %q", tok)
	}
	return n, nil
}

func parseImmediate(c *encCtx, tok string) (int32, error) {
	if len(tok) == 0 || tok[0] != '#' {
		return 0, argErr(c, "expected an immediate operand, got %q", tok)
	}
	n, err := strconv.ParseInt(tok[1:], 0, 32)
	if err != nil {
		return 0, argErr(c, "malformed immediate %q: %v", tok, err)
	}
	return int32(n), nil
}

// typeCodes maps the @int/@float/@ptr literal tokens used by cvt's repr
// form (reusing the r1 field as a literal type code, not a register).
var typeCodes = map[string]uint32{
	"@null":  cvtDestNull,
	"@int":   cvtDestInt,
	"@float": cvtDestFloat,
	"@ptr":   cvtDestPtr,
}

const (
	cvtDestNull  = 0
	cvtDestInt   = 1
	cvtDestFloat = 2
	cvtDestPtr   = 3
)

func parseTypeCode(c *encCtx, tok string) (uint32, error) {
	code, ok := typeCodes[tok]
	if !ok {
		return 0, argErr(c, "unknown type code %q", tok)
	}
	return code, nil
}

func want(c *encCtx, args []string, n int) error {
	if len(args) != n {
		return argErr(c, "expected %d operand(s), got %d", n, len(args))
	}
	return nil
}

// mnemonicTable dispatches every concrete mnemonic spelling to its
// encode function, organized by instruction class exactly as the vm
// package's inst_*.go files are.
var mnemonicTable = map[string]mnemonicFunc{
	"nop": encodeNop,

	"exit.i": encodeExitImm,
	"exit.r": encodeExitReg,

	"push.i": encodePushImm,
	"push.r": encodePushReg,

	"pop.v": encodePopVal,
	"pop.i": encodePopInt,
	"pop.p": encodePopPtr,

	"ret": encodeRet,

	"env.get":   envEncoder(0),
	"env.getp":  envEncoder(1),
	"env.load":  envEncoder(2),
	"env.loadp": envEncoder(3),
	"env.set":   envEncoder(4),
	"env.setp":  envEncoder(5),

	"b.i":  branchEncoder(false, false, false),
	"b.r":  branchEncoder(false, false, true),
	"ba.i": branchEncoder(false, true, false),
	"ba.r": branchEncoder(false, true, true),

	"bc.i":  branchEncoder(true, false, false),
	"bc.r":  branchEncoder(true, false, true),
	"bca.i": branchEncoder(true, true, false),
	"bca.r": branchEncoder(true, true, true),

	"call.i":  callEncoder(false, false),
	"call.r":  callEncoder(false, true),
	"callc.i": callEncoder(true, false),
	"callc.r": callEncoder(true, true),

	"c.3way.i":    cmpImmEncoder(cmpThreeWay),
	"c.eq.i":      cmpImmEncoder(cmpEq),
	"c.ne.i":      cmpImmEncoder(cmpNe),
	"c.isnull.i":  cmpImmEncoder(cmpIsNull),
	"c.not.i":     cmpImmEncoder(cmpIdentOrNot),
	"c.lt.i":      cmpImmEncoder(cmpLt),
	"c.le.i":      cmpImmEncoder(cmpLe),
	"c.isnotnull.i": cmpImmEncoder(cmpIsNotNull),

	"c.3way":    cmpRegEncoder(cmpThreeWay),
	"c.eq":      cmpRegEncoder(cmpEq),
	"c.ne":      cmpRegEncoder(cmpNe),
	"c.isnull":  cmpRegEncoder(cmpIsNull),
	"c.ident":   cmpRegEncoder(cmpIdentOrNot),
	"c.lt":      cmpRegEncoder(cmpLt),
	"c.le":      cmpRegEncoder(cmpLe),
	"c.isnotnull": cmpRegEncoder(cmpIsNotNull),

	"cvt.null.i":  cvtImmEncoder(cvtDestNull),
	"cvt.int.i":   cvtImmEncoder(cvtDestInt),
	"cvt.float.i": cvtImmEncoder(cvtDestFloat),
	"cvt.ptr.i":   cvtImmEncoder(cvtDestPtr),

	"cvt.null":  cvtRegEncoder(cvtDestNull),
	"cvt.int":   cvtRegEncoder(cvtDestInt),
	"cvt.float": cvtRegEncoder(cvtDestFloat),
	"cvt.ptr":   cvtRegEncoder(cvtDestPtr),

	"cvt.null.repr":  cvtReprEncoder(cvtDestNull),
	"cvt.int.repr":   cvtReprEncoder(cvtDestInt),
	"cvt.float.repr": cvtReprEncoder(cvtDestFloat),
	"cvt.ptr.repr":   cvtReprEncoder(cvtDestPtr),

	"add":   numEncoder(numAdd, false),
	"add.f": numEncoder(numAdd, true),
	"sub":   numEncoder(numSub, false),
	"sub.f": numEncoder(numSub, true),
	"mult":  numEncoder(numMult, false),
	"mult.f": numEncoder(numMult, true),
	"div":   numEncoder(numDiv, false),
	"div.f": numEncoder(numDiv, true),
	"mod":   numEncoder(numMod, false),
	"mod.f": numEncoder(numMod, true),
	"and":   numEncoder(numAndOr, false),
	"or":    numEncoder(numAndOr, true),
	"xor":   numEncoder(numXorXnor, false),
	"xnor":  numEncoder(numXorXnor, true),
	"shl":   numEncoder(numShlShr, false),
	"shr":   numEncoder(numShlShr, true),

	"mem.read.int":   memReadEncoder(cvtDestInt),
	"mem.read.float": memReadEncoder(cvtDestFloat),
	"mem.read.ptr":   memReadEncoder(cvtDestPtr),
	"mem.write":      memWriteEncoder,

	"sys.print":     sysEncoder(false, false),
	"sys.printfull": sysEncoder(true, false),
	"sys.break":     sysEncoder(false, true),
	"sys.breakfull": sysEncoder(true, true),
}

const (
	cmpThreeWay   = 0
	cmpEq         = 1
	cmpNe         = 2
	cmpIsNull     = 3
	cmpIdentOrNot = 4
	cmpLt         = 5
	cmpLe         = 6
	cmpIsNotNull  = 7
)

const (
	numAdd     = 0
	numSub     = 1
	numMult    = 2
	numDiv     = 3
	numMod     = 4
	numAndOr   = 5
	numXorXnor = 6
	numShlShr  = 7
)

const (
	bModeCall     = 1 << 0
	bModeAbsolute = 1 << 1
	bModeRegister = 1 << 2
	bModeCond     = 1 << 0
)

const memOpWrite = 1 << 2
const (
	sysPrintFull  = 1 << 0
	sysBreakpoint = 1 << 2
)

func encodeNop(c *encCtx, b *wordBuilder, args []string) (bool, error) {
	if err := want(c, args, 0); err != nil {
		return false, err
	}
	b.set(fieldClass, ClassNop)
	return true, nil
}

func encodeExitImm(c *encCtx, b *wordBuilder, args []string) (bool, error) {
	if err := want(c, args, 1); err != nil {
		return false, err
	}
	imm, err := parseImmediate(c, args[0])
	if err != nil {
		return false, err
	}
	b.set(fieldClass, ClassExit)
	b.set(fieldC0, 0)
	b.set(fieldImm, uint32(uint16(imm)))
	return false, nil
}

func encodeExitReg(c *encCtx, b *wordBuilder, args []string) (bool, error) {
	if err := want(c, args, 1); err != nil {
		return false, err
	}
	r0, err := parseReg(c, args[0])
	if err != nil {
		return false, err
	}
	b.set(fieldClass, ClassExit)
	b.set(fieldC0, 1)
	b.set(fieldR0, uint32(r0))
	return false, nil
}

func encodePushImm(c *encCtx, b *wordBuilder, args []string) (bool, error) {
	if err := want(c, args, 1); err != nil {
		return false, err
	}
	imm, err := parseImmediate(c, args[0])
	if err != nil {
		return false, err
	}
	b.set(fieldClass, ClassPush)
	b.set(fieldC0, 0)
	b.set(fieldImm, uint32(uint16(imm)))
	return false, nil
}

func encodePushReg(c *encCtx, b *wordBuilder, args []string) (bool, error) {
	if err := want(c, args, 1); err != nil {
		return false, err
	}
	r0, err := parseReg(c, args[0])
	if err != nil {
		return false, err
	}
	b.set(fieldClass, ClassPush)
	b.set(fieldC0, 1)
	b.set(fieldR0, uint32(r0))
	return true, nil
}

func encodePopWith(sub uint32) mnemonicFunc {
	return func(c *encCtx, b *wordBuilder, args []string) (bool, error) {
		if err := want(c, args, 1); err != nil {
			return false, err
		}
		r0, err := parseReg(c, args[0])
		if err != nil {
			return false, err
		}
		b.set(fieldClass, ClassPop)
		b.set(fieldC0, sub)
		b.set(fieldR0, uint32(r0))
		return true, nil
	}
}

var encodePopVal = encodePopWith(0x0)
var encodePopInt = encodePopWith(0x1)
var encodePopPtr = encodePopWith(0x3)

func encodeRet(c *encCtx, b *wordBuilder, args []string) (bool, error) {
	if err := want(c, args, 0); err != nil {
		return false, err
	}
	b.set(fieldClass, ClassRet)
	return true, nil
}

func envEncoder(sub uint32) mnemonicFunc {
	isProperty := sub == 1 || sub == 3 || sub == 5
	return func(c *encCtx, b *wordBuilder, args []string) (bool, error) {
		n := 2
		if isProperty {
			n = 3
		}
		if err := want(c, args, n); err != nil {
			return false, err
		}
		r0, err := parseReg(c, args[0])
		if err != nil {
			return false, err
		}
		r1, err := parseReg(c, args[1])
		if err != nil {
			return false, err
		}
		b.set(fieldClass, ClassEnv)
		b.set(fieldC0, sub)
		b.set(fieldR0, uint32(r0))
		b.set(fieldR1, uint32(r1))
		if isProperty {
			r2, err := parseReg(c, args[2])
			if err != nil {
				return false, err
			}
			b.set(fieldR2, uint32(r2))
		}
		return false, nil
	}
}

// branchEncoder builds b.{i,r}/ba.{i,r}/bc.{i,r}/bca.{i,r}. Immediate
// forms take a relocation target; register forms take a register.
func branchEncoder(cond, absolute, register bool) mnemonicFunc {
	return func(c *encCtx, b *wordBuilder, args []string) (bool, error) {
		if err := want(c, args, 1); err != nil {
			return false, err
		}
		b.set(fieldClass, ClassB)
		var c0 uint32
		if absolute {
			c0 |= bModeAbsolute
		}
		if register {
			c0 |= bModeRegister
		}
		b.set(fieldC0, c0)
		var c1 uint32
		if cond {
			c1 = bModeCond
		}
		b.set(fieldC1, c1)
		if register {
			r0, err := parseReg(c, args[0])
			if err != nil {
				return false, err
			}
			b.set(fieldR0, uint32(r0))
		} else {
			kind := RelocRelative
			if absolute {
				kind = RelocAbsolute
			}
			if err := bindRelocArg(c, b, args[0], kind); err != nil {
				return false, err
			}
		}
		return false, nil
	}
}

// callEncoder builds call.{i,r}/callc.{i,r}. Relative call is always
// illegal at the VM level, so only absolute immediate/register forms are
// offered; callc selects the conditional bit.
func callEncoder(cond, register bool) mnemonicFunc {
	return func(c *encCtx, b *wordBuilder, args []string) (bool, error) {
		if err := want(c, args, 1); err != nil {
			return false, err
		}
		b.set(fieldClass, ClassB)
		c0 := uint32(bModeCall | bModeAbsolute)
		if register {
			c0 |= bModeRegister
		}
		b.set(fieldC0, c0)
		var c1 uint32
		if cond {
			c1 = bModeCond
		}
		b.set(fieldC1, c1)
		if register {
			r0, err := parseReg(c, args[0])
			if err != nil {
				return false, err
			}
			b.set(fieldR0, uint32(r0))
		} else {
			if err := bindRelocArg(c, b, args[0], RelocAbsolute); err != nil {
				return false, err
			}
		}
		return false, nil
	}
}

// pendingReloc is stashed on encCtx by bindRelocArg and drained by the
// line encoder immediately after each instruction word is emitted, since
// a wordBuilder has no Object to register a Relocation against.
type pendingReloc struct {
	Symbol string
	Kind   RelocKind
}

func bindRelocArg(c *encCtx, b *wordBuilder, tok string, kind RelocKind) error {
	if len(tok) == 0 {
		return argErr(c, "expected a label operand")
	}
	name := tok
	switch tok[0] {
	case '&', '^':
		name = tok[1:]
	}
	if name == "" {
		return argErr(c, "malformed label operand %q", tok)
	}
	c.reloc = &pendingReloc{Symbol: name, Kind: kind}
	b.set(fieldImm, 0)
	return nil
}

func cmpImmEncoder(sub uint32) mnemonicFunc {
	return func(c *encCtx, b *wordBuilder, args []string) (bool, error) {
		if err := want(c, args, 2); err != nil {
			return false, err
		}
		r0, err := parseReg(c, args[0])
		if err != nil {
			return false, err
		}
		imm, err := parseImmediate(c, args[1])
		if err != nil {
			return false, err
		}
		b.set(fieldClass, ClassCmp)
		b.set(fieldC0, sub)
		b.set(fieldC1, 0)
		b.set(fieldR0, uint32(r0))
		b.set(fieldImm, uint32(uint16(imm)))
		return sub == cmpIdentOrNot, nil
	}
}

func cmpRegEncoder(sub uint32) mnemonicFunc {
	return func(c *encCtx, b *wordBuilder, args []string) (bool, error) {
		if err := want(c, args, 3); err != nil {
			return false, err
		}
		r1, err := parseReg(c, args[0])
		if err != nil {
			return false, err
		}
		r0, err := parseReg(c, args[1])
		if err != nil {
			return false, err
		}
		r2, err := parseReg(c, args[2])
		if err != nil {
			return false, err
		}
		b.set(fieldClass, ClassCmp)
		b.set(fieldC0, sub)
		b.set(fieldC1, 1)
		b.set(fieldR0, uint32(r0))
		b.set(fieldR1, uint32(r1))
		b.set(fieldR2, uint32(r2))
		return false, nil
	}
}

func cvtImmEncoder(dest uint32) mnemonicFunc {
	return func(c *encCtx, b *wordBuilder, args []string) (bool, error) {
		if err := want(c, args, 2); err != nil {
			return false, err
		}
		r0, err := parseReg(c, args[0])
		if err != nil {
			return false, err
		}
		b.set(fieldClass, ClassCvt)
		b.set(fieldC0, dest)
		b.set(fieldC1, 0)
		b.set(fieldR0, uint32(r0))

		// cvt.ptr.i's immediate is commonly the address of a hoisted
		// string or float literal rather than a bare number.
		if dest == cvtDestPtr {
			if label, isLiteral, err := c.hoistIfLiteral(args[1]); err != nil {
				return false, err
			} else if isLiteral {
				if err := bindRelocArg(c, b, "&"+label, RelocAbsolute); err != nil {
					return false, err
				}
				return true, nil
			}
			if strings.HasPrefix(args[1], "&") || strings.HasPrefix(args[1], "^") {
				if err := bindRelocArg(c, b, args[1], RelocAbsolute); err != nil {
					return false, err
				}
				return true, nil
			}
		}

		imm, err := parseImmediate(c, args[1])
		if err != nil {
			return false, err
		}
		b.set(fieldImm, uint32(uint16(imm)))
		return true, nil
	}
}

// hoistIfLiteral recognizes a quoted string or F#-literal operand and
// hoists it into rodata, returning the label it was stored under.
func (c *encCtx) hoistIfLiteral(tok string) (string, bool, error) {
	switch {
	case strings.HasPrefix(tok, "\""):
		label, err := c.hoistString(c.pos, tok)
		return label, true, err
	case strings.HasPrefix(tok, "F#"):
		label, err := c.hoistFloat(c.pos, tok)
		return label, true, err
	default:
		return "", false, nil
	}
}

func cvtRegEncoder(dest uint32) mnemonicFunc {
	return func(c *encCtx, b *wordBuilder, args []string) (bool, error) {
		if err := want(c, args, 2); err != nil {
			return false, err
		}
		r0, err := parseReg(c, args[0])
		if err != nil {
			return false, err
		}
		r2, err := parseReg(c, args[1])
		if err != nil {
			return false, err
		}
		b.set(fieldClass, ClassCvt)
		b.set(fieldC0, dest)
		b.set(fieldC1, 1)
		b.set(fieldR0, uint32(r0))
		b.set(fieldR2, uint32(r2))
		return false, nil
	}
}

const cvtReprBit = 1 << 1

func cvtReprEncoder(dest uint32) mnemonicFunc {
	return func(c *encCtx, b *wordBuilder, args []string) (bool, error) {
		if err := want(c, args, 3); err != nil {
			return false, err
		}
		r0, err := parseReg(c, args[0])
		if err != nil {
			return false, err
		}
		typeCode, err := parseTypeCode(c, args[1])
		if err != nil {
			return false, err
		}
		r2, err := parseReg(c, args[2])
		if err != nil {
			return false, err
		}
		b.set(fieldClass, ClassCvt)
		b.set(fieldC0, dest)
		b.set(fieldC1, 1|cvtReprBit)
		b.set(fieldR0, uint32(r0))
		b.set(fieldR1, typeCode)
		b.set(fieldR2, uint32(r2))
		return false, nil
	}
}

// numEncoder builds num class instructions. Operand order is dest, X, Y
// (r0, r1, r2) per inst_num.go; t selects the S bit, which forces a
// Float result for arithmetic ops and the second-of-pair op for the
// bitwise triples.
func numEncoder(sub uint32, t bool) mnemonicFunc {
	return func(c *encCtx, b *wordBuilder, args []string) (bool, error) {
		if err := want(c, args, 3); err != nil {
			return false, err
		}
		r0, err := parseReg(c, args[0])
		if err != nil {
			return false, err
		}
		r1, err := parseReg(c, args[1])
		if err != nil {
			return false, err
		}
		r2, err := parseReg(c, args[2])
		if err != nil {
			return false, err
		}
		b.set(fieldClass, ClassNum)
		b.set(fieldC0, sub)
		var s uint32
		if t {
			s = 1
		}
		b.set(fieldS, s)
		b.set(fieldR0, uint32(r0))
		b.set(fieldR1, uint32(r1))
		b.set(fieldR2, uint32(r2))
		return false, nil
	}
}

// memReadEncoder builds mem.read.{int,float,ptr} $r0,$r1,$r2: r1 is the
// base Ptr, r2 the offset operand, r0 the destination, t the
// reinterpretation type carried in the low two bits of c0.
func memReadEncoder(t uint32) mnemonicFunc {
	return func(c *encCtx, b *wordBuilder, args []string) (bool, error) {
		if err := want(c, args, 3); err != nil {
			return false, err
		}
		r0, err := parseReg(c, args[0])
		if err != nil {
			return false, err
		}
		r1, err := parseReg(c, args[1])
		if err != nil {
			return false, err
		}
		r2, err := parseReg(c, args[2])
		if err != nil {
			return false, err
		}
		b.set(fieldClass, ClassMem)
		b.set(fieldC0, t)
		b.set(fieldR0, uint32(r0))
		b.set(fieldR1, uint32(r1))
		b.set(fieldR2, uint32(r2))
		return false, nil
	}
}

func memWriteEncoder(c *encCtx, b *wordBuilder, args []string) (bool, error) {
	if err := want(c, args, 3); err != nil {
		return false, err
	}
	r0, err := parseReg(c, args[0])
	if err != nil {
		return false, err
	}
	r1, err := parseReg(c, args[1])
	if err != nil {
		return false, err
	}
	r2, err := parseReg(c, args[2])
	if err != nil {
		return false, err
	}
	b.set(fieldClass, ClassMem)
	b.set(fieldC0, memOpWrite)
	b.set(fieldR0, uint32(r0))
	b.set(fieldR1, uint32(r1))
	b.set(fieldR2, uint32(r2))
	return false, nil
}

func sysEncoder(full, brk bool) mnemonicFunc {
	return func(c *encCtx, b *wordBuilder, args []string) (bool, error) {
		b.set(fieldClass, ClassSys)
		var c0 uint32
		if full {
			c0 |= sysPrintFull
		}
		if brk {
			c0 |= sysBreakpoint
		}
		if !full {
			if err := want(c, args, 1); err != nil {
				return false, err
			}
			r0, err := parseReg(c, args[0])
			if err != nil {
				return false, err
			}
			b.set(fieldR0, uint32(r0))
		} else if err := want(c, args, 0); err != nil {
			return false, err
		}
		b.set(fieldC0, c0)
		return false, nil
	}
}

// Class codes, mirrored from vm/decode.go so this package never imports
// the vm package just to read a handful of constants shared across both
// the encoder and decoder halves of the same instruction format.
const (
	ClassNop  = 0
	ClassExit = 1
	ClassPush = 2
	ClassPop  = 3
	ClassRet  = 4
	ClassEnv  = 5
	ClassB    = 6
	ClassCmp  = 7
	ClassCvt  = 8
	ClassNum  = 9
	ClassMem  = 10
	ClassSys  = 15
)
