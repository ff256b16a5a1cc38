package vm

// num class c0 codes. Eight codes fit the spec's eleven named operations
// because the three bitwise pairs (and/or, xor/xnor, shl/shr) share one
// code each, distinguished by T (the decoder's S bit, repurposed here;
// see §9 Open Question 3 — it never triggers an IRS push for this class).
const (
	numAdd    = 0
	numSub    = 1
	numMult   = 2
	numDiv    = 3
	numMod    = 4
	numAndOr  = 5 // T=0: and, T=1: or
	numXorXnor = 6 // T=0: xor, T=1: xnor
	numShlShr = 7 // T=0: shl (logical left), T=1: shr (logical right)
)

// execNum implements class 9 (num). Operands are registers r1 (X) and r2
// (Y), destination r0 (Z). num never triggers an S/IRS push; its S bit is
// the T type-toggle instead.
func execNum(m *VM, ins Instruction) (execResult, error) {
	x, err := regValue(m, ins.R1)
	if err != nil {
		return execResult{}, err
	}
	y, err := regValue(m, ins.R2)
	if err != nil {
		return execResult{}, err
	}
	t := ins.S

	switch ins.C0 {
	case numAndOr, numXorXnor, numShlShr:
		out, err := execNumBitwise(ins.C0, t, x, y)
		if err != nil {
			return execResult{}, err
		}
		return execResult{}, m.Registers.Set(int(ins.R0), out)
	case numAdd, numSub:
		if x.Kind() == KindPtr {
			out, err := execNumPtrArith(ins.C0, t, x, y)
			if err != nil {
				return execResult{}, err
			}
			return execResult{}, m.Registers.Set(int(ins.R0), out)
		}
		fallthrough
	case numMult, numDiv, numMod:
		out, err := execNumArith(ins.C0, t, x, y)
		if err != nil {
			return execResult{}, err
		}
		return execResult{}, m.Registers.Set(int(ins.R0), out)
	default:
		return execResult{}, &Fault{Kind: DecodeError, Message: "num: unassigned c0 subfunction"}
	}
}

func execNumBitwise(op byte, t bool, x, y Value) (Value, error) {
	xi, ok1 := x.Int()
	yi, ok2 := y.Int()
	if !ok1 || !ok2 {
		return Value{}, &Fault{Kind: TypeError, Message: "bitwise operands must be Int"}
	}
	switch op {
	case numAndOr:
		if t {
			return NewInt(xi | yi), nil
		}
		return NewInt(xi & yi), nil
	case numXorXnor:
		if t {
			return NewInt(^(xi ^ yi)), nil
		}
		return NewInt(xi ^ yi), nil
	case numShlShr:
		shift := uint32(yi) & 31
		if t {
			return NewInt(int32(uint32(xi) >> shift)), nil
		}
		return NewInt(xi << shift), nil
	}
	return Value{}, &Fault{Kind: DecodeError, Message: "num: unreachable bitwise op"}
}

func execNumPtrArith(op byte, t bool, x, y Value) (Value, error) {
	if t {
		return Value{}, &Fault{Kind: TypeError, Message: "cannot force a Float result for pointer arithmetic"}
	}
	px, _ := x.AsPtr()
	var delta uint32
	switch y.Kind() {
	case KindInt:
		n, _ := y.Int()
		delta = uint32(n)
	case KindPtr:
		py, _ := y.AsPtr()
		delta = py.Offset
	default:
		return Value{}, &Fault{Kind: TypeError, Message: "pointer arithmetic requires an Int or Ptr second operand"}
	}
	if op == numSub {
		return NewPtr(px.Region, px.Offset-delta), nil
	}
	return NewPtr(px.Region, px.Offset+delta), nil
}

func execNumArith(op byte, t bool, x, y Value) (Value, error) {
	if !isNumeric(x) || !isNumeric(y) {
		return Value{}, &Fault{Kind: TypeError, Message: "arithmetic operands must be Int or Float"}
	}
	if t {
		xf, yf := toFloat64(x), toFloat64(y)
		result, err := applyFloatOp(op, xf, yf)
		if err != nil {
			return Value{}, err
		}
		return NewFloat(float32(result)), nil
	}
	if x.Kind() == KindFloat {
		xf, _ := x.Float()
		yf := toFloat32FromValue(y)
		result, err := applyFloatOp(op, float64(xf), float64(yf))
		if err != nil {
			return Value{}, err
		}
		return NewFloat(float32(result)), nil
	}
	xi, _ := x.Int()
	yi := toInt32FromValue(y)
	result, err := applyIntOp(op, xi, yi)
	if err != nil {
		return Value{}, err
	}
	return NewInt(result), nil
}

func isNumeric(v Value) bool {
	return v.Kind() == KindInt || v.Kind() == KindFloat
}

func toFloat64(v Value) float64 {
	switch v.Kind() {
	case KindInt:
		n, _ := v.Int()
		return float64(n)
	case KindFloat:
		f, _ := v.Float()
		return float64(f)
	default:
		return 0
	}
}

func toFloat32FromValue(v Value) float32 {
	switch v.Kind() {
	case KindInt:
		n, _ := v.Int()
		return float32(n)
	case KindFloat:
		f, _ := v.Float()
		return f
	default:
		return 0
	}
}

func toInt32FromValue(v Value) int32 {
	switch v.Kind() {
	case KindInt:
		n, _ := v.Int()
		return n
	case KindFloat:
		f, _ := v.Float()
		return int32(f) // truncates toward zero
	default:
		return 0
	}
}

func applyFloatOp(op byte, x, y float64) (float64, error) {
	switch op {
	case numAdd:
		return x + y, nil
	case numSub:
		return x - y, nil
	case numMult:
		return x * y, nil
	case numDiv:
		if y == 0 {
			return 0, &Fault{Kind: DomainError, Message: "division by zero"}
		}
		return x / y, nil
	case numMod:
		if y == 0 {
			return 0, &Fault{Kind: DomainError, Message: "modulo by zero"}
		}
		return float64(int64(x) % int64(y)), nil
	default:
		return 0, &Fault{Kind: DecodeError, Message: "num: unreachable arithmetic op"}
	}
}

func applyIntOp(op byte, x, y int32) (int32, error) {
	switch op {
	case numAdd:
		return x + y, nil
	case numSub:
		return x - y, nil
	case numMult:
		return x * y, nil
	case numDiv:
		if y == 0 {
			return 0, &Fault{Kind: DomainError, Message: "division by zero"}
		}
		return x / y, nil
	case numMod:
		if y == 0 {
			return 0, &Fault{Kind: DomainError, Message: "modulo by zero"}
		}
		return x % y, nil
	default:
		return 0, &Fault{Kind: DecodeError, Message: "num: unreachable arithmetic op"}
	}
}
