package vm

// cvt class destination-type codes, carried in c0.
const (
	cvtDestNull  = 0
	cvtDestInt   = 1
	cvtDestFloat = 2
	cvtDestPtr   = 3
	cvtDestExt   = 4 // selecting Ext as a destination is always fatal
)

// execCvt implements class 8 (cvt). c1 bit 0 selects immediate vs
// register mode; in register mode, c1 bit 1 additionally selects the
// nested "repr" form, which first reinterprets r2's raw view as the
// source type named by r1 before converting to c0's destination type.
func execCvt(m *VM, ins Instruction) (execResult, error) {
	registerMode := ins.C1&1 != 0
	if !registerMode {
		return execCvtImmediate(m, ins)
	}
	return execCvtRegister(m, ins)
}

func execCvtImmediate(m *VM, ins Instruction) (execResult, error) {
	var out Value
	switch ins.C0 {
	case cvtDestNull:
		out = Null
	case cvtDestInt:
		out = NewInt(ins.ImmSigned)
	case cvtDestFloat:
		out = NewFloat(float32(ins.ImmSigned))
	case cvtDestPtr:
		out = NewPtr(RegionWord, uint32(ins.ImmSigned))
	case cvtDestExt:
		return execResult{}, &Fault{Kind: DecodeError, Message: "cvt: Ext is not a valid immediate-mode destination"}
	default:
		return execResult{}, &Fault{Kind: DecodeError, Message: "cvt: unassigned c0 subfunction"}
	}
	if err := m.Registers.Set(int(ins.R0), out); err != nil {
		return execResult{}, err
	}
	return execResult{pushIRS: ins.S}, nil
}

const cvtRepr = 1 << 1 // c1 bit 1: nested repr form

func execCvtRegister(m *VM, ins Instruction) (execResult, error) {
	src, err := regValue(m, ins.R2)
	if err != nil {
		return execResult{}, err
	}

	if ins.C1&cvtRepr != 0 {
		srcKind, err := typeCodeToKind(ins.R1)
		if err != nil {
			return execResult{}, err
		}
		src, err = src.reinterpret(srcKind)
		if err != nil {
			return execResult{}, err
		}
	}

	destKind, err := destCodeToKind(ins.C0)
	if err != nil {
		return execResult{}, err
	}
	out, err := convertValue(src, destKind)
	if err != nil {
		return execResult{}, err
	}
	return execResult{}, m.Registers.Set(int(ins.R0), out)
}

func typeCodeToKind(code byte) (Kind, error) {
	switch code {
	case cvtDestInt:
		return KindInt, nil
	case cvtDestFloat:
		return KindFloat, nil
	case cvtDestPtr:
		return KindPtr, nil
	default:
		return 0, &Fault{Kind: DecodeError, Message: "cvt.repr: source type must be Int, Float, or Ptr"}
	}
}

func destCodeToKind(code byte) (Kind, error) {
	switch code {
	case cvtDestNull:
		return KindNull, nil
	case cvtDestInt:
		return KindInt, nil
	case cvtDestFloat:
		return KindFloat, nil
	case cvtDestPtr:
		return KindPtr, nil
	case cvtDestExt:
		return 0, &Fault{Kind: DecodeError, Message: "cvt: Ext is not a valid destination"}
	default:
		return 0, &Fault{Kind: DecodeError, Message: "cvt: unassigned c0 subfunction"}
	}
}

// convertValue implements register-mode cvt's type-conversion table.
func convertValue(src Value, dest Kind) (Value, error) {
	if dest == KindNull {
		return Null, nil
	}
	switch src.Kind() {
	case KindInt:
		n, _ := src.Int()
		switch dest {
		case KindInt:
			return NewInt(n), nil
		case KindFloat:
			return NewFloat(float32(n)), nil
		case KindPtr:
			return NewPtr(RegionWord, uint32(n)), nil
		}
	case KindFloat:
		f, _ := src.Float()
		switch dest {
		case KindInt:
			return NewInt(int32(f)), nil // truncates toward zero
		case KindFloat:
			return NewFloat(f), nil
		case KindPtr:
			return Value{}, &Fault{Kind: TypeError, Message: "cvt: Float to Ptr is invalid"}
		}
	case KindPtr:
		p, _ := src.AsPtr()
		switch dest {
		case KindInt:
			return NewInt(int32(p.Offset)), nil
		case KindFloat:
			return Value{}, &Fault{Kind: TypeError, Message: "cvt: Ptr to Float is invalid"}
		case KindPtr:
			return NewPtr(p.Region, p.Offset), nil
		}
	case KindNull, KindExt:
		return Value{}, &Fault{Kind: TypeError, Message: "cvt: " + src.Kind().String() + " has no numeric conversions"}
	}
	return Value{}, &Fault{Kind: DecodeError, Message: "cvt: unreachable destination kind"}
}
