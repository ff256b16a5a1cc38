package vm

// env class c0 codes. The spec leaves the exact bit assignment to the
// implementation ("bits of c0 select get/getp/load/loadp/set/setp"); this
// is CursedVM's fixed assignment.
const (
	envGet   = 0
	envGetP  = 1
	envLoad  = 2
	envLoadP = 3
	envSet   = 4
	envSetP  = 5
)

// execEnv implements class 5 (env). The key is computed from register r1
// (§4.2); property variants (…p) require register r2 to hold an Ext base.
// env never triggers an S/IRS push.
func execEnv(m *VM, ins Instruction) (execResult, error) {
	keyVal, err := regValue(m, ins.R1)
	if err != nil {
		return execResult{}, err
	}
	key, err := envKey(m, keyVal)
	if err != nil {
		return execResult{}, err
	}

	isProperty := ins.C0 == envGetP || ins.C0 == envLoadP || ins.C0 == envSetP

	var base PropertyHost
	if isProperty {
		baseVal, err := regValue(m, ins.R2)
		if err != nil {
			return execResult{}, err
		}
		handle, ok := baseVal.Ext()
		if !ok {
			return execResult{}, &Fault{Kind: TypeError, Message: "env property base must be Ext"}
		}
		host, ok := handle.(PropertyHost)
		if !ok {
			return execResult{}, &Fault{Kind: TypeError, Message: "env property base does not implement properties"}
		}
		base = host
	}

	switch ins.C0 {
	case envGet, envGetP:
		var raw any
		var found bool
		if isProperty {
			raw, found = base.GetProperty(key)
		} else {
			raw, found = m.Env.Get(key)
		}
		var out Value
		if !found {
			out = Null
		} else {
			f, ok := coerceFloat32(raw)
			if !ok {
				return execResult{}, &Fault{Kind: DomainError, Message: "env value not coercible to a finite number: " + key}
			}
			out = NewFloat(f)
		}
		return execResult{}, m.Registers.Set(int(ins.R0), out)

	case envLoad, envLoadP:
		var raw any
		var found bool
		if isProperty {
			raw, found = base.GetProperty(key)
		} else {
			raw, found = m.Env.Get(key)
		}
		var out Value
		if !found {
			out = Null
		} else {
			out = NewExt(raw)
		}
		return execResult{}, m.Registers.Set(int(ins.R0), out)

	case envSet, envSetP:
		v, err := regValue(m, ins.R0)
		if err != nil {
			return execResult{}, err
		}
		native, err := envNativeValue(m, v)
		if err != nil {
			return execResult{}, err
		}
		if isProperty {
			base.SetProperty(key, native)
		} else {
			m.Env.Set(key, native)
		}
		return execResult{}, nil

	default:
		return execResult{}, &Fault{Kind: DecodeError, Message: "env: unassigned c0 subfunction"}
	}
}

// envNativeValue converts a Value to the Go value stored into the
// environment by set/setp: a Ptr is stringified (read as a C string),
// everything else is unwrapped to its native payload.
func envNativeValue(m *VM, v Value) (any, error) {
	switch v.Kind() {
	case KindPtr:
		p, _ := v.AsPtr()
		return m.readCString(p)
	case KindInt:
		n, _ := v.Int()
		return n, nil
	case KindFloat:
		f, _ := v.Float()
		return f, nil
	case KindExt:
		h, _ := v.Ext()
		return h, nil
	default:
		return nil, nil
	}
}
