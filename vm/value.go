package vm

import "math"

// Kind is the tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindPtr
	KindExt
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindPtr:
		return "ptr"
	case KindExt:
		return "ext"
	default:
		return "unknown"
	}
}

// RegionID names one of the VM's five distinct backing stores. A Ptr
// carries its region for its entire lifetime; the region identity takes
// part in equality and in cross-region bounds checks.
type RegionID uint8

const (
	RegionWord RegionID = iota
	RegionObject
	RegionCallStack
	RegionIRS
	RegionDataStack
)

func (r RegionID) String() string {
	switch r {
	case RegionWord:
		return "word"
	case RegionObject:
		return "object"
	case RegionCallStack:
		return "callstack"
	case RegionIRS:
		return "irs"
	case RegionDataStack:
		return "datastack"
	default:
		return "unknown-region"
	}
}

// Ptr is a 32-bit unsigned offset paired with the region it addresses.
type Ptr struct {
	Region RegionID
	Offset uint32
}

// Value is a tagged variant with exactly five cases: Null, Int, Float,
// Ptr, and Ext. Int/Float/Ptr all expose a four-byte raw view used by
// bitwise reinterpretation; Null and Ext do not and fail that operation.
type Value struct {
	kind Kind
	i    int32
	f    float32
	ptr  Ptr
	ext  any
}

// Null is the sole Null value.
var Null = Value{kind: KindNull}

// NewInt constructs an Int value.
func NewInt(v int32) Value { return Value{kind: KindInt, i: v} }

// NewFloat constructs a Float value.
func NewFloat(v float32) Value { return Value{kind: KindFloat, f: v} }

// NewPtr constructs a Ptr value addressing the given region and offset.
func NewPtr(region RegionID, offset uint32) Value {
	return Value{kind: KindPtr, ptr: Ptr{Region: region, Offset: offset}}
}

// NewExt wraps an opaque host handle.
func NewExt(handle any) Value { return Value{kind: KindExt, ext: handle} }

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// Int returns the Int payload and whether v is an Int.
func (v Value) Int() (int32, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// Float returns the Float payload and whether v is a Float.
func (v Value) Float() (float32, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// AsPtr returns the Ptr payload and whether v is a Ptr.
func (v Value) AsPtr() (Ptr, bool) {
	if v.kind != KindPtr {
		return Ptr{}, false
	}
	return v.ptr, true
}

// Ext returns the wrapped host handle and whether v is an Ext.
func (v Value) Ext() (any, bool) {
	if v.kind != KindExt {
		return nil, false
	}
	return v.ext, true
}

// RawView reinterprets Int/Float/Ptr as an unsigned 32-bit pattern. Null
// and Ext have no raw view and fail.
func (v Value) RawView() (uint32, error) {
	switch v.kind {
	case KindInt:
		return uint32(v.i), nil
	case KindFloat:
		return math.Float32bits(v.f), nil
	case KindPtr:
		return v.ptr.Offset, nil
	default:
		return 0, &Fault{Kind: TypeError, Message: v.kind.String() + " has no raw view"}
	}
}

// reinterpret builds a Value of kind `to` from v's raw bit pattern,
// preserving Ptr's region when both source and destination are Ptr and
// otherwise defaulting a freshly-minted Ptr to RegionWord (the only region
// a bare 32-bit offset can unambiguously address; see DESIGN.md).
func (v Value) reinterpret(to Kind) (Value, error) {
	raw, err := v.RawView()
	if err != nil {
		return Value{}, err
	}
	switch to {
	case KindInt:
		return NewInt(int32(raw)), nil
	case KindFloat:
		return NewFloat(math.Float32frombits(raw)), nil
	case KindPtr:
		region := RegionWord
		if v.kind == KindPtr {
			region = v.ptr.Region
		}
		return NewPtr(region, raw), nil
	default:
		return Value{}, &Fault{Kind: TypeError, Message: "cannot reinterpret as " + to.String()}
	}
}

// sameUnderlying implements the cmp class's object-identity comparison:
// numeric values compare by raw bit pattern and kind, pointers compare by
// region and offset, and Ext compares by handle identity.
func (v Value) sameUnderlying(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return math.Float32bits(v.f) == math.Float32bits(o.f)
	case KindPtr:
		return v.ptr == o.ptr
	case KindExt:
		return v.ext == o.ext
	default:
		return false
	}
}
