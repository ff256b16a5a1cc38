package vm

import "strconv"

// WordRegion is a fixed-size array of 32-bit int cells, bounds-checked on
// every access. Word memory, the call stack backing store, and the IRS
// backing store are all WordRegions.
type WordRegion struct {
	id    RegionID
	cells []int32
}

func newWordRegion(id RegionID, size uint32) *WordRegion {
	return &WordRegion{id: id, cells: make([]int32, size)}
}

func (r *WordRegion) len() uint32 { return uint32(len(r.cells)) }

// Read loads the int32 at offset, or a BoundsError if offset is out of range.
func (r *WordRegion) Read(offset uint32) (int32, error) {
	if offset >= r.len() {
		return 0, &Fault{Kind: BoundsError, Message: boundsMsg(r.id, offset, r.len())}
	}
	return r.cells[offset], nil
}

// Write stores raw into the cell at offset, or a BoundsError if out of range.
func (r *WordRegion) Write(offset uint32, raw int32) error {
	if offset >= r.len() {
		return &Fault{Kind: BoundsError, Message: boundsMsg(r.id, offset, r.len())}
	}
	r.cells[offset] = raw
	return nil
}

// ReadValue loads the word at offset, reinterpreted as kind `as` (Int,
// Float, or Ptr). Word memory has no tag of its own; the reader's
// instruction supplies the intended type.
func (r *WordRegion) ReadValue(offset uint32, as Kind) (Value, error) {
	raw, err := r.Read(offset)
	if err != nil {
		return Value{}, err
	}
	return NewInt(raw).reinterpret(as)
}

// WriteValue stores v's raw view into the cell at offset. v must be
// Int, Float, or Ptr; Null/Ext are rejected with a TypeError.
func (r *WordRegion) WriteValue(offset uint32, v Value) error {
	raw, err := v.RawView()
	if err != nil {
		return err
	}
	return r.Write(offset, int32(raw))
}

func (r *WordRegion) reset() {
	for i := range r.cells {
		r.cells[i] = 0
	}
}

// ObjectRegion is a fixed-size array of tagged Values, bounds-checked on
// every access. Reads and writes preserve the stored tag verbatim.
type ObjectRegion struct {
	id    RegionID
	cells []Value
}

func newObjectRegion(id RegionID, size uint32) *ObjectRegion {
	return &ObjectRegion{id: id, cells: make([]Value, size)}
}

func (r *ObjectRegion) len() uint32 { return uint32(len(r.cells)) }

// Read loads the Value at offset, or a BoundsError if out of range.
func (r *ObjectRegion) Read(offset uint32) (Value, error) {
	if offset >= r.len() {
		return Value{}, &Fault{Kind: BoundsError, Message: boundsMsg(r.id, offset, r.len())}
	}
	return r.cells[offset], nil
}

// Write stores v at offset, or a BoundsError if out of range.
func (r *ObjectRegion) Write(offset uint32, v Value) error {
	if offset >= r.len() {
		return &Fault{Kind: BoundsError, Message: boundsMsg(r.id, offset, r.len())}
	}
	r.cells[offset] = v
	return nil
}

func (r *ObjectRegion) reset() {
	for i := range r.cells {
		r.cells[i] = Null
	}
}

func boundsMsg(id RegionID, offset, size uint32) string {
	return id.String() + " access out of bounds: offset=" + strconv.FormatUint(uint64(offset), 10) +
		" size=" + strconv.FormatUint(uint64(size), 10)
}
