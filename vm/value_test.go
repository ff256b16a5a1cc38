package vm_test

import (
	"testing"

	"github.com/cursedvm/cursedvm/vm"
)

func TestNullHasNoRawView(t *testing.T) {
	if _, err := vm.Null.RawView(); err == nil {
		t.Fatal("expected Null.RawView to fail")
	}
}

func TestExtHasNoRawView(t *testing.T) {
	ext := vm.NewExt(struct{}{})
	if _, err := ext.RawView(); err == nil {
		t.Fatal("expected Ext.RawView to fail")
	}
}

func TestIntRawViewIsBitExact(t *testing.T) {
	v := vm.NewInt(-1)
	raw, err := v.RawView()
	if err != nil {
		t.Fatal(err)
	}
	if raw != 0xFFFFFFFF {
		t.Fatalf("raw view of Int(-1) = %#x, want 0xFFFFFFFF", raw)
	}
}

func TestFloatRawViewIsBitIdenticalToIEEE754Storage(t *testing.T) {
	v := vm.NewFloat(1.5)
	raw, err := v.RawView()
	if err != nil {
		t.Fatal(err)
	}
	if raw != 0x3FC00000 {
		t.Fatalf("raw view of Float(1.5) = %#x, want 0x3fc00000", raw)
	}
}

func TestExtEqualityIsHandleIdentity(t *testing.T) {
	handle := &struct{ n int }{n: 1}
	a := vm.NewExt(handle)
	b := vm.NewExt(handle)
	other := vm.NewExt(&struct{ n int }{n: 1})

	av, _ := a.Ext()
	bv, _ := b.Ext()
	ov, _ := other.Ext()
	if av != bv {
		t.Fatal("two Ext values wrapping the same handle should be equal")
	}
	if av == ov {
		t.Fatal("two Ext values wrapping distinct handles should not be equal")
	}
}

func TestPtrCarriesItsRegionForComparisonPurposes(t *testing.T) {
	a := vm.NewPtr(vm.RegionWord, 4)
	b := vm.NewPtr(vm.RegionObject, 4)

	pa, _ := a.AsPtr()
	pb, _ := b.AsPtr()
	if pa.Region == pb.Region {
		t.Fatal("pointers into distinct regions must not compare as the same region")
	}
	if pa.Offset != pb.Offset {
		t.Fatal("expected matching offsets for this scenario")
	}
}
