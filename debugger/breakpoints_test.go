package debugger

import "testing"

func TestBreakpointManager_AddBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x1000, false)

	if bp == nil {
		t.Fatal("AddBreakpoint returned nil")
	}
	if bp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", bp.ID)
	}
	if bp.Address != 0x1000 {
		t.Errorf("Expected address 0x1000, got 0x%08X", bp.Address)
	}
	if !bp.Enabled {
		t.Error("Breakpoint should be enabled by default")
	}
	if bp.Temporary {
		t.Error("Breakpoint should not be temporary")
	}
	if bp.HitCount != 0 {
		t.Errorf("Initial hit count should be 0, got %d", bp.HitCount)
	}
}

func TestBreakpointManager_AddMultiple(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.AddBreakpoint(0x1000, false)
	bp2 := bm.AddBreakpoint(0x2000, false)

	if bp1.ID == bp2.ID {
		t.Error("Breakpoint IDs should be unique")
	}
	if len(bm.GetAllBreakpoints()) != 2 {
		t.Errorf("Expected 2 breakpoints, got %d", len(bm.GetAllBreakpoints()))
	}
}

func TestBreakpointManager_AddDuplicateUpdatesExisting(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.AddBreakpoint(0x1000, false)
	bp2 := bm.AddBreakpoint(0x1000, true)

	if bp1.ID != bp2.ID {
		t.Error("Duplicate address should update the existing breakpoint")
	}
	if !bp2.Temporary {
		t.Error("Temporary flag not updated")
	}
}

func TestBreakpointManager_DeleteBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x1000, false)

	if err := bm.DeleteBreakpoint(bp.ID); err != nil {
		t.Fatalf("DeleteBreakpoint failed: %v", err)
	}
	if bm.GetBreakpoint(0x1000) != nil {
		t.Error("Breakpoint not deleted")
	}
	if err := bm.DeleteBreakpoint(999); err == nil {
		t.Error("Expected error when deleting non-existent breakpoint")
	}
}

func TestBreakpointManager_SetEnabled(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x1000, false)

	if err := bm.SetEnabled(bp.ID, false); err != nil {
		t.Fatalf("SetEnabled(false) failed: %v", err)
	}
	if bp.Enabled {
		t.Error("Breakpoint not disabled")
	}

	if err := bm.SetEnabled(bp.ID, true); err != nil {
		t.Fatalf("SetEnabled(true) failed: %v", err)
	}
	if !bp.Enabled {
		t.Error("Breakpoint not enabled")
	}
}

func TestBreakpointManager_GetBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x1000, false)
	bm.AddBreakpoint(0x2000, false)

	bp := bm.GetBreakpoint(0x1000)
	if bp == nil {
		t.Fatal("GetBreakpoint returned nil")
	}
	if bp.Address != 0x1000 {
		t.Errorf("Wrong breakpoint returned: got 0x%08X, want 0x1000", bp.Address)
	}
	if bm.GetBreakpoint(0x3000) != nil {
		t.Error("GetBreakpoint should return nil for non-existent address")
	}
}

func TestBreakpointManager_GetAllBreakpoints(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x1000, false)
	bm.AddBreakpoint(0x2000, false)
	bm.AddBreakpoint(0x3000, false)

	if len(bm.GetAllBreakpoints()) != 3 {
		t.Errorf("Expected 3 breakpoints, got %d", len(bm.GetAllBreakpoints()))
	}
}

func TestBreakpointManager_Clear(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x1000, false)
	bm.AddBreakpoint(0x2000, false)

	bm.Clear()

	if len(bm.GetAllBreakpoints()) != 0 {
		t.Errorf("Expected 0 breakpoints after clear, got %d", len(bm.GetAllBreakpoints()))
	}
}

func TestBreakpoint_Temporary(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x1000, true)

	if !bp.Temporary {
		t.Error("Breakpoint should be temporary")
	}
}

func TestBreakpoint_HitCount(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x1000, false)

	if bp.HitCount != 0 {
		t.Errorf("Initial hit count = %d, want 0", bp.HitCount)
	}

	bp.HitCount++
	bp.HitCount++

	if bp.HitCount != 2 {
		t.Errorf("Hit count = %d, want 2", bp.HitCount)
	}
}
