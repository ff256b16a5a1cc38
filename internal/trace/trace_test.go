package trace_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cursedvm/cursedvm/internal/trace"
	"github.com/cursedvm/cursedvm/vm"
)

func TestSink_Record(t *testing.T) {
	var buf bytes.Buffer
	s := trace.NewSink(&buf)
	s.Start()

	ins := vm.Decode(0x90000000) // class 9 (num)
	s.Record(42, ins)

	entries := s.GetEntries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].PC != 42 {
		t.Errorf("PC = %d, want 42", entries[0].PC)
	}
	if entries[0].Class != vm.ClassNum {
		t.Errorf("Class = %d, want %d", entries[0].Class, vm.ClassNum)
	}
}

func TestSink_MaxEntries(t *testing.T) {
	var buf bytes.Buffer
	s := trace.NewSink(&buf)
	s.MaxEntries = 2
	s.Start()

	for i := 0; i < 5; i++ {
		s.Record(uint32(i), vm.Decode(0))
	}

	if len(s.GetEntries()) != 2 {
		t.Errorf("expected entries capped at 2, got %d", len(s.GetEntries()))
	}
}

func TestSink_Flush(t *testing.T) {
	var buf bytes.Buffer
	s := trace.NewSink(&buf)
	s.Start()

	s.Record(0, vm.Decode(0x00000000)) // nop
	s.Record(1, vm.Decode(0x10000000)) // exit

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "nop") || !strings.Contains(out, "exit") {
		t.Errorf("flushed output missing mnemonics: %q", out)
	}
}

func TestSink_Clear(t *testing.T) {
	var buf bytes.Buffer
	s := trace.NewSink(&buf)
	s.Start()
	s.Record(0, vm.Decode(0))
	s.Clear()

	if len(s.GetEntries()) != 0 {
		t.Errorf("expected no entries after Clear, got %d", len(s.GetEntries()))
	}
}
