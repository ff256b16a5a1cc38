package stats_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cursedvm/cursedvm/internal/stats"
	"github.com/cursedvm/cursedvm/vm"
)

func TestSink_Count(t *testing.T) {
	s := stats.NewSink()
	s.Start()

	s.Count(vm.ClassNum)
	s.Count(vm.ClassNum)
	s.Count(vm.ClassExit)

	if s.TotalInstructions != 3 {
		t.Errorf("TotalInstructions = %d, want 3", s.TotalInstructions)
	}

	counts := s.ClassCounts()
	if len(counts) != 2 {
		t.Fatalf("expected 2 distinct classes, got %d", len(counts))
	}
	if counts[0].Class != vm.ClassNum || counts[0].Count != 2 {
		t.Errorf("top class = %+v, want num/2", counts[0])
	}
}

func TestSink_ExportJSON(t *testing.T) {
	s := stats.NewSink()
	s.Start()
	s.Count(vm.ClassMem)
	s.Finalize()

	var buf bytes.Buffer
	if err := s.ExportJSON(&buf); err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if data["total_instructions"].(float64) != 1 {
		t.Errorf("total_instructions = %v, want 1", data["total_instructions"])
	}
}

func TestSink_ExportCSV(t *testing.T) {
	s := stats.NewSink()
	s.Start()
	s.Count(vm.ClassB)
	s.Finalize()

	var buf bytes.Buffer
	if err := s.ExportCSV(&buf); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Class,Count") {
		t.Errorf("CSV missing header: %q", buf.String())
	}
}

func TestSink_String(t *testing.T) {
	s := stats.NewSink()
	s.Start()
	s.Count(vm.ClassCmp)
	s.Finalize()

	out := s.String()
	if !strings.Contains(out, "cmp") {
		t.Errorf("String() missing class name: %q", out)
	}
}
