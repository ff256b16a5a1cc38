// Package stats implements a performance-statistics sink for CursedVM,
// tallying per-class instruction counts and exporting summaries.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/cursedvm/cursedvm/vm"
)

// ClassStats tracks how often one instruction class executed.
type ClassStats struct {
	Class byte
	Name  string
	Count uint64
}

// Sink implements vm.StatsSink, tallying instruction classes executed
// over a run. Attach it to a VM via vm.VM.Stats.
type Sink struct {
	TotalInstructions uint64
	ExecutionTime     time.Duration

	counts    [16]uint64
	startTime time.Time
}

// NewSink creates an empty statistics sink.
func NewSink() *Sink {
	return &Sink{}
}

// Start resets the sink and begins timing from now.
func (s *Sink) Start() {
	s.startTime = time.Now()
	s.TotalInstructions = 0
	s.counts = [16]uint64{}
}

// Count implements vm.StatsSink.
func (s *Sink) Count(class byte) {
	s.TotalInstructions++
	if int(class) < len(s.counts) {
		s.counts[class]++
	}
}

// Finalize stops the run clock; call after execution halts and before
// exporting.
func (s *Sink) Finalize() {
	s.ExecutionTime = time.Since(s.startTime)
}

// ClassCounts returns per-class counts, most frequent first.
func (s *Sink) ClassCounts() []ClassStats {
	out := make([]ClassStats, 0, len(s.counts))
	for class, count := range s.counts {
		if count == 0 {
			continue
		}
		out = append(out, ClassStats{Class: byte(class), Name: className(byte(class)), Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// ExportJSON writes a JSON summary to w.
func (s *Sink) ExportJSON(w io.Writer) error {
	data := map[string]interface{}{
		"total_instructions": s.TotalInstructions,
		"execution_time_ms":  s.ExecutionTime.Milliseconds(),
		"class_counts":       s.ClassCounts(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes a CSV summary to w.
func (s *Sink) ExportCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Class", "Count"}); err != nil {
		return err
	}
	for _, cs := range s.ClassCounts() {
		if err := writer.Write([]string{cs.Name, fmt.Sprintf("%d", cs.Count)}); err != nil {
			return err
		}
	}
	return nil
}

// String returns a human-readable summary.
func (s *Sink) String() string {
	var sb strings.Builder
	sb.WriteString("Execution Statistics\n")
	sb.WriteString("=====================\n\n")
	sb.WriteString(fmt.Sprintf("Total Instructions: %d\n", s.TotalInstructions))
	sb.WriteString(fmt.Sprintf("Execution Time:     %v\n\n", s.ExecutionTime))
	for _, cs := range s.ClassCounts() {
		pct := float64(cs.Count) / float64(s.TotalInstructions) * 100
		sb.WriteString(fmt.Sprintf("  %-6s %8d (%.1f%%)\n", cs.Name, cs.Count, pct))
	}
	return sb.String()
}

func className(class byte) string {
	switch class {
	case vm.ClassNop:
		return "nop"
	case vm.ClassExit:
		return "exit"
	case vm.ClassPush:
		return "push"
	case vm.ClassPop:
		return "pop"
	case vm.ClassRet:
		return "ret"
	case vm.ClassEnv:
		return "env"
	case vm.ClassB:
		return "b"
	case vm.ClassCmp:
		return "cmp"
	case vm.ClassCvt:
		return "cvt"
	case vm.ClassNum:
		return "num"
	case vm.ClassMem:
		return "mem"
	case vm.ClassSys:
		return "sys"
	default:
		return fmt.Sprintf("?%d", class)
	}
}
