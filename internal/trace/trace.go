// Package trace implements an execution trace sink for CursedVM, recording
// one entry per instruction and writing a human-readable log on Flush.
package trace

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cursedvm/cursedvm/vm"
)

// Entry is a single recorded instruction execution.
type Entry struct {
	Sequence uint64
	PC       uint32
	Class    byte
	Raw      uint32
	Duration time.Duration
}

// Sink implements vm.TraceSink, buffering entries for later Flush. Attach
// it to a VM via vm.VM.Trace.
type Sink struct {
	Writer        io.Writer
	IncludeTiming bool
	MaxEntries    int

	entries   []Entry
	sequence  uint64
	startTime time.Time
}

// NewSink creates a trace sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{
		Writer:        w,
		IncludeTiming: true,
		MaxEntries:    100000,
		entries:       make([]Entry, 0, 1000),
	}
}

// Start resets the sink and begins timing from now.
func (s *Sink) Start() {
	s.startTime = time.Now()
	s.entries = s.entries[:0]
	s.sequence = 0
}

// Record implements vm.TraceSink.
func (s *Sink) Record(pc uint32, ins vm.Instruction) {
	if s.MaxEntries > 0 && len(s.entries) >= s.MaxEntries {
		return
	}

	entry := Entry{
		Sequence: s.sequence,
		PC:       pc,
		Class:    ins.Class,
		Raw:      ins.Raw,
	}
	if s.IncludeTiming {
		entry.Duration = time.Since(s.startTime)
	}
	s.entries = append(s.entries, entry)
	s.sequence++
}

// Flush writes every buffered entry to Writer.
func (s *Sink) Flush() error {
	if s.Writer == nil {
		return nil
	}
	for _, e := range s.entries {
		if err := s.writeEntry(e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) writeEntry(e Entry) error {
	line := fmt.Sprintf("[%06d] word %06d: %-6s raw=0x%08X", e.Sequence, e.PC, className(e.Class), e.Raw)
	if s.IncludeTiming {
		line += fmt.Sprintf(" | %v", e.Duration)
	}
	line += "\n"
	_, err := s.Writer.Write([]byte(line))
	return err
}

// GetEntries returns every buffered entry.
func (s *Sink) GetEntries() []Entry {
	return s.entries
}

// Clear discards every buffered entry.
func (s *Sink) Clear() {
	s.entries = s.entries[:0]
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
		return strings.ToUpper(fmt.Sprintf("?%d", class))
	}
}
