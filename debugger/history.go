package debugger

import (
	"strings"
	"sync"
)

// CommandHistory records the REPL command lines a stepping session has
// executed (step, break, print, backtrace, ...), independent of liner's own
// in-process line-editing history: this one survives GetOutput/Printf
// formatting and is queryable by Search so "history" and repeat-last-line
// behave the same whether the front end is RunCLI's liner prompt or a
// scripted command feed used in tests.
type CommandHistory struct {
	mu       sync.RWMutex
	commands []string
	maxSize  int
	position int // cursor for Previous/Next navigation
}

// NewCommandHistory creates a history bounded to CommandHistorySize entries.
func NewCommandHistory() *CommandHistory {
	return &CommandHistory{
		commands: make([]string, 0, 64),
		maxSize:  CommandHistorySize,
	}
}

// Add records cmd, skipping blanks and immediate repeats (an empty line at
// the prompt replays LastCommand rather than re-entering history itself).
func (h *CommandHistory) Add(cmd string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cmd == "" {
		return
	}
	if len(h.commands) > 0 && h.commands[len(h.commands)-1] == cmd {
		h.position = len(h.commands)
		return
	}

	h.commands = append(h.commands, cmd)
	if len(h.commands) > h.maxSize {
		h.commands = h.commands[len(h.commands)-h.maxSize:]
	}
	h.position = len(h.commands)
}

// Previous moves the navigation cursor back one entry and returns it, or
// "" if already at the oldest command.
func (h *CommandHistory) Previous() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.commands) == 0 || h.position == 0 {
		return ""
	}
	h.position--
	return h.commands[h.position]
}

// Next moves the navigation cursor forward one entry and returns it, or ""
// once the cursor runs off the newest command.
func (h *CommandHistory) Next() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.commands) == 0 {
		return ""
	}
	if h.position >= len(h.commands)-1 {
		h.position = len(h.commands)
		return ""
	}
	h.position++
	return h.commands[h.position]
}

// GetLast returns the most recently executed command without disturbing
// the navigation cursor.
func (h *CommandHistory) GetLast() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.commands) == 0 {
		return ""
	}
	return h.commands[len(h.commands)-1]
}

// GetAll returns the full command history, oldest first.
func (h *CommandHistory) GetAll() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]string, len(h.commands))
	copy(result, h.commands)
	return result
}

// Clear empties the history. The "reset" command does not call it.
func (h *CommandHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.commands = h.commands[:0]
	h.position = 0
}

// Size returns the number of commands currently retained.
func (h *CommandHistory) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.commands)
}

// Search returns every recorded command whose first word matches verb
// exactly (so "history break" lists only "break ..." lines, not
// "backtrace" or "tbreak" ones too) — used by the "history" command.
func (h *CommandHistory) Search(verb string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var results []string
	for _, cmd := range h.commands {
		head, _, _ := strings.Cut(cmd, " ")
		if head == verb {
			results = append(results, cmd)
		}
	}
	return results
}
