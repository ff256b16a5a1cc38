package asm

import (
	"strconv"
	"strings"

	"github.com/cursedvm/cursedvm/vm"
)

// namedRegisters is the fixed register-name table from spec §6: the
// stable contract between assembly source and the VM's 32-slot register
// file (vm/registers.go).
var namedRegisters = map[string]int{
	"ZERO": vm.RegZero,
	"COMP": vm.RegComp,
	"PC":   vm.RegPC,
	"P0":   vm.RegP0,
	"P1":   vm.RegP1,
	"IRSP": vm.RegIRSP,
	"IPOP": vm.RegIPOP,
	"IPTR": vm.RegIPTR,
	"SP":   vm.RegSP,
	"PUSH": vm.RegPUSH,
	"POP":  vm.RegPOP,
}

// parseRegister resolves a register token (the text following a leading
// '$') to a slot index: either a decimal index or a symbolic name from
// namedRegisters.
func parseRegister(tok string) (int, bool) {
	if n, ok := namedRegisters[strings.ToUpper(tok)]; ok {
		return n, true
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 || n > 31 {
		return 0, false
	}
	return n, true
}
