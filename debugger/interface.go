package debugger

import (
	"fmt"
	"io"

	"github.com/peterh/liner"
)

const prompt = "(cursedvm-dbg) "

// RunCLI drives a line-editing REPL around dbg using peterh/liner for
// history and readline-style editing. It loops until the user quits or
// stdin closes.
func RunCLI(dbg *Debugger) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("Exiting debugger...")
				return nil
			}
			return fmt.Errorf("reading command: %w", err)
		}

		switch input {
		case "quit", "q", "exit":
			fmt.Println("Exiting debugger...")
			return nil
		}

		if input != "" {
			line.AppendHistory(input)
		}

		if err := dbg.ExecuteCommand(input); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		if out := dbg.GetOutput(); out != "" {
			fmt.Print(out)
		}

		if dbg.Running {
			driveUntilPaused(dbg)
		}
	}
}

// driveUntilPaused steps the VM until ShouldBreak fires, a fault occurs,
// or the VM stops (exit or breakpoint-triggered halt). Each pass executes
// one instruction before consulting ShouldBreak, so a single step always
// advances the VM.
func driveUntilPaused(dbg *Debugger) {
	for dbg.Running {
		if err := dbg.VM.Step(); err != nil {
			dbg.Running = false
			fmt.Printf("Fault: %v\n", err)
			return
		}

		if dbg.VM.Stopped {
			dbg.Running = false
			fmt.Printf("Program exited: %v\n", dbg.VM.ExitValue)
			return
		}

		if stop, reason := dbg.ShouldBreak(); stop {
			dbg.Running = false
			pc, _ := dbg.VM.Registers.PC()
			fmt.Printf("Stopped: %s at pc=word %d\n", reason, pc.Offset)
			return
		}
	}
}
