package debugger

// Display window sizes for the inspection commands.
const (
	// RegisterDisplayColumns is a register-table column count; "info
	// registers" does not use it and prints one register per line.
	RegisterDisplayColumns = 4

	// CallStackDisplayWindow is the number of call-stack frames shown by
	// "backtrace".
	CallStackDisplayWindow = 16

	// DataStackDisplayWindow is the number of data-stack slots shown by
	// "info stack".
	DataStackDisplayWindow = 8

	// CommandHistorySize bounds how many REPL command lines are retained
	// for the "history" command. Empty-line replay uses the separate
	// Debugger.LastCommand field.
	CommandHistorySize = 1000
)
