package gdbmi

// SessionContext is the plain-value configuration snapshot a Session is
// constructed from. It carries no viper/cobra dependency — those only
// exist in the cmd/ front-end, which resolves flags/env/config-file values
// into a SessionContext before calling NewSession, the same split
// sidkshatriya-dontbug keeps between cmd/ (viper-aware) and engine/
// (plain values in, DebugEngineState out).
type SessionContext struct {
	// GdbPath is the gdb executable to spawn, resolved from PATH if empty.
	GdbPath string
	// GdbArgs are extra arguments appended after the MI interpreter flag.
	GdbArgs []string
	// MinGdbVersion gates the version check in version.go; defaults to
	// "7.0.0" when empty, matching spec.md §7.6.
	MinGdbVersion string

	// Executable is the inferior binary to debug, or empty for a
	// core-file/attach-only session.
	Executable string
	// ExecArguments is passed verbatim to "exec-arguments".
	ExecArguments string
	// WorkingDirectory, if set, becomes "environment-cd" before startProgram.
	WorkingDirectory string
	// Environment holds extra "VAR=value" pairs, each queued by
	// StartProgram as "gdb-set environment VAR=value".
	Environment []string

	// CoreFile records the core dump a front-end passes to
	// ExamineCoreFile; Session itself does not read it.
	CoreFile string
	// AttachPID records the pid a front-end passes to AttachToProcess;
	// Session itself does not read it.
	AttachPID int

	// UseExternalTerminal, when true, makes StartProgram skip opening a
	// PTY and sending "tty", so the inferior shares gdb's terminal. No
	// external terminal emulator is launched.
	UseExternalTerminal bool

	// BreakOnStart adds a breakpoint at "main" before the first run if no
	// user breakpoint already exists, matching startProgram's
	// "Break on Start" option.
	BreakOnStart bool

	// DisplayStaticMembers and AsmDemangle mirror the two boolean
	// configuration toggles startProgram reads before queueing
	// "gdb-set print static-members"/"gdb-set print asm-demangle".
	DisplayStaticMembers bool
	AsmDemangle          bool

	// PrettyPrinterPath, if set, is sourced via the printers-path two-
	// command sequence (SPEC_FULL's "Optional printers path" supplement).
	PrettyPrinterPath string

	// DisassemblyFlavor selects "att" or "intel"; empty means leave gdb's
	// default in place.
	DisassemblyFlavor string
}

func (c *SessionContext) minVersionConstraint() string {
	if c.MinGdbVersion == "" {
		return "7.0.0"
	}
	return c.MinGdbVersion
}
