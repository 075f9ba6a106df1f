package gdbmi

// CommandType orders commands into the ranges the command queue's
// rationalization policy (queue.go) inspects. The constants are ordered so
// that the execution-moving check is the integer range [ExecAbort,ExecJump]
// and the variable and stack query checks are the ranges
// [VarEvaluateExpression,VarUpdate] and [StackListArguments,StackInfoDepth].
type CommandType int

const (
	// Execution commands. ExecAbort through ExecJump can cause the
	// inferior to resume running, invalidating previously queued
	// variable/stack queries; ExecArguments and ExecShowArguments do not.
	ExecAbort CommandType = iota
	ExecUntil
	ExecRun
	ExecNext
	ExecNextInstruction
	ExecStep
	ExecStepInstruction
	ExecFinish
	ExecContinue
	ExecInterrupt
	ExecJump
	ExecArguments
	ExecShowArguments

	// Variable queries, invalidated by execution-moving commands.
	VarEvaluateExpression
	VarListChildren
	VarUpdate

	// Stack queries. All but StackSelectFrame are invalidated by
	// execution-moving commands.
	StackListArguments
	StackListLocals
	StackListFrames
	StackInfoFrame
	StackInfoDepth
	StackSelectFrame

	// Breakpoint management.
	BreakInsert
	BreakDelete
	BreakEnable
	BreakDisable
	BreakCondition
	BreakAfter
	BreakWatch
	BreakList
	BreakInfo

	// Target lifecycle.
	TargetAttach
	TargetDetach
	TargetKill
	FileExecAndSymbols
	FileSymbolFile
	CoreFile

	// Environment and GDB self-configuration.
	EnvironmentCd
	EnvironmentDirectory
	GdbSet
	GdbShow
	GdbExit

	// Data/disassembly and ad-hoc pass-through.
	DataDisassemble
	DataEvaluateExpression
	DataReadMemory

	// Commands that do not go over the wire at all; they exist purely to
	// carry a handler through the queue (spec.md's sentinel commands).
	Sentinel

	// A verbatim user-typed CLI command whose console output should be
	// surfaced to the user instead of consumed internally.
	CliUserCommand

	// An internal CLI command whose console output is consumed internally
	// and not forwarded to the user.
	CliInternalCommand
)

// IsExecutionMoving reports whether a command type can cause the inferior
// to transition out of its current stopped position: the [ExecAbort,
// ExecJump] range of this enum. ExecArguments/ExecShowArguments are
// excluded, matching
// spec.md's note that setting the program's arguments does not itself
// move execution.
func (t CommandType) IsExecutionMoving() bool {
	return t >= ExecAbort && t <= ExecJump
}

// isContinuingExec reports whether t is specifically a continue/until style
// resume, the narrower range that the original removeObsoleteExecCommands
// uses to decide whether to drop sibling exec commands from the queue.
func (t CommandType) isContinuingExec() bool {
	return t == ExecContinue || t == ExecUntil
}

func (t CommandType) isVariableQuery() bool {
	return t >= VarEvaluateExpression && t <= VarListChildren || t == VarUpdate
}

func (t CommandType) isStackListQuery() bool {
	return t >= StackListArguments && t <= StackInfoDepth
}

// CommandFlag is a bitfield of scheduling/behavior hints attached to a
// Command, mirroring GDBCommand's flag bits in the original implementation.
type CommandFlag int

// CmdNone carries no special behavior.
const CmdNone CommandFlag = 0

const (
	// CmdImmediately jumps the command to the front of the queue and counts
	// toward the driver's "have an immediate command" check.
	CmdImmediately CommandFlag = 1 << iota
	// CmdInterrupt additionally asks the driver to interrupt a running
	// inferior before this command is sent, if necessary.
	CmdInterrupt
	// CmdMaybeStartsRunning marks a command whose result might put the
	// inferior back into the running state (so the driver should expect an
	// AppRunning transition even absent an explicit *running record).
	CmdMaybeStartsRunning
	// CmdTemporaryRun marks the commands of a jump-to-address sequence
	// (tbreak+jump). Neither the driver nor the breakpoint controller reads
	// it; the temporary breakpoint is tracked like any other.
	CmdTemporaryRun
	// CmdHandlesError tells the driver this command supplies its own error
	// handler and the default error handler (spec.md §7.2) should not run.
	CmdHandlesError
	// CmdStateReloading names a command issued as part of a
	// program_state_changed reload. Neither the queue nor the session sets
	// it on any command; Session.defaultErrorHandler decides whether to
	// resync from Session.reloadPending at the time of the error instead.
	CmdStateReloading
)

// Has reports whether f contains all the bits in mask.
func (f CommandFlag) Has(mask CommandFlag) bool {
	return f&mask == mask
}

// ResultHandler processes the Record that answers a Command. It is called
// on the driver's single event-loop goroutine; handlers must not block.
type ResultHandler func(Record)

// Command is one entry in the CommandQueue: an MI command string (or,
// for Sentinel commands, no wire text at all) plus the bookkeeping the
// queue and driver need to correlate, invalidate, and dispatch it.
type Command struct {
	// Token is assigned by the driver immediately before transmission; it
	// is zero while the command is still queued.
	Token int64

	Type CommandType
	Flag CommandFlag

	// Text is the literal MI command line, without the leading token or
	// trailing newline (the driver adds both). Empty for Sentinel commands.
	Text string

	// Thread and Frame record an execution context (-1 means none). They
	// are compared by the queue's duplicate removal; the driver does not
	// add them to the transmitted text and does not fill in a default
	// context from FrameStackModel.
	Thread int
	Frame  int

	// Handler is invoked with the eventual result record. May be nil for
	// fire-and-forget commands.
	Handler ResultHandler

	// ErrorHandler, when non-nil, receives an ^error result for this
	// command in place of Handler, unless CmdHandlesError is set, in which
	// case Handler receives the error result as well.
	ErrorHandler ResultHandler
}

// NewCommand builds a Command with the given type, MI command text and
// flags, ready to enqueue.
func NewCommand(t CommandType, text string, flag CommandFlag, handler ResultHandler) *Command {
	return &Command{
		Type:    t,
		Text:    text,
		Flag:    flag,
		Thread:  -1,
		Frame:   -1,
		Handler: handler,
	}
}

// NewSentinel builds a zero-transmission command whose only purpose is to
// run handler once the queue reaches it, e.g. to schedule breakpoint
// initialization ahead of an exec-run. Grounded on spec.md's "sentinel
// commands" concept (no analogue transmits over the wire; the driver
// recognizes Type == Sentinel and invokes Handler without writing to gdb).
func NewSentinel(handler ResultHandler) *Command {
	return &Command{
		Type:    Sentinel,
		Thread:  -1,
		Frame:   -1,
		Handler: handler,
	}
}

func (c *Command) needsDefaultContext() bool {
	return c.Type.isVariableQuery() || c.Type.isStackListQuery() || c.Type == StackSelectFrame
}
