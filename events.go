package gdbmi

// EventKind enumerates the coarse notifications DebugSession::raiseEvent
// emits to its host. A couple of these toggle the session's internal
// stateReloadInProgress_ bookkeeping (see Session.raiseEvent) in addition
// to reaching the sink.
type EventKind int

const (
	EventConnectedToProgram EventKind = iota
	EventProgramStateChanged
	EventProgramExited
	EventDebuggerExited
	EventDebuggerBusy
	EventDebuggerReady
	EventProgramRunning
)

// MessageSink is the uniform notification contract a host front-end
// implements to observe a Session, mirroring the set of signals
// DebugSession emits to its IDE host (showMessage, stateChanged,
// application*Lines, showStepInSource, raiseFramestackViews, finished,
// reset, ...). Every method must return promptly. Most calls come
// synchronously from the driver's single event-loop goroutine; PTY output
// lines (ApplicationStandardOutputLines) arrive from the PTY reader
// goroutine, and the StateChanged/Finished calls made once gdb has exited
// come from the shutdown goroutine.
type MessageSink interface {
	// ShowMessage surfaces a human-readable status line, as GDB console
	// chatter or a session-level notice.
	ShowMessage(text string)

	// GdbUserCommandStdout carries console output produced by a
	// user-typed CLI command (CliUserCommand).
	GdbUserCommandStdout(text string)
	// GdbInternalCommandStdout carries console output produced by an
	// internally-issued command (CliInternalCommand), normally suppressed
	// from the user-visible console.
	GdbInternalCommandStdout(text string)

	// ApplicationStandardOutputLines/ErrorLines carry the inferior's own
	// stdout/stderr, read from the PTY channel.
	ApplicationStandardOutputLines(lines []string)
	ApplicationStandardErrorLines(lines []string)

	// StateChanged reports a new coarse SessionState.
	StateChanged(old, new SessionState)
	// GdbStateChanged reports the raw DbgState bitfield transition, for
	// front-ends that want finer detail than SessionState.
	GdbStateChanged(old, new DbgState)

	// ShowStepInSource asks the front-end to highlight a source location
	// after a step/stop.
	ShowStepInSource(file string, line int, addr string)
	// ShowStepInDisassemble asks the front-end to highlight an address
	// when no source line is available for the stop location.
	ShowStepInDisassemble(addr string)

	// RaiseFramestackViews asks the front-end to bring frame/variable
	// views to the foreground, e.g. on the first stop after a run.
	RaiseFramestackViews()
	// RaiseGdbConsoleViews asks the front-end to surface the raw console.
	RaiseGdbConsoleViews()

	// Finished reports that the debugging session has fully ended and the
	// gdb process has exited.
	Finished()
	// Reset asks the front-end to clear any per-session UI state
	// (breakpoint markers, variable trees) ahead of a restart.
	Reset()

	// Event carries the coarse raiseEvent notifications that don't fit the
	// richer methods above.
	Event(kind EventKind)
}

// NopSink implements MessageSink with no-op methods, useful as an
// embeddable base for front-ends or tests that only care about a few
// notifications.
type NopSink struct{}

func (NopSink) ShowMessage(string)                                  {}
func (NopSink) GdbUserCommandStdout(string)                         {}
func (NopSink) GdbInternalCommandStdout(string)                     {}
func (NopSink) ApplicationStandardOutputLines([]string)             {}
func (NopSink) ApplicationStandardErrorLines([]string)              {}
func (NopSink) StateChanged(old, new SessionState)                  {}
func (NopSink) GdbStateChanged(old, new DbgState)                   {}
func (NopSink) ShowStepInSource(file string, line int, addr string) {}
func (NopSink) ShowStepInDisassemble(addr string)                   {}
func (NopSink) RaiseFramestackViews()                               {}
func (NopSink) RaiseGdbConsoleViews()                               {}
func (NopSink) Finished()                                           {}
func (NopSink) Reset()                                              {}
func (NopSink) Event(EventKind)                                     {}
