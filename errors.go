package gdbmi

import "fmt"

// ErrorCategory classifies a failure per spec.md section 7's numbered
// error taxonomy.
type ErrorCategory int

const (
	// ErrLaunch covers failures starting the gdb process itself (binary
	// missing, exec permission, PTY allocation).
	ErrLaunch ErrorCategory = iota + 1
	// ErrProtocol covers MI records the parser could not classify or
	// fields a handler expected but did not find.
	ErrProtocol
	// ErrCommand covers a ^error result for a command the caller issued,
	// routed through the default or command-specific error handler.
	ErrCommand
	// ErrVersion covers a gdb whose reported version fails the semver gate.
	ErrVersion
	// ErrState covers a public operation invoked while the session is in
	// a state that forbids it (e.g. queueing a command while
	// DbgNotStarted).
	ErrState
	// ErrProcessExit covers the gdb process itself exiting unexpectedly,
	// as opposed to the inferior exiting.
	ErrProcessExit
	// ErrTimeout covers the graceful-shutdown timer expiring and the
	// process having to be killed.
	ErrTimeout
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrLaunch:
		return "launch"
	case ErrProtocol:
		return "protocol"
	case ErrCommand:
		return "command"
	case ErrVersion:
		return "version"
	case ErrState:
		return "state"
	case ErrProcessExit:
		return "process-exit"
	case ErrTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is the typed error every public Session/driver operation returns
// on failure, carrying enough to let a caller branch on category without
// string matching.
type Error struct {
	Category ErrorCategory
	Op       string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gdbmi: %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("gdbmi: %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(cat ErrorCategory, op, msg string, err error) *Error {
	return &Error{Category: cat, Op: op, Message: msg, Err: err}
}

// noSuchProcess is the exact substring DebugSession::defaultErrorHandler
// special-cases: a command fails because the inferior is already gone, so
// the generic resync path is skipped in favor of going straight to
// programNoApp.
const noSuchProcess = "No such process"
