package gdbmi

import (
	"context"
	"fmt"
	"log"
)

// NotificationHandler receives every async-exec (*stopped/*running) and
// async-notify (=thread-group-started, ...) record the driver sees,
// independent of whatever command happens to be in flight. Session wires
// this to its own stop-record handling and to the feature controllers.
type NotificationHandler func(Record)

// StreamHandler receives console/target/log stream text as it arrives.
type StreamHandler func(kind RecordKind, text string)

// Driver is the single-writer protocol engine described in spec.md §4.4:
// it owns the process channel, the command queue, and the DbgState
// bitfield, and is the only thing that ever calls ProcessChannel.Send.
// Everything else communicates with it by enqueuing commands or reading
// its published state. Grounded on ulrichSchreiner-gdbmi's NewGDB
// dispatch goroutine (select over parsed-record channels, correlate by
// token) generalized into the exact executeCmd/gdbReady/ensureGdbListening
// algorithm from debugsession.cpp.
type Driver struct {
	proc  gdbTransport
	queue *CommandQueue

	state     DbgState
	nextToken int64
	inFlight  *Command

	notify NotificationHandler
	stream StreamHandler

	logger *log.Logger

	cmds chan func()
	done chan struct{}
}

// NewDriver wires a Driver around an already-started ProcessChannel. The
// caller supplies notify/stream callbacks before calling Run.
func NewDriver(proc gdbTransport, notify NotificationHandler, stream StreamHandler, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		proc:   proc,
		queue:  NewCommandQueue(),
		state:  DbgNotStarted | AppNotStarted,
		notify: notify,
		stream: stream,
		logger: logger,
		cmds:   make(chan func(), 64),
		done:   make(chan struct{}),
	}
}

// State returns the current DbgState. Safe to call from any goroutine
// that is not itself already running on the driver's event loop; it hops
// onto the loop and waits for the result, which would deadlock if called
// from a Handler/ErrorHandler/NotificationHandler/StreamHandler (those
// already run inline on the loop — see stateDirect).
func (d *Driver) State() DbgState {
	result := make(chan DbgState, 1)
	d.post(func() { result <- d.state })
	return <-result
}

// stateDirect returns the current DbgState without hopping through the
// loop. Only safe to call from code that is already executing on the
// driver's event-loop goroutine — Driver's own internals, and any Session
// callback invoked as a Handler/ErrorHandler/NotificationHandler/
// StreamHandler, since Run dispatches all of those synchronously and
// in-line (see Run/handleLine/handleResult).
func (d *Driver) stateDirect() DbgState {
	return d.state
}

// setStateDirect ORs mask into the state without hopping through the
// loop; same on-loop-only caveat as stateDirect.
func (d *Driver) setStateDirect(mask DbgState) {
	d.state = d.state.On(mask)
}

// clearStateDirect clears mask from the state without hopping through
// the loop; same on-loop-only caveat as stateDirect.
func (d *Driver) clearStateDirect(mask DbgState) {
	d.state = d.state.Off(mask)
}

// enqueueDirect runs QueueCommand's body without hopping through the
// loop; same on-loop-only caveat as stateDirect. Used by Session
// callbacks that need to queue a follow-up command (e.g. the
// watchpoint-scope re-continue, or stopDebugger's own gdb-exit) while
// already running inline on the loop.
func (d *Driver) enqueueDirect(cmd *Command, pos QueuePosition) error {
	if d.state.Has(DbgNotStarted) {
		return newError(ErrState, "QueueCommand", "gdb has not been started", nil)
	}
	d.queue.Enqueue(cmd, pos)
	d.state = d.state.On(DbgBusy)
	d.executeNext()
	return nil
}

// enqueueDirectDefault is enqueueDirect's QueueAtFront/QueueAtEnd
// selection, mirroring Enqueue.
func (d *Driver) enqueueDirectDefault(cmd *Command) error {
	pos := QueueAtEnd
	if cmd.Flag.Has(CmdImmediately) {
		pos = QueueAtFront
	}
	return d.enqueueDirect(cmd, pos)
}

// clearQueueDirect empties the pending queue without hopping through the
// loop; same on-loop-only caveat as stateDirect.
func (d *Driver) clearQueueDirect() {
	d.queue.Clear()
}

// post schedules fn to run on the driver's single event-loop goroutine.
func (d *Driver) post(fn func()) {
	select {
	case d.cmds <- fn:
	case <-d.done:
	}
}

// Run is the event loop: it multiplexes incoming gdb output lines against
// externally posted work (command submissions, state queries) until ctx
// is cancelled or the process channel's line stream closes.
func (d *Driver) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-d.proc.Lines():
			if !ok {
				return
			}
			d.handleLine(line)
		case err := <-d.proc.Errors():
			d.logger.Printf("process channel error: %v", err)
		case fn := <-d.cmds:
			fn()
		}
	}
}

func (d *Driver) handleLine(line string) {
	rec, err := ParseLine(line)
	if err != nil {
		d.logger.Printf("parse error: %v", err)
		return
	}
	switch rec.Kind {
	case RecordResult:
		d.handleResult(rec)
	case RecordAsyncExec, RecordAsyncNotify:
		if d.notify != nil {
			d.notify(rec)
		}
	case RecordStreamConsole, RecordStreamTarget, RecordStreamLog:
		if d.stream != nil {
			d.stream(rec.Kind, rec.Text)
		}
	case RecordPrompt:
		// The prompt marks gdb ready for another command; executeCmd is
		// driven from command completion instead of the prompt in this
		// implementation, since every command's ^result already signals
		// that readiness one line earlier.
	}
}

func (d *Driver) handleResult(rec Record) {
	cmd := d.inFlight
	if cmd == nil || rec.Token != cmd.Token {
		d.logger.Printf("result for unknown token %d (in-flight: %v)", rec.Token, cmd != nil)
		return
	}
	d.inFlight = nil

	if rec.ResultClass == ResultRunning || cmd.Flag.Has(CmdMaybeStartsRunning) {
		d.state = d.state.On(AppRunning)
	}

	if rec.ResultClass == ResultError && !cmd.Flag.Has(CmdHandlesError) && cmd.ErrorHandler != nil {
		cmd.ErrorHandler(rec)
	} else if cmd.Handler != nil {
		cmd.Handler(rec)
	}

	d.onReady()
}

// QueueCommand enqueues cmd per pos and, if Send is not already in flight
// for another command, attempts to dispatch immediately. Returns an error
// if the session has not started gdb yet, per queueCmd's DbgNotStarted
// rejection (SPEC_FULL supplement).
func (d *Driver) QueueCommand(cmd *Command, pos QueuePosition) error {
	result := make(chan error, 1)
	d.post(func() {
		result <- d.enqueueDirect(cmd, pos)
	})
	return <-result
}

// executeNext implements DebugSession::executeCmd: it ensures gdb is
// listening if an immediate command is waiting behind a running inferior,
// then pops and transmits the next command if nothing is currently in
// flight.
func (d *Driver) executeNext() {
	if d.state.Has(DbgNotListening) && d.queue.HasImmediate() {
		d.ensureListening()
	}
	if d.inFlight != nil {
		return
	}
	if !d.isReady() {
		return
	}
	cmd := d.queue.NextCommand()
	if cmd == nil {
		return
	}

	if cmd.Flag.Has(CmdInterrupt) {
		_ = d.proc.Interrupt()
		d.state = d.state.On(InterruptSent)
	}

	if cmd.Flag&(CmdMaybeStartsRunning|CmdInterrupt) != 0 {
		d.state = d.state.Off(AutomaticContinue)
	}
	if cmd.Flag.Has(CmdMaybeStartsRunning) {
		d.state = d.state.On(DbgNotListening)
	}

	if cmd.Type == Sentinel {
		if cmd.Handler != nil {
			cmd.Handler(Record{})
		}
		d.executeNext()
		return
	}

	if cmd.Text == "" {
		d.logger.Printf("dropping command with empty text (type %v)", cmd.Type)
		d.executeNext()
		return
	}

	d.nextToken++
	cmd.Token = d.nextToken
	d.inFlight = cmd

	line := fmt.Sprintf("%d%s", cmd.Token, cmd.Text)
	if err := d.proc.Send(line); err != nil {
		d.logger.Printf("send error: %v", err)
		d.inFlight = nil
	}
}

// isReady reports whether the driver may transmit another command: gdb
// must have started, and must not currently be waiting out a "not
// listening" window behind a running inferior with no immediate command
// pending.
func (d *Driver) isReady() bool {
	if d.state.Has(DbgNotStarted) || d.state.Has(ShuttingDown) {
		return false
	}
	if d.state.Has(DbgNotListening) {
		return false
	}
	return true
}

// ensureListening interrupts gdb so it can respond to an immediate
// command even though the inferior is currently running, per
// DebugSession::ensureGdbListening. If the inferior is running, the
// interrupt-induced stop must be auto-continued once the immediate
// command and anything queued behind it have drained.
func (d *Driver) ensureListening() {
	_ = d.proc.Interrupt()
	d.state = d.state.On(InterruptSent)
	if d.state.Has(AppRunning) {
		d.state = d.state.On(AutomaticContinue)
	}
	d.state = d.state.Off(DbgNotListening)
}

// onReady runs every time a command's result has been delivered and the
// driver might have nothing left in flight. With nothing in flight it makes
// a two-way check: if AutomaticContinue is set it re-queues an
// exec-continue (unless the inferior is already running) and clears the
// flag; otherwise it clears DbgBusy. It does not deliver a pending
// program_state_changed reload and does not raise debugger_ready.
func (d *Driver) onReady() {
	d.executeNext()
	if d.inFlight != nil {
		// Another command was already queued and dispatched.
		return
	}
	if d.state.Has(AutomaticContinue) {
		if !d.state.Has(AppRunning) {
			cont := NewCommand(ExecContinue, " -exec-continue", CmdMaybeStartsRunning, nil)
			d.queue.Enqueue(cont, QueueAtFront)
			d.state = d.state.Off(AutomaticContinue)
			d.executeNext()
		} else {
			d.state = d.state.Off(AutomaticContinue)
		}
		return
	}
	d.state = d.state.Off(DbgBusy)
}

// Enqueue is a convenience wrapper for QueueCommand(cmd, QueueAtEnd),
// except for CmdImmediately commands which go to the front. Callers
// already running on the loop must use enqueueDirectDefault instead, or
// this deadlocks (see State's doc comment).
func (d *Driver) Enqueue(cmd *Command) error {
	pos := QueueAtEnd
	if cmd.Flag.Has(CmdImmediately) {
		pos = QueueAtFront
	}
	return d.QueueCommand(cmd, pos)
}

// MarkStarted clears DbgNotStarted once gdb's process is running
// (AppNotStarted stays set), mirroring
// DebugSession::startDebugger's ordering (flags cleared right after
// gdb->start(), before the version/width/signal startup commands are
// even sent).
func (d *Driver) MarkStarted() {
	d.post(func() {
		d.state = d.state.Off(DbgNotStarted)
	})
}

// SetState ORs mask into the current state; used by Session to manage
// flags (Attached, Core, ShuttingDown, ...) that the driver itself does
// not set as a side effect of command execution. Callers already running
// on the loop (Handler/ErrorHandler/NotificationHandler/StreamHandler
// implementations) must use setStateDirect instead, or this deadlocks.
func (d *Driver) SetState(mask DbgState) {
	d.post(func() { d.setStateDirect(mask) })
}

// ClearState clears mask from the current state. Same on-loop caveat as
// SetState — use clearStateDirect from inside a handler.
func (d *Driver) ClearState(mask DbgState) {
	d.post(func() { d.clearStateDirect(mask) })
}

// ClearQueue empties the pending command queue without running handlers,
// used by Session.stopDebugger. Same on-loop caveat as SetState — use
// clearQueueDirect from inside a handler.
func (d *Driver) ClearQueue() {
	d.post(func() { d.clearQueueDirect() })
}
