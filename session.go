package gdbmi

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session is the public façade spec.md §4.6 describes: it owns a Driver,
// a PTY channel for the inferior, the four feature controllers, and the
// stateReloadInProgress_ bookkeeping that routes default error handling
// and the post-stop reload sequence. Grounded on
// original_source/debugsession.cpp end to end.
type Session struct {
	ctx    SessionContext
	sink   MessageSink
	logger *log.Logger

	driver *Driver
	proc   gdbTransport
	pty    *PTYChannel

	Breakpoints *BreakpointController
	Variables   *VariableController
	Frames      *FrameStackModel
	Disassembly *DisassemblyController

	sessionState SessionState
	reloadPending bool

	cancel context.CancelFunc
}

// NewSession constructs a Session from ctx and starts no process yet;
// call StartDebugger to spawn gdb.
func NewSession(ctx SessionContext, sink MessageSink, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(os.Stderr, "gdbmi: ", log.LstdFlags)
	}
	s := &Session{ctx: ctx, sink: sink, logger: logger, sessionState: StateNotStarted}
	s.Breakpoints = newBreakpointController(s)
	s.Variables = newVariableController(s)
	s.Frames = newFrameStackModel(s)
	s.Disassembly = newDisassemblyController(s)
	return s
}

// StartDebugger spawns the gdb process and queues the startup command
// block (version check, width/height, signal handling, pretty printing,
// charset, optional printer path) in that exact order, per
// DebugSession::startDebugger.
func (s *Session) StartDebugger(ctx context.Context) error {
	gdbPath := s.ctx.GdbPath
	if gdbPath == "" {
		gdbPath = "gdb"
	}
	args := append([]string{"-q", "--interpreter=mi2"}, s.ctx.GdbArgs...)

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	proc, err := StartProcessChannel(runCtx, gdbPath, args, s.logger)
	if err != nil {
		cancel()
		return newError(ErrLaunch, "StartDebugger", "starting gdb", err)
	}
	s.proc = proc
	s.driver = NewDriver(proc, s.handleNotification, s.handleStream, s.logger)
	go s.driver.Run(runCtx)

	s.driver.MarkStarted()
	s.setSessionState(StateStarting)

	// gdb show version first; everything else follows once we know the
	// version satisfies the floor.
	versionCmd := NewCommand(GdbShow, " -gdb-show version", CmdImmediately, s.handleVersion)
	if err := s.driver.Enqueue(versionCmd); err != nil {
		return err
	}

	for _, c := range s.startupCommands() {
		if err := s.driver.Enqueue(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) startupCommands() []*Command {
	cmds := []*Command{
		NewCommand(GdbSet, " -gdb-set width 0", CmdNone, nil),
		NewCommand(GdbSet, " -gdb-set height 0", CmdNone, nil),
	}
	for _, sig := range []string{"SIG32", "SIG41", "SIG42", "SIG43"} {
		cmds = append(cmds, NewCommand(GdbSet, fmt.Sprintf(" -gdb-set %s nostop noprint pass", sig), CmdNone, nil))
	}
	cmds = append(cmds,
		NewCommand(GdbSet, " -enable-pretty-printing", CmdNone, nil),
		NewCommand(GdbSet, " -gdb-set charset UTF-8", CmdNone, nil),
		NewCommand(GdbSet, " -gdb-set target-charset UTF-8", CmdNone, nil),
		NewCommand(GdbSet, " -gdb-set sevenbit-strings off", CmdNone, nil),
	)
	if s.ctx.PrettyPrinterPath != "" {
		cmds = append(cmds,
			NewCommand(CliInternalCommand, fmt.Sprintf(" -interpreter-exec console \"python sys.path.insert(0, '%s')\"", s.ctx.PrettyPrinterPath), CmdNone, nil),
			NewCommand(CliInternalCommand, fmt.Sprintf(" -interpreter-exec console \"source %s/gdbinit\"", s.ctx.PrettyPrinterPath), CmdNone, nil),
		)
	}
	if s.ctx.DisassemblyFlavor != "" {
		cmds = append(cmds, s.Disassembly.setFlavorCommand(s.ctx.DisassemblyFlavor))
	}
	return cmds
}

func (s *Session) handleVersion(rec Record) {
	if rec.ResultClass == ResultError {
		s.sink.ShowMessage("failed to query gdb version")
		_ = s.stopDebuggerOnLoop()
		return
	}
	text := extractConsoleVersionText(rec)
	if _, err := CheckGdbVersion(text, s.ctx.minVersionConstraint()); err != nil {
		s.sink.ShowMessage(err.Error())
		_ = s.stopDebuggerOnLoop()
	}
}

// extractConsoleVersionText stitches together the console-stream lines a
// "gdb show version" result carries in its "value" field when run
// through -interpreter-exec, or falls back to the result field itself.
func extractConsoleVersionText(rec Record) string {
	if v, ok := rec.Fields["value"]; ok {
		return v.Literal()
	}
	return ""
}

// StartProgram begins running the configured Executable, matching
// DebugSession::startProgram: starts gdb if needed, resolves the PTY,
// optionally adds a "Break on Start" breakpoint at main, applies the
// display-static-members/asm-demangle toggles, sets the environment,
// exec-arguments and the working directory, loads the executable, and
// finally queues exec-run behind a sentinel that reports "starting
// program" through ShowMessage. The sentinel sends nothing to the
// breakpoint controller.
func (s *Session) StartProgram(ctx context.Context) error {
	if s.driver == nil {
		if err := s.StartDebugger(ctx); err != nil {
			return err
		}
	}
	if s.driver.State().Has(ShuttingDown) {
		return newError(ErrState, "StartProgram", "session is shutting down", nil)
	}

	if !s.ctx.UseExternalTerminal {
		p, err := OpenPTYChannel()
		if err != nil {
			return newError(ErrLaunch, "StartProgram", "opening pty", err)
		}
		s.pty = p
		go s.pumpApplicationOutput()
	}

	if s.ctx.WorkingDirectory != "" {
		s.queueInternal(EnvironmentCd, fmt.Sprintf(" -environment-cd %s", quoteArg(s.ctx.WorkingDirectory)), nil)
	}
	if s.pty != nil {
		s.queueInternal(CliInternalCommand, fmt.Sprintf(" -interpreter-exec console \"tty %s\"", s.pty.SlavePath()), nil)
	}
	if s.ctx.DisplayStaticMembers {
		s.queueInternal(GdbSet, " -gdb-set print static-members on", nil)
	}
	if s.ctx.AsmDemangle {
		s.queueInternal(GdbSet, " -gdb-set print asm-demangle on", nil)
	}
	for _, env := range s.ctx.Environment {
		s.queueInternal(GdbSet, fmt.Sprintf(" -gdb-set environment %s", env), nil)
	}
	if s.ctx.ExecArguments != "" {
		s.queueInternal(ExecArguments, fmt.Sprintf(" -exec-arguments %s", s.ctx.ExecArguments), nil)
	}
	if s.ctx.Executable != "" {
		s.queueInternal(FileExecAndSymbols, fmt.Sprintf(" -file-exec-and-symbols %s", quoteArg(s.ctx.Executable)), s.handleFileExecAndSymbols)
	}
	if s.ctx.BreakOnStart && !s.Breakpoints.hasAny() {
		if err := s.Breakpoints.Insert("main"); err != nil {
			return err
		}
	}

	sentinel := NewSentinel(func(Record) {
		s.sink.ShowMessage("starting program")
	})
	if err := s.driver.Enqueue(sentinel); err != nil {
		return err
	}

	runCmd := NewCommand(ExecRun, " -exec-run", CmdMaybeStartsRunning, s.handleRunResult)
	return s.driver.Enqueue(runCmd)
}

func (s *Session) handleFileExecAndSymbols(rec Record) {
	if rec.ResultClass == ResultError {
		s.sink.ShowMessage("failed to load executable")
		_ = s.stopDebuggerOnLoop()
	}
}

func (s *Session) handleRunResult(rec Record) {
	if rec.ResultClass == ResultError {
		s.defaultErrorHandler(rec)
		return
	}
	s.driver.setStateDirect(AppRunning)
	s.sink.Event(EventProgramRunning)
	s.setSessionState(DeriveSessionState(s.driver.stateDirect(), s.sessionState))
}

// AttachToProcess attaches gdb to an already-running pid, per spec.md's
// attach operation; mirrors startDebugger's Attached-bit bookkeeping.
func (s *Session) AttachToProcess(ctx context.Context, pid int) error {
	if s.driver == nil {
		if err := s.StartDebugger(ctx); err != nil {
			return err
		}
	}
	s.driver.SetState(Attached)
	cmd := NewCommand(TargetAttach, fmt.Sprintf(" -target-attach %d", pid), CmdMaybeStartsRunning, s.handleTargetAttach)
	return s.driver.Enqueue(cmd)
}

func (s *Session) handleTargetAttach(rec Record) {
	if rec.ResultClass == ResultError {
		s.sink.ShowMessage("failed to attach")
		_ = s.stopDebuggerOnLoop()
	}
}

// ExamineCoreFile loads a core dump instead of running the inferior live.
func (s *Session) ExamineCoreFile(ctx context.Context, corePath string) error {
	if s.driver == nil {
		if err := s.StartDebugger(ctx); err != nil {
			return err
		}
	}
	s.driver.SetState(Core)
	if s.ctx.Executable != "" {
		s.queueInternal(FileExecAndSymbols, fmt.Sprintf(" -file-exec-and-symbols %s", quoteArg(s.ctx.Executable)), nil)
	}
	cmd := NewCommand(CoreFile, fmt.Sprintf(" -target-select core %s", quoteArg(corePath)), CmdNone, s.handleCoreFile)
	return s.driver.Enqueue(cmd)
}

func (s *Session) handleCoreFile(rec Record) {
	if rec.ResultClass == ResultError {
		s.sink.ShowMessage("failed to examine core file: " + corePathErrorText(rec))
		_ = s.stopDebuggerOnLoop()
		return
	}
	s.sink.RaiseFramestackViews()
	s.setSessionState(StatePaused)
}

func corePathErrorText(rec Record) string {
	return rec.Field("msg").Literal()
}

// Run resumes execution by queueing -exec-continue. It never issues
// -exec-run (StartProgram does that) and does not check the session
// state before queueing.
func (s *Session) Run() error {
	return s.driver.Enqueue(NewCommand(ExecContinue, " -exec-continue", CmdMaybeStartsRunning, s.handleExecResult))
}

func (s *Session) StepOver() error {
	return s.driver.Enqueue(NewCommand(ExecNext, " -exec-next", CmdMaybeStartsRunning, s.handleExecResult))
}

func (s *Session) StepOverInstruction() error {
	return s.driver.Enqueue(NewCommand(ExecNextInstruction, " -exec-next-instruction", CmdMaybeStartsRunning, s.handleExecResult))
}

func (s *Session) StepInto() error {
	return s.driver.Enqueue(NewCommand(ExecStep, " -exec-step", CmdMaybeStartsRunning, s.handleExecResult))
}

func (s *Session) StepIntoInstruction() error {
	return s.driver.Enqueue(NewCommand(ExecStepInstruction, " -exec-step-instruction", CmdMaybeStartsRunning, s.handleExecResult))
}

func (s *Session) StepOut() error {
	return s.driver.Enqueue(NewCommand(ExecFinish, " -exec-finish", CmdMaybeStartsRunning, s.handleExecResult))
}

// RunUntil continues until location is reached (source "file:line" or a
// raw function name); spec.md's runUntil operation.
func (s *Session) RunUntil(location string) error {
	return s.driver.Enqueue(NewCommand(ExecUntil, fmt.Sprintf(" -exec-until %s", location), CmdMaybeStartsRunning, s.handleExecResult))
}

// JumpTo resumes execution at location, or at a raw address via the
// tbreak+jump pair preserved from
// DebugSession::jumpToMemoryAddress when location looks like "*0x...".
func (s *Session) JumpTo(location string) error {
	if strings.HasPrefix(location, "*") {
		return s.jumpToAddress(location)
	}
	return s.driver.Enqueue(NewCommand(ExecJump, fmt.Sprintf(" -exec-jump %s", location), CmdMaybeStartsRunning, s.handleExecResult))
}

func (s *Session) jumpToAddress(addr string) error {
	tbreak := NewCommand(BreakInsert, fmt.Sprintf(" -break-insert -t %s", addr), CmdTemporaryRun, nil)
	if err := s.driver.Enqueue(tbreak); err != nil {
		return err
	}
	jump := NewCommand(ExecJump, fmt.Sprintf(" jump %s", addr), CmdMaybeStartsRunning|CmdTemporaryRun, s.handleExecResult)
	return s.driver.Enqueue(jump)
}

func (s *Session) handleExecResult(rec Record) {
	if rec.ResultClass == ResultError {
		s.defaultErrorHandler(rec)
	}
}

// Interrupt stops a running inferior. Both the out-of-band process signal
// and a queued exec-interrupt command are issued, per
// DebugSession::interruptDebugger (SPEC_FULL supplement): the command
// alone might arrive after the driver has already marked itself not
// listening, and the signal alone might race a consumer that's watching
// the command queue for completion.
func (s *Session) Interrupt() error {
	_ = s.proc.Interrupt()
	s.driver.SetState(InterruptSent)
	cmd := NewCommand(ExecInterrupt, " -exec-interrupt", CmdImmediately|CmdInterrupt, s.handleExecResult)
	return s.driver.Enqueue(cmd)
}

// Kill terminates the inferior without tearing down gdb itself.
func (s *Session) Kill() error {
	cmd := NewCommand(TargetKill, " kill", CmdImmediately, nil)
	return s.driver.Enqueue(cmd)
}

// Restart is Kill followed by StartProgram, after
// DebugSession::restartDebugger's kill-then-run — not a dedicated verb, so
// that StartProgram's normal side effects (PTY setup, Break on Start)
// apply uniformly on restart too.
func (s *Session) Restart(ctx context.Context) error {
	if err := s.Kill(); err != nil {
		return err
	}
	return s.StartProgram(ctx)
}

// StopDebugger tears the whole session down: clears the queue, marks
// ShuttingDown, optionally interrupts a running inferior, detaches if
// attached, queues gdb-exit, and starts a 5s timer that force-kills the
// process if it hasn't exited by then. Mirrors
// DebugSession::stopDebugger.
func (s *Session) StopDebugger() error {
	if s.driver == nil {
		return nil
	}
	done := make(chan error, 1)
	s.driver.post(func() {
		done <- s.stopDebuggerOnLoop()
	})
	return <-done
}

// stopDebuggerOnLoop is StopDebugger's body, for callers that are already
// running on the driver's event-loop goroutine (handleVersion,
// handleFileExecAndSymbols, handleTargetAttach, handleCoreFile,
// programNoApp). Calling StopDebugger itself from there would deadlock the
// same way a reentrant State() call would (see driver.go).
func (s *Session) stopDebuggerOnLoop() error {
	s.driver.clearQueueDirect()
	s.driver.setStateDirect(ShuttingDown)

	state := s.driver.stateDirect()
	if state.Has(AppRunning) {
		_ = s.proc.Interrupt()
	}
	if state.Has(Attached) {
		_ = s.driver.enqueueDirectDefault(NewCommand(TargetDetach, " -target-detach", CmdImmediately, nil))
	}
	_ = s.driver.enqueueDirectDefault(NewCommand(GdbExit, " -gdb-exit", CmdImmediately, nil))

	go func() {
		if err := s.proc.Shutdown(5 * time.Second); err != nil {
			s.logger.Printf("shutdown: %v", err)
		}
		s.gdbExited()
	}()

	s.sink.Reset()
	return nil
}

func (s *Session) gdbExited() {
	s.driver.SetState(AppNotStarted | DbgNotStarted)
	s.driver.ClearState(ShuttingDown)
	if s.cancel != nil {
		s.cancel()
	}
	if s.pty != nil {
		s.pty.ReadRemaining()
		_ = s.pty.Close()
	}
	s.setSessionState(StateEnded)
	s.sink.Finished()
}

// AddUserCommand lets the front-end submit a raw MI or CLI command line
// verbatim, with output surfaced via GdbUserCommandStdout instead of
// consumed internally.
func (s *Session) AddUserCommand(text string) error {
	cmd := NewCommand(CliUserCommand, " "+text, CmdNone, nil)
	return s.driver.Enqueue(cmd)
}

// Evaluate issues a data-evaluate-expression and delivers the result
// string to handler.
func (s *Session) Evaluate(expr string, handler func(value string, err error)) error {
	cmd := NewCommand(DataEvaluateExpression, fmt.Sprintf(" -data-evaluate-expression %s", quoteArg(expr)), CmdNone, func(rec Record) {
		if rec.ResultClass == ResultError {
			handler("", newError(ErrCommand, "Evaluate", rec.Field("msg").Literal(), nil))
			return
		}
		handler(rec.Field("value").Literal(), nil)
	})
	return s.driver.Enqueue(cmd)
}

// Watch creates a watch variable object via the VariableController.
func (s *Session) Watch(expr string) error {
	return s.Variables.CreateWatch(expr)
}

func (s *Session) queueInternal(t CommandType, text string, handler ResultHandler) {
	_ = s.driver.Enqueue(NewCommand(t, text, CmdNone, handler))
}

func (s *Session) setSessionState(ns SessionState) {
	old := s.sessionState
	if old == ns {
		return
	}
	s.sessionState = ns
	s.sink.StateChanged(old, ns)
}

// handleNotification routes every async-exec/async-notify record,
// matching DebugSession::processNotification + the *stopped branch of
// slotProgramStopped.
func (s *Session) handleNotification(rec Record) {
	switch rec.Kind {
	case RecordAsyncExec:
		if rec.AsyncClass == AsyncStopped {
			s.handleStopped(rec)
		} else if rec.AsyncClass == AsyncRunning {
			s.driver.setStateDirect(AppRunning)
			s.sink.Event(EventProgramRunning)
		}
	case RecordAsyncNotify:
		s.processNotification(rec)
	}
}

func (s *Session) processNotification(rec Record) {
	switch rec.AsyncClass {
	case NotifyThreadGroupStarted:
		s.sink.Event(EventConnectedToProgram)
	case NotifyThreadGroupExited:
		// handled via the *stopped exited-* reasons instead.
	case NotifyLibraryLoaded:
		// no-op, matching processNotification's explicit no-op branch.
	case NotifyBreakpointCreated, NotifyBreakpointModified, NotifyBreakpointDeleted:
		s.Breakpoints.handleNotification(rec)
	default:
		s.logger.Printf("unhandled notification: %s", rec.AsyncClass)
	}
}

// handleStopped implements DebugSession::slotProgramStopped's exact
// branching by stop reason.
func (s *Session) handleStopped(rec Record) {
	s.reloadPending = true
	s.driver.clearStateDirect(AppRunning | DbgNotListening)

	reason := rec.Field("reason").Literal()
	if strings.Contains(reason, "exited") {
		s.programNoApp()
		return
	}
	if reason == "watchpoint-scope" {
		_ = s.driver.enqueueDirectDefault(NewCommand(ExecContinue, " -exec-continue", CmdMaybeStartsRunning, s.handleExecResult))
		s.reloadPending = false
		return
	}

	isInterruptAck := false
	if reason == "signal-received" {
		signalName := rec.Field("signal-name").Literal()
		if signalName == "SIGINT" && s.driver.stateDirect().Has(InterruptSent) {
			isInterruptAck = true
		} else {
			s.programFinished()
		}
	}

	if frame := rec.Field("frame"); frame.HasField("line") {
		file := frame.Field("fullname").Literal()
		line, _ := strconv.Atoi(frame.Field("line").Literal())
		addr := frame.Field("addr").Literal()
		if file != "" {
			s.sink.ShowStepInSource(file, line-1, addr)
		} else {
			s.sink.ShowStepInDisassemble(addr)
		}
		s.reloadProgramState()
	}

	s.driver.clearStateDirect(InterruptSent)
	if !isInterruptAck {
		s.driver.clearStateDirect(AutomaticContinue)
	}
}

func (s *Session) reloadProgramState() {
	s.raiseEvent(EventProgramStateChanged)
	s.reloadPending = false
	s.setSessionState(DeriveSessionState(s.driver.stateDirect(), s.sessionState))
	s.sink.RaiseFramestackViews()
}

// programNoApp implements DebugSession::programNoApp: reset state to
// exactly AppNotStarted|ProgramExited (preserving ShuttingDown if it was
// already set), drop the queue, drain and close the PTY, stop the
// debugger, and notify.
func (s *Session) programNoApp() {
	preserved := s.driver.stateDirect() & ShuttingDown
	s.driver.state = AppNotStarted | ProgramExited | preserved
	s.driver.clearQueueDirect()
	if s.pty != nil {
		s.pty.ReadRemaining()
		_ = s.pty.Close()
		s.pty = nil
	}
	_ = s.stopDebuggerOnLoop()
	s.raiseEvent(EventProgramExited)
	s.raiseEvent(EventDebuggerExited)
	s.sink.ShowMessage("program exited")
	s.programFinished()
}

func (s *Session) programFinished() {
	// Marks the session Ended. Nothing is flushed here: the pty scan loop
	// already forwards lines as they arrive via pumpApplicationOutput.
	s.setSessionState(StateEnded)
}

// raiseEvent toggles stateReloadInProgress_ per SPEC_FULL's supplement:
// entering program_state_changed sets it; program_exited/debugger_exited
// clear it. While set, defaultErrorHandler suppresses its own resync
// trigger. Queued commands are not marked CmdStateReloading.
func (s *Session) raiseEvent(kind EventKind) {
	switch kind {
	case EventProgramStateChanged:
		s.reloadPending = true
	case EventProgramExited, EventDebuggerExited:
		s.reloadPending = false
	}
	s.sink.Event(kind)
}

// defaultErrorHandler implements DebugSession::defaultErrorHandler,
// including the "No such process" special case.
func (s *Session) defaultErrorHandler(rec Record) {
	msg := rec.Field("msg").Literal()
	if strings.Contains(msg, noSuchProcess) {
		s.programNoApp()
		return
	}
	s.sink.ShowMessage(msg)
	if !s.reloadPending {
		s.raiseEvent(EventProgramStateChanged)
	}
}

func (s *Session) handleStream(kind RecordKind, text string) {
	switch kind {
	case RecordStreamConsole:
		if cmd := s.driver.inFlight; cmd != nil && cmd.Type == CliUserCommand {
			s.sink.GdbUserCommandStdout(text)
		} else {
			s.sink.GdbInternalCommandStdout(text)
		}
	case RecordStreamTarget:
		s.sink.ApplicationStandardOutputLines([]string{text})
	case RecordStreamLog:
		s.logger.Printf("log: %s", text)
	}
}

func (s *Session) pumpApplicationOutput() {
	for line := range s.pty.Lines() {
		s.sink.ApplicationStandardOutputLines([]string{line})
	}
}

func quoteArg(s string) string {
	return strconv.Quote(s)
}
