package gdbmi

// CommandQueue holds pending Commands awaiting transmission, in FIFO order
// with a front-of-queue fast path for CmdImmediately commands. It is not
// safe for concurrent use; callers serialize access through the driver's
// single event-loop goroutine.
type CommandQueue struct {
	items []*Command
}

// QueuePosition selects where Enqueue inserts a new command.
type QueuePosition int

const (
	// QueueAtEnd appends behind everything already queued.
	QueueAtEnd QueuePosition = iota
	// QueueAtFront jumps ahead of everything already queued, used for
	// CmdImmediately commands (interrupts, kills, version checks).
	QueueAtFront
)

// NewCommandQueue returns an empty queue.
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

// Enqueue inserts cmd at the requested position and then rationalizes the
// queue against it, matching gdbcommandqueue.cpp's enqueue()+
// rationalizeQueue() pairing. Only QueueAtFront and QueueAtEnd are
// supported; the original's QueueWhileInterrupted mode existed only to
// special-case the legacy direct-to-gdb interrupt codepath and is
// superseded here by Driver.ensureListening handling that case explicitly.
func (q *CommandQueue) Enqueue(cmd *Command, pos QueuePosition) {
	switch pos {
	case QueueAtFront:
		q.items = append([]*Command{cmd}, q.items...)
	default:
		q.items = append(q.items, cmd)
	}
	q.rationalize(cmd)
}

// IsEmpty reports whether the queue holds no commands.
func (q *CommandQueue) IsEmpty() bool {
	return len(q.items) == 0
}

// Count returns the number of queued commands.
func (q *CommandQueue) Count() int {
	return len(q.items)
}

// Clear discards every queued command without running any handler.
func (q *CommandQueue) Clear() {
	q.items = nil
}

// NextCommand removes and returns the command at the front of the queue,
// or nil if the queue is empty.
func (q *CommandQueue) NextCommand() *Command {
	if len(q.items) == 0 {
		return nil
	}
	cmd := q.items[0]
	q.items = q.items[1:]
	return cmd
}

// HasImmediate reports whether any queued command carries CmdImmediately
// or CmdInterrupt, the condition Driver.ensureListening checks before
// forcing gdb to respond to a currently-running inferior (spec.md §8:
// "hasImmediate() equals the count of queued entries whose flags include
// Immediately|Interrupt").
func (q *CommandQueue) HasImmediate() bool {
	for _, c := range q.items {
		if c.Flag.Has(CmdImmediately) || c.Flag.Has(CmdInterrupt) {
			return true
		}
	}
	return false
}

// rationalize drops queued commands made obsolete by the arrival of cmd.
// One pass runs unconditionally: removeDuplicates. Three passes are gated on cmd
// being execution-moving: removeObsoleteExecCommands, removeVariableUpdates,
// removeStackListUpdates.
func (q *CommandQueue) rationalize(cmd *Command) {
	if cmd.Type.IsExecutionMoving() {
		q.removeObsoleteExecCommands(cmd)
		q.removeVariableUpdates()
		q.removeStackListUpdates()
	}
	q.removeDuplicates(cmd)
}

// removeObsoleteExecCommands drops other queued exec-range commands when
// cmd is specifically a continue/until style resume — a narrower condition
// than "cmd is execution-moving" because stepping commands (next/step/
// finish) do not make a *different* pending step obsolete, only a
// continue does. Preserved verbatim from
// CommandQueue::removeObsoleteExecCommands in the original plugin.
func (q *CommandQueue) removeObsoleteExecCommands(cmd *Command) {
	if !cmd.Type.isContinuingExec() {
		return
	}
	kept := q.items[:0:0]
	for _, c := range q.items {
		if c == cmd {
			kept = append(kept, c)
			continue
		}
		if c.Type.IsExecutionMoving() {
			continue
		}
		kept = append(kept, c)
	}
	q.items = kept
}

// removeVariableUpdates drops every queued variable-evaluation/list-children
// or var-update command; execution moving invalidates any variable object
// state those commands were about to query.
func (q *CommandQueue) removeVariableUpdates() {
	kept := q.items[:0:0]
	for _, c := range q.items {
		if c.Type.isVariableQuery() {
			continue
		}
		kept = append(kept, c)
	}
	q.items = kept
}

// removeStackListUpdates drops queued stack-list-arguments/frames/locals
// and stack-info-frame/depth queries for the same reason: the frame they'd describe no longer exists once
// execution moves.
func (q *CommandQueue) removeStackListUpdates() {
	kept := q.items[:0:0]
	for _, c := range q.items {
		if c.Type.isStackListQuery() {
			continue
		}
		kept = append(kept, c)
	}
	q.items = kept
}

// removeDuplicates drops any other queued command that shares cmd's type,
// command text, and execution context (thread/frame) — re-enqueuing the
// same query before the first copy has even been sent is a no-op that
// would otherwise double the round trip. Preserved from
// CommandQueue::removeDuplicates.
func (q *CommandQueue) removeDuplicates(cmd *Command) {
	if cmd.Text == "" {
		return
	}
	kept := q.items[:0:0]
	for _, c := range q.items {
		if c != cmd && c.Type == cmd.Type && c.Text == cmd.Text &&
			c.Thread == cmd.Thread && c.Frame == cmd.Frame {
			continue
		}
		kept = append(kept, c)
	}
	q.items = kept
}
