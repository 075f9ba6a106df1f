package gdbmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueFIFOOrder(t *testing.T) {
	q := NewCommandQueue()
	q.Enqueue(NewCommand(GdbSet, " -gdb-set width 0", CmdNone, nil), QueueAtEnd)
	q.Enqueue(NewCommand(GdbSet, " -gdb-set height 0", CmdNone, nil), QueueAtEnd)
	first := q.NextCommand()
	second := q.NextCommand()
	assert.Equal(t, " -gdb-set width 0", first.Text)
	assert.Equal(t, " -gdb-set height 0", second.Text)
	assert.True(t, q.IsEmpty())
}

func TestQueueImmediateJumpsFront(t *testing.T) {
	q := NewCommandQueue()
	q.Enqueue(NewCommand(ExecNext, " -exec-next", CmdNone, nil), QueueAtEnd)
	q.Enqueue(NewCommand(ExecInterrupt, " -exec-interrupt", CmdImmediately, nil), QueueAtFront)
	assert.True(t, q.HasImmediate())
	next := q.NextCommand()
	assert.Equal(t, " -exec-interrupt", next.Text)
}

func TestRationalizeDropsVariableAndStackQueriesOnExecMove(t *testing.T) {
	q := NewCommandQueue()
	q.Enqueue(NewCommand(VarUpdate, " -var-update --all-values *", CmdNone, nil), QueueAtEnd)
	q.Enqueue(NewCommand(StackListLocals, " -stack-list-locals 1", CmdNone, nil), QueueAtEnd)
	q.Enqueue(NewCommand(ExecNext, " -exec-next", CmdMaybeStartsRunning, nil), QueueAtEnd)

	assert.Equal(t, 1, q.Count())
	remaining := q.NextCommand()
	assert.Equal(t, ExecNext, remaining.Type)
}

func TestRemoveObsoleteExecCommandsOnlyFiresForContinueOrUntil(t *testing.T) {
	q := NewCommandQueue()
	q.Enqueue(NewCommand(ExecNext, " -exec-next", CmdMaybeStartsRunning, nil), QueueAtEnd)
	q.Enqueue(NewCommand(ExecStep, " -exec-step", CmdMaybeStartsRunning, nil), QueueAtEnd)

	// A second step does not drop the already-queued next/step commands:
	// only continue/until are "obsoleting" per removeObsoleteExecCommands.
	assert.Equal(t, 2, q.Count())

	q.Enqueue(NewCommand(ExecContinue, " -exec-continue", CmdMaybeStartsRunning, nil), QueueAtEnd)
	// The continue drops the other exec-range commands queued ahead of it,
	// but keeps itself.
	assert.Equal(t, 1, q.Count())
	assert.Equal(t, ExecContinue, q.NextCommand().Type)
}

func TestRemoveDuplicatesSkipsReenqueueOfIdenticalPendingCommand(t *testing.T) {
	q := NewCommandQueue()
	q.Enqueue(NewCommand(VarUpdate, " -var-update --all-values *", CmdNone, nil), QueueAtEnd)
	q.Enqueue(NewCommand(VarUpdate, " -var-update --all-values *", CmdNone, nil), QueueAtEnd)
	assert.Equal(t, 1, q.Count())
}

func TestQueueClearDropsEverything(t *testing.T) {
	q := NewCommandQueue()
	q.Enqueue(NewCommand(GdbExit, " -gdb-exit", CmdImmediately, nil), QueueAtFront)
	q.Clear()
	assert.True(t, q.IsEmpty())
	assert.Nil(t, q.NextCommand())
}
