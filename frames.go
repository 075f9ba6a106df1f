package gdbmi

import "fmt"

// StackFrame mirrors ulrichSchreiner-gdbmi/stack.go's StackFrame, trimmed
// to the fields spec.md's frame-stack controller actually surfaces.
type StackFrame struct {
	Level    int
	Function string
	Address  string
	Filename string
	Fullname string
	Line     int
}

// FrameStackModel holds the call stack fetched by its last Refresh.
// Grounded on ulrichSchreiner-gdbmi/stack.go's
// Stack_list_frames/Stack_info_frame/Stack_info_depth parsing. Session's
// stop handling does not call Refresh; the stack is re-queried only when a
// caller asks.
type FrameStackModel struct {
	session      *Session
	frames       []StackFrame
	currentFrame int
	currentThread int
}

func newFrameStackModel(s *Session) *FrameStackModel {
	return &FrameStackModel{session: s, currentThread: -1}
}

// CurrentThread and CurrentFrame report the selected thread (-1 until one
// is known) and the frame last selected by SelectFrame. The driver does not
// substitute them into queued variable and stack queries.
func (m *FrameStackModel) CurrentThread() int { return m.currentThread }
func (m *FrameStackModel) CurrentFrame() int  { return m.currentFrame }

// Frames returns the most recently fetched stack, top frame first.
func (m *FrameStackModel) Frames() []StackFrame {
	return m.frames
}

// Refresh re-queries the full call stack for the current thread.
func (m *FrameStackModel) Refresh() error {
	cmd := NewCommand(StackListFrames, " -stack-list-frames", CmdNone, func(rec Record) {
		if rec.ResultClass == ResultError {
			return
		}
		stack := rec.Field("stack")
		frames := make([]StackFrame, 0, stack.Size())
		for i := 0; i < stack.Size(); i++ {
			frames = append(frames, parseFrame(stack.At(i).Field("frame")))
		}
		m.frames = frames
	})
	return m.session.driver.Enqueue(cmd)
}

// SelectFrame changes the active frame for subsequent variable/stack
// queries, issuing -stack-select-frame.
func (m *FrameStackModel) SelectFrame(level int) error {
	cmd := NewCommand(StackSelectFrame, fmt.Sprintf(" -stack-select-frame %d", level), CmdNone, func(rec Record) {
		if rec.ResultClass != ResultError {
			m.currentFrame = level
		}
	})
	return m.session.driver.Enqueue(cmd)
}

func parseFrame(v Value) StackFrame {
	line := 0
	fmt.Sscanf(v.Field("line").Literal(), "%d", &line)
	level := 0
	fmt.Sscanf(v.Field("level").Literal(), "%d", &level)
	return StackFrame{
		Level:    level,
		Function: v.Field("func").Literal(),
		Address:  v.Field("addr").Literal(),
		Filename: v.Field("file").Literal(),
		Fullname: v.Field("fullname").Literal(),
		Line:     line,
	}
}
