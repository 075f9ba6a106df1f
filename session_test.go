package gdbmi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink is a MessageSink test double recording every call for
// later assertion, in place of a real UI front-end.
type recordingSink struct {
	NopSink
	messages []string
	events   []EventKind
	states   []SessionState
	finished bool
}

func (s *recordingSink) ShowMessage(text string) { s.messages = append(s.messages, text) }
func (s *recordingSink) Event(kind EventKind)     { s.events = append(s.events, kind) }
func (s *recordingSink) StateChanged(old, new SessionState) {
	s.states = append(s.states, new)
}
func (s *recordingSink) Finished() { s.finished = true }

// newTestSession wires a Session around a fakeTransport-backed Driver,
// bypassing StartDebugger's real os/exec spawn so the protocol logic can
// be exercised directly.
func newTestSession(t *testing.T) (*Session, *fakeTransport, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	s := NewSession(SessionContext{}, sink, nil)
	ft := newFakeTransport()
	d := NewDriver(ft, s.handleNotification, s.handleStream, nil)
	d.state = d.state.Off(DbgNotStarted)
	s.driver = d
	s.proc = ft
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go d.Run(ctx)
	return s, ft, sink
}

func TestBreakpointControllerTracksNotifications(t *testing.T) {
	s, ft, _ := newTestSession(t)
	_ = s

	ft.deliver(`=breakpoint-created,bkpt={number="1",type="breakpoint",disp="keep",enabled="y",addr="0x1149",func="main",file="main.c",fullname="/tmp/main.c",line="10",times="0"}`)

	require.Eventually(t, func() bool {
		_, ok := s.Breakpoints.Get("1")
		return ok
	}, time.Second, 5*time.Millisecond)

	bp, _ := s.Breakpoints.Get("1")
	assert.Equal(t, "main", bp.Function)
	assert.Equal(t, 10, bp.Line)

	ft.deliver(`=breakpoint-deleted,id="1"`)
	require.Eventually(t, func() bool {
		_, ok := s.Breakpoints.Get("1")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestDefaultErrorHandlerNoSuchProcess(t *testing.T) {
	s, _, sink := newTestSession(t)
	s.driver.SetState(AppRunning)

	s.defaultErrorHandler(Record{ResultClass: ResultError, Fields: map[string]Value{
		"msg": literalValue("No such process"),
	}})

	require.Eventually(t, func() bool { return sink.finished }, time.Second, 5*time.Millisecond)
	assert.Contains(t, sink.events, EventProgramExited)
	assert.Contains(t, sink.events, EventDebuggerExited)
}

func TestDefaultErrorHandlerGenericShowsMessageAndResyncs(t *testing.T) {
	s, _, sink := newTestSession(t)
	s.defaultErrorHandler(Record{ResultClass: ResultError, Fields: map[string]Value{
		"msg": literalValue("No symbol table loaded"),
	}})
	assert.Contains(t, sink.messages, "No symbol table loaded")
	assert.Contains(t, sink.events, EventProgramStateChanged)
}

func TestHandleStoppedExitedNormallyTriggersProgramNoApp(t *testing.T) {
	s, ft, sink := newTestSession(t)
	s.driver.SetState(AppRunning)

	ft.deliver(`*stopped,reason="exited-normally"`)

	require.Eventually(t, func() bool { return sink.finished }, time.Second, 5*time.Millisecond)
	assert.Contains(t, sink.events, EventProgramExited)
}
