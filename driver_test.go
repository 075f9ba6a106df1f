package gdbmi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is an in-memory gdbTransport standing in for a real gdb
// process, letting driver_test.go exercise Driver's event loop without
// spawning anything, grounded on the swappable start/send function-field
// pattern ulrichSchreiner-gdbmi's *_test.go files use (dummyStart,
// createSender) generalized to this package's interface-based transport.
type fakeTransport struct {
	sent        chan string
	lines       chan string
	errs        chan error
	interrupted chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		sent:        make(chan string, 16),
		lines:       make(chan string, 16),
		errs:        make(chan error, 1),
		interrupted: make(chan struct{}, 16),
	}
}

func (f *fakeTransport) Send(line string) error {
	f.sent <- line
	return nil
}

func (f *fakeTransport) Interrupt() error {
	f.interrupted <- struct{}{}
	return nil
}

func (f *fakeTransport) Lines() <-chan string { return f.lines }
func (f *fakeTransport) Errors() <-chan error { return f.errs }

func (f *fakeTransport) Shutdown(time.Duration) error { return nil }

func (f *fakeTransport) deliver(line string) {
	f.lines <- line
}

func startTestDriver(t *testing.T, notify NotificationHandler) (*Driver, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	d := NewDriver(ft, notify, nil, nil)
	d.state = d.state.Off(DbgNotStarted)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go d.Run(ctx)
	return d, ft
}

func TestDriverSingleInFlightCommand(t *testing.T) {
	d, ft := startTestDriver(t, nil)

	results := make(chan Record, 2)
	require.NoError(t, d.Enqueue(NewCommand(ExecNext, " -exec-next", CmdNone, func(r Record) { results <- r })))
	require.NoError(t, d.Enqueue(NewCommand(ExecStep, " -exec-step", CmdNone, func(r Record) { results <- r })))

	var first string
	select {
	case first = <-ft.sent:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first command to transmit")
	}
	assert.Contains(t, first, "-exec-next")

	// The second command must not be transmitted until the first result
	// arrives: the queue still holds it.
	select {
	case <-ft.sent:
		t.Fatal("second command transmitted while first still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	ft.deliver(`1^done`)
	<-results

	select {
	case second := <-ft.sent:
		assert.Contains(t, second, "-exec-step")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second command to transmit")
	}
	ft.deliver(`2^done`)
	<-results
}

func TestDriverRoutesAsyncNotifications(t *testing.T) {
	seen := make(chan Record, 1)
	d, ft := startTestDriver(t, func(r Record) { seen <- r })
	_ = d

	ft.deliver(`=thread-group-started,id="i1",pid="100"`)
	select {
	case rec := <-seen:
		assert.Equal(t, RecordAsyncNotify, rec.Kind)
		assert.Equal(t, NotifyThreadGroupStarted, rec.AsyncClass)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestDriverVersionGateRejectsOldGdb(t *testing.T) {
	_, err := CheckGdbVersion(`"GNU gdb (GDB) 6.8\n"`, "7.0.0")
	assert.Error(t, err)
}

func TestDriverVersionGateAcceptsModernGdb(t *testing.T) {
	v, err := CheckGdbVersion(`"GNU gdb (Ubuntu 12.1-0ubuntu1~22.04) 12.1\n"`, "7.0.0")
	require.NoError(t, err)
	assert.EqualValues(t, 12, v.Major())
}
