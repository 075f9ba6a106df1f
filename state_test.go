package gdbmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSessionState(t *testing.T) {
	cases := []struct {
		name  string
		state DbgState
		prev  SessionState
		want  SessionState
	}{
		{"fresh, never left NotStarted", DbgNotStarted | AppNotStarted, StateNotStarted, StateNotStarted},
		{"gdb gone after having been up", DbgNotStarted, StateActive, StateEnded},
		{"starting, was NotStarted", AppNotStarted, StateNotStarted, StateStarting},
		{"starting, was already Starting", AppNotStarted, StateStarting, StateStarting},
		{"app not started after having run before", AppNotStarted, StateActive, StateStopped},
		{"program exited stays Stopped even while running bit lingers", ProgramExited | AppRunning, StateActive, StateStopped},
		{"running and busy still derives Active", AppRunning | DbgBusy, StatePaused, StateActive},
		{"running, not busy", AppRunning, StateActive, StateActive},
		{"stopped at a breakpoint", DbgState(0), StateActive, StatePaused},
		{"shutting down alone does not override Active", ShuttingDown | AppRunning, StateActive, StateActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveSessionState(tc.state, tc.prev))
		})
	}
}

func TestDbgStateOnOff(t *testing.T) {
	s := DbgNotStarted
	s = s.On(AppRunning)
	assert.True(t, s.Has(DbgNotStarted))
	assert.True(t, s.Has(AppRunning))
	s = s.Off(DbgNotStarted)
	assert.False(t, s.Has(DbgNotStarted))
	assert.True(t, s.Has(AppRunning))
}
