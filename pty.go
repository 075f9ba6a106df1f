package gdbmi

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/creack/pty"
)

// PTYChannel allocates a pseudo-terminal pair used as the inferior's
// stdin/stdout/stderr, so the debugged program's I/O is separated from
// gdb's own MI stream. Grounded on sidkshatriya-dontbug/engine/engine.go's
// use of pty.Start to front an `rr replay` session, adapted from the
// external-command-wrapping pattern to raw pty.Open since this module
// hands the slave side to gdb via `tty <path>` rather than exec'ing gdb
// itself under the pty.
type PTYChannel struct {
	master *os.File
	slave  *os.File

	// External, when true, means an external terminal emulator owns the
	// slave side (spec.md §4.3's "external terminal" mode) and this
	// channel only tracks the device path for cleanup.
	External bool

	lines chan string
}

// OpenPTYChannel allocates a new pty pair. The caller passes the slave's
// Name() to gdb's "tty" command to attach the inferior's I/O to it.
func OpenPTYChannel() (*PTYChannel, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("gdbmi: opening pty: %w", err)
	}
	pc := &PTYChannel{master: master, slave: slave, lines: make(chan string, 256)}
	go pc.scan()
	return pc, nil
}

// SlavePath returns the device path to hand to gdb's "tty" command.
func (pc *PTYChannel) SlavePath() string {
	return pc.slave.Name()
}

// Lines streams the inferior's output, line by line, for forwarding to
// Session's applicationStandardOutputLines sink.
func (pc *PTYChannel) Lines() <-chan string {
	return pc.lines
}

func (pc *PTYChannel) scan() {
	scanner := bufio.NewScanner(pc.master)
	for scanner.Scan() {
		pc.lines <- scanner.Text()
	}
	close(pc.lines)
}

// ReadRemaining drains and discards any buffered bytes still sitting in
// the master side, matching the original's tty-draining step before
// destroying the channel in DebugSession::programNoApp.
func (pc *PTYChannel) ReadRemaining() {
	buf := make([]byte, 4096)
	for {
		_ = pc.master.SetReadDeadline(time.Now().Add(10 * time.Millisecond))
		n, err := pc.master.Read(buf)
		if n == 0 || err != nil {
			return
		}
	}
}

// Close releases both sides of the pty pair.
func (pc *PTYChannel) Close() error {
	errM := pc.master.Close()
	errS := pc.slave.Close()
	if errM != nil {
		return errM
	}
	return errS
}
