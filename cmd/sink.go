package cmd

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/aroth-arsoft/gdbmi"
)

// consoleSink renders a Session's notifications straight to the terminal
// with fatih/color, standing in for the IDE-side MessageSink a real host
// would implement. Embeds gdbmi.NopSink so only the notifications worth
// printing need an override.
type consoleSink struct {
	gdbmi.NopSink
}

func newConsoleSink() *consoleSink {
	return &consoleSink{}
}

func (s *consoleSink) ShowMessage(text string) {
	color.Yellow("gdbmi: %s", text)
}

func (s *consoleSink) GdbUserCommandStdout(text string) {
	fmt.Println(text)
}

func (s *consoleSink) ApplicationStandardOutputLines(lines []string) {
	for _, l := range lines {
		fmt.Println(l)
	}
}

func (s *consoleSink) ApplicationStandardErrorLines(lines []string) {
	for _, l := range lines {
		color.Red(l)
	}
}

func (s *consoleSink) StateChanged(old, new gdbmi.SessionState) {
	color.Cyan("gdbmi: state %s -> %s", old, new)
}

func (s *consoleSink) ShowStepInSource(file string, line int, addr string) {
	color.Green("stopped at %s:%d (%s)", file, line+1, addr)
}

func (s *consoleSink) ShowStepInDisassemble(addr string) {
	color.Green("stopped at %s", addr)
}

func (s *consoleSink) Finished() {
	color.Magenta("gdbmi: session finished")
}

func (s *consoleSink) Event(kind gdbmi.EventKind) {
	switch kind {
	case gdbmi.EventProgramExited:
		color.Magenta("gdbmi: program exited")
	case gdbmi.EventDebuggerExited:
		color.Magenta("gdbmi: debugger exited")
	}
}
