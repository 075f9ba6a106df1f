// Command gdbmi-session is the interactive console front-end for the
// gdbmi package: it drives gdb's machine interface the way an IDE would,
// but prints to a terminal instead of a GUI.
package main

import (
	"github.com/aroth-arsoft/gdbmi/cmd"
)

func main() {
	cmd.Execute()
}
