package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aroth-arsoft/gdbmi"
)

// runCmd starts a gdb session against an executable and drops into an
// interactive command loop, the cmd/ front-end's equivalent of
// DebugSession wired to a console instead of an IDE.
var runCmd = &cobra.Command{
	Use:   "run [flags] -- executable [args...]",
	Short: "Launch an executable under gdb and debug it interactively",
	Run: func(cmd *cobra.Command, args []string) {
		executable := viper.GetString("executable")
		execArgs := viper.GetString("args")
		if executable == "" && len(args) > 0 {
			executable = args[0]
			execArgs = strings.Join(args[1:], " ")
		}
		if executable == "" {
			color.Red("gdbmi: no executable given, pass one after -- or with --executable")
			os.Exit(1)
		}

		sctx := gdbmi.SessionContext{
			GdbPath:            viper.GetString("gdb-executable"),
			MinGdbVersion:      viper.GetString("min-gdb-version"),
			Executable:         executable,
			ExecArguments:      execArgs,
			BreakOnStart:       viper.GetBool("break-on-start"),
			AsmDemangle:        viper.GetBool("asm-demangle"),
			DisassemblyFlavor:  viper.GetString("disassembly-flavor"),
		}

		sink := newConsoleSink()
		session := gdbmi.NewSession(sctx, sink, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := session.StartProgram(ctx); err != nil {
			color.Red("gdbmi: %v", err)
			os.Exit(1)
		}

		runConsoleLoop(session)
	},
}

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().String("executable", "", "the program to debug")
	runCmd.Flags().String("args", "", "arguments passed to the debugged program")
	runCmd.Flags().Bool("break-on-start", true, "stop at main before the program runs")
	runCmd.Flags().Bool("asm-demangle", true, "demangle C++ symbols in disassembly")
	runCmd.Flags().String("disassembly-flavor", "", "att or intel, empty leaves gdb's default")
}

// runConsoleLoop reads lines from the terminal and dispatches them either
// to a handful of built-in shortcuts (next/step/continue/...) or straight
// through to gdb as a verbatim user command, mirroring the thin
// command-line front-ends the rest of the pack builds around readline.
func runConsoleLoop(session *gdbmi.Session) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          color.CyanString("(gdbmi) "),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		color.Red("gdbmi: readline init: %v", err)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			_ = session.Interrupt()
			continue
		}
		if err == io.EOF {
			_ = session.StopDebugger()
			return
		}
		if err != nil {
			color.Red("gdbmi: %v", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if dispatchBuiltin(session, line) {
			continue
		}
		if err := session.AddUserCommand(line); err != nil {
			color.Red("gdbmi: %v", err)
		}
	}
}

func dispatchBuiltin(session *gdbmi.Session, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "run", "continue", "c":
		checkConsole(session.Run())
	case "next", "n":
		checkConsole(session.StepOver())
	case "step", "s":
		checkConsole(session.StepInto())
	case "finish":
		checkConsole(session.StepOut())
	case "break", "b":
		if len(fields) < 2 {
			color.Red("gdbmi: break needs a location")
			return true
		}
		checkConsole(session.Breakpoints.Insert(fields[1]))
	case "until":
		if len(fields) < 2 {
			color.Red("gdbmi: until needs a location")
			return true
		}
		checkConsole(session.RunUntil(fields[1]))
	case "jump":
		if len(fields) < 2 {
			color.Red("gdbmi: jump needs a location")
			return true
		}
		checkConsole(session.JumpTo(fields[1]))
	case "print", "p":
		if len(fields) < 2 {
			color.Red("gdbmi: print needs an expression")
			return true
		}
		expr := strings.Join(fields[1:], " ")
		checkConsole(session.Evaluate(expr, func(value string, err error) {
			if err != nil {
				color.Red("gdbmi: %v", err)
				return
			}
			fmt.Println(value)
		}))
	case "kill":
		checkConsole(session.Kill())
	case "restart":
		checkConsole(session.Restart(context.Background()))
	case "quit", "exit":
		checkConsole(session.StopDebugger())
	default:
		return false
	}
	return true
}

func checkConsole(err error) {
	if err != nil {
		color.Red("gdbmi: %v", err)
	}
}
