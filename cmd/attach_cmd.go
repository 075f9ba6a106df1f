package cmd

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aroth-arsoft/gdbmi"
)

// attachCmd attaches gdb to an already-running process by pid.
var attachCmd = &cobra.Command{
	Use:   "attach --pid PID",
	Short: "Attach gdb to a running process",
	Run: func(cmd *cobra.Command, args []string) {
		pid := viper.GetInt("attach")
		if pid == 0 {
			color.Red("gdbmi: --pid is required")
			os.Exit(1)
		}

		sctx := gdbmi.SessionContext{
			GdbPath:       viper.GetString("gdb-executable"),
			MinGdbVersion: viper.GetString("min-gdb-version"),
			AttachPID:     pid,
		}
		sink := newConsoleSink()
		session := gdbmi.NewSession(sctx, sink, nil)

		if err := session.AttachToProcess(context.Background(), pid); err != nil {
			color.Red("gdbmi: %v", err)
			os.Exit(1)
		}
		runConsoleLoop(session)
	},
}

func init() {
	RootCmd.AddCommand(attachCmd)
	attachCmd.Flags().Int("pid", 0, "pid of the running process to attach to")
}
