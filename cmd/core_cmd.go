package cmd

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aroth-arsoft/gdbmi"
)

// coreCmd examines a core dump against an executable instead of running
// the inferior live.
var coreCmd = &cobra.Command{
	Use:   "core --executable BIN --core COREFILE",
	Short: "Examine a core dump with gdb",
	Run: func(cmd *cobra.Command, args []string) {
		executable := viper.GetString("executable")
		if cmd.Flags().Changed("executable") {
			executable, _ = cmd.Flags().GetString("executable")
		}
		corePath := viper.GetString("core")
		if executable == "" || corePath == "" {
			color.Red("gdbmi: both --executable and --core are required")
			os.Exit(1)
		}

		sctx := gdbmi.SessionContext{
			GdbPath:       viper.GetString("gdb-executable"),
			MinGdbVersion: viper.GetString("min-gdb-version"),
			Executable:    executable,
			CoreFile:      corePath,
		}
		sink := newConsoleSink()
		session := gdbmi.NewSession(sctx, sink, nil)

		if err := session.ExamineCoreFile(context.Background(), corePath); err != nil {
			color.Red("gdbmi: %v", err)
			os.Exit(1)
		}
		runConsoleLoop(session)
	},
}

func init() {
	RootCmd.AddCommand(coreCmd)
	coreCmd.Flags().String("executable", "", "the executable the core file was produced from")
	coreCmd.Flags().String("core", "", "path to the core dump")
}
