package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultMinGdbVersion = "7.0.0"
)

var (
	cfgFile       string
	gGdbExecutableFlag string
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "gdbmi",
	Short: "gdbmi drives GDB's machine interface from the command line",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(); it only needs to happen
// once to RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "print more messages about what gdbmi is doing")
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gdbmi.yaml)")
	RootCmd.PersistentFlags().StringVar(&gGdbExecutableFlag, "gdb-executable", "", "the gdb executable (default is to assume gdb exists in $PATH)")
	RootCmd.PersistentFlags().String("min-gdb-version", defaultMinGdbVersion, "reject a gdb older than this version")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.SetConfigName(".gdbmi")
	viper.AddConfigPath("$HOME")
	viper.AutomaticEnv()
	viper.SetConfigType("yaml")

	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("gdb-executable", RootCmd.PersistentFlags().Lookup("gdb-executable"))
	viper.BindPFlag("min-gdb-version", RootCmd.PersistentFlags().Lookup("min-gdb-version"))

	viper.BindPFlag("executable", runCmd.Flags().Lookup("executable"))
	viper.BindPFlag("args", runCmd.Flags().Lookup("args"))
	viper.BindPFlag("break-on-start", runCmd.Flags().Lookup("break-on-start"))
	viper.BindPFlag("asm-demangle", runCmd.Flags().Lookup("asm-demangle"))
	viper.BindPFlag("disassembly-flavor", runCmd.Flags().Lookup("disassembly-flavor"))
	viper.BindPFlag("attach", attachCmd.Flags().Lookup("pid"))
	viper.BindPFlag("core", coreCmd.Flags().Lookup("core"))

	viper.SetDefault("gdb-executable", "gdb")
	viper.SetDefault("min-gdb-version", defaultMinGdbVersion)
	viper.SetDefault("disassembly-flavor", "")

	viper.RegisterAlias("gdb_executable", "gdb-executable")
	viper.RegisterAlias("min_gdb_version", "min-gdb-version")
	viper.RegisterAlias("break_on_start", "break-on-start")
	viper.RegisterAlias("asm_demangle", "asm-demangle")
	viper.RegisterAlias("disassembly_flavor", "disassembly-flavor")

	if err := viper.ReadInConfig(); err == nil {
		color.Yellow("gdbmi: using config file: %v", viper.ConfigFileUsed())
	}
}
