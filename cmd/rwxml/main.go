package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	diagnosecmd "github.com/walteh/rwxml/cmd/rwxml/diagnose"
	"github.com/walteh/rwxml/cmd/rwxml/globals"
	hovercmd "github.com/walteh/rwxml/cmd/rwxml/hover"
	inspectcmd "github.com/walteh/rwxml/cmd/rwxml/inspect"
	parsecmd "github.com/walteh/rwxml/cmd/rwxml/parse"
	typeinfocmd "github.com/walteh/rwxml/cmd/rwxml/type-info"
)

func main() {
	if err := newRootCommand(&globals.Flags{}).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(flags *globals.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rwxml",
		Short: "Inspect and check RimWorld style XML definitions against a type catalog",
	}
	flags.Register(cmd)

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cmd.SetContext(flags.WithLogger(cmd.Context()))
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		cmd.Version = "unknown"
	} else {
		cmd.Version = info.Main.Version
	}
	cmd.InitDefaultVersionFlag()
	cmd.SilenceUsage = true

	cmd.AddCommand(parsecmd.NewParseCommand(flags))
	cmd.AddCommand(inspectcmd.NewInspectCommand(flags))
	cmd.AddCommand(hovercmd.NewHoverCommand(flags))
	cmd.AddCommand(diagnosecmd.NewDiagnoseCommand(flags))
	cmd.AddCommand(typeinfocmd.NewTypeInfoCommand(flags))

	return cmd
}
