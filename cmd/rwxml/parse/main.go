package parse

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/walteh/rwxml/cmd/rwxml/globals"
	"github.com/walteh/rwxml/pkg/dom"
	"github.com/walteh/rwxml/pkg/position"
)

type Handler struct {
	flags *globals.Flags
	file  string
}

func NewParseCommand(flags *globals.Flags) *cobra.Command {
	me := &Handler{flags: flags}

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "print the node tree of an XML file with byte ranges",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.file = args[0]
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	uri, text, err := me.flags.ReadFile(me.file)
	if err != nil {
		return err
	}

	doc := dom.Parse(ctx, uri, text)
	fmt.Fprint(out, dom.Outline(doc))

	for _, rng := range doc.StrayCloseTags() {
		fmt.Fprintf(out, "stray %s at %s %s\n", rng.Slice(text), position.GetLineAndColumn(text, rng.Start), rng)
	}
	return nil
}
