package inspect

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rwxml/cmd/rwxml/globals"
	"github.com/walteh/rwxml/pkg/debug"
	"github.com/walteh/rwxml/pkg/hover"
	"github.com/walteh/rwxml/pkg/inject"
)

type Handler struct {
	flags    *globals.Flags
	file     string
	path     string
	defsOnly bool
	dump     bool
}

func NewInspectCommand(flags *globals.Flags) *cobra.Command {
	me := &Handler{flags: flags}

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "list the types bound to the elements of a definition file",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().StringVar(&me.path, "path", "", "describe the element at a def path such as ThingDef.Steel.comps[0]")
	cmd.Flags().BoolVar(&me.defsOnly, "defs", false, "list defs only")
	cmd.Flags().BoolVar(&me.dump, "dump", false, "dump the binding at --path as a go value")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.file = args[0]
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

// bindingSummary is what --dump prints; a Binding itself links the whole tree.
type bindingSummary struct {
	Path     string
	Tag      string
	Role     string
	Type     string
	Declared string
	Field    string
	Range    string
}

func summarize(b *inject.Binding) bindingSummary {
	s := bindingSummary{
		Path:  b.Path().String(),
		Tag:   b.Element.Name,
		Role:  b.Role.String(),
		Type:  b.Type.FullName,
		Range: b.Element.Range().String(),
	}
	if b.Declared != nil {
		s.Declared = b.Declared.FullName
	}
	if b.Field != nil {
		s.Field = b.Field.String()
	}
	return s
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	p, err := me.flags.OpenProject(ctx)
	if err != nil {
		return err
	}
	abs, err := me.flags.Abs(me.file)
	if err != nil {
		return err
	}
	f, err := p.OpenFile(ctx, abs)
	if err != nil {
		return err
	}
	r := f.Result

	if me.path != "" {
		el, err := r.Lookup(me.path)
		if err != nil {
			return err
		}
		b, ok := r.Binding(el)
		if !ok {
			return errors.Errorf("%s has no type", me.path)
		}
		if me.dump {
			fmt.Fprintln(out, debug.Dump(summarize(b), !color.NoColor))
			return nil
		}
		fmt.Fprintln(out, hover.FormatBinding(b))
		return nil
	}

	bindings := r.Bindings()
	if me.defsOnly {
		bindings = r.Defs
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, b := range bindings {
		typ := b.Type.FullName
		if b.Overridden() && b.Declared != nil {
			typ += " (declared " + b.Declared.FullName + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Path(), b.Role, typ)
	}
	return tw.Flush()
}
