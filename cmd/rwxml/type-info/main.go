package type_info

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rwxml/cmd/rwxml/globals"
	"github.com/walteh/rwxml/pkg/hover"
)

type Handler struct {
	flags *globals.Flags
	names []string
}

func NewTypeInfoCommand(flags *globals.Flags) *cobra.Command {
	me := &Handler{flags: flags}

	cmd := &cobra.Command{
		Use:   "type-info [name...]",
		Short: "describe catalog types by full name, class name or alias",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.names = args
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	p, err := me.flags.OpenProject(ctx)
	if err != nil {
		return err
	}

	var missing []string
	for i, name := range me.names {
		t := p.Catalog.TypeInfoByName(ctx, name)
		if t == nil {
			missing = append(missing, name)
			continue
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, hover.FormatType(t))
	}

	if len(missing) > 0 {
		return errors.Errorf("not in the catalog: %s", strings.Join(missing, ", "))
	}
	return nil
}
