package hover

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rwxml/cmd/rwxml/globals"
	"github.com/walteh/rwxml/pkg/hover"
	"github.com/walteh/rwxml/pkg/position"
)

type Handler struct {
	flags     *globals.Flags
	file      string
	line      int
	character int
}

func NewHoverCommand(flags *globals.Flags) *cobra.Command {
	me := &Handler{flags: flags}

	cmd := &cobra.Command{
		Use:   "hover [file] [line] [character]",
		Short: "describe the element at a one based line and character",
		Args:  cobra.ExactArgs(3),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.file = args[0]
		var err error
		me.line, err = strconv.Atoi(args[1])
		if err != nil {
			return errors.Errorf("invalid line number: %w", err)
		}
		me.character, err = strconv.Atoi(args[2])
		if err != nil {
			return errors.Errorf("invalid character number: %w", err)
		}
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	if me.line < 1 || me.character < 1 {
		return errors.Errorf("line and character start at 1, got %d:%d", me.line, me.character)
	}

	p, err := me.flags.OpenProject(ctx)
	if err != nil {
		return err
	}
	if err := p.Load(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("some files were not loaded")
	}
	abs, err := me.flags.Abs(me.file)
	if err != nil {
		return err
	}
	f, err := p.OpenFile(ctx, abs)
	if err != nil {
		return err
	}

	text := f.Result.Document.Text()
	offset := position.GetOffset(text, position.Place{Line: me.line - 1, Character: me.character - 1})
	if offset < 0 {
		return errors.Errorf("%d:%d is outside of %s", me.line, me.character, me.file)
	}

	builder := &hover.Builder{Defs: p.Workspace}
	info, err := builder.Build(ctx, f.Result, offset)
	if err != nil {
		return err
	}
	if info == nil {
		fmt.Fprintln(out, "nothing to show")
		return nil
	}

	fmt.Fprintln(out, strings.Join(info.Content, "\n\n"))
	fmt.Fprintf(out, "\n(%s %s)\n", position.GetLineAndColumn(text, info.Range.Start), info.Range)
	return nil
}
