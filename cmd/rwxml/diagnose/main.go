package diagnose

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rwxml/cmd/rwxml/globals"
	"github.com/walteh/rwxml/pkg/diagnostic"
)

var ErrProblemsFound = errors.Base("problems found")

type Handler struct {
	flags  *globals.Flags
	files  []string
	format string
	strict bool
}

func NewDiagnoseCommand(flags *globals.Flags) *cobra.Command {
	me := &Handler{flags: flags}

	cmd := &cobra.Command{
		Use:   "diagnose [file...]",
		Short: "check definition files against the type catalog",
		Long:  "Checks every workspace file, or only the given files. Parents are resolved across the whole workspace.",
	}

	cmd.Flags().StringVar(&me.format, "format", "text", "output format: text or json")
	cmd.Flags().BoolVar(&me.strict, "strict", false, "fail on warnings too")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.files = args
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	if me.format != "text" && me.format != "json" {
		return errors.Errorf("unknown format %q", me.format)
	}

	p, err := me.flags.OpenProject(ctx)
	if err != nil {
		return err
	}
	if err := p.Load(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("some files were not loaded")
	}

	var only map[string]bool
	if len(me.files) > 0 {
		only = map[string]bool{}
		for _, file := range me.files {
			abs, err := me.flags.Abs(file)
			if err != nil {
				return err
			}
			f, err := p.OpenFile(ctx, abs)
			if err != nil {
				return err
			}
			only[f.Path] = true
		}
	}

	all, err := p.Workspace.Diagnose(ctx)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(all))
	for path := range all {
		if only == nil || only[path] {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	if me.format == "json" {
		err = writeJSON(out, paths, all)
	} else {
		writeText(out, paths, all)
	}
	if err != nil {
		return err
	}

	var errs, warnings int
	for _, path := range paths {
		errs += len(all[path].Errors)
		warnings += len(all[path].Warnings)
	}
	if errs > 0 || (me.strict && warnings > 0) {
		return errors.Errorf("%w: %d errors, %d warnings", ErrProblemsFound, errs, warnings)
	}
	return nil
}

var severityColor = map[diagnostic.DiagnosticSeverity]*color.Color{
	diagnostic.Error:   color.New(color.FgRed, color.Bold),
	diagnostic.Warning: color.New(color.FgYellow),
	diagnostic.Info:    color.New(color.FgCyan),
}

func writeText(out io.Writer, paths []string, all map[string]*diagnostic.Diagnostics) {
	for _, path := range paths {
		for _, d := range all[path].All() {
			fmt.Fprintf(out, "%s:%d:%d: %s: %s [%s]\n",
				path, d.Line, d.Column, severityColor[d.Severity].Sprint(d.Severity), d.Message, d.Code)
		}
	}
}

func writeJSON(out io.Writer, paths []string, all map[string]*diagnostic.Diagnostics) error {
	formatter := diagnostic.NewVSCodeFormatter()
	result := make(map[string]json.RawMessage, len(paths))
	for _, path := range paths {
		data, err := formatter.Format(all[path])
		if err != nil {
			return errors.Errorf("formatting %s: %w", path, err)
		}
		result[path] = data
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return errors.Errorf("encoding diagnostics: %w", err)
	}
	return nil
}
