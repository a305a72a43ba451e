// Package globals holds the flags shared by every rwxml subcommand.
package globals

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rwxml/pkg/debug"
	"github.com/walteh/rwxml/pkg/project"
)

type Flags struct {
	Config  string
	Catalog string
	Dir     string
	Debug   bool
	Trace   bool
	JSONLog bool

	Fs afero.Fs
}

func (f *Flags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.Config, "config", "", "config file, searched from --dir upwards when empty")
	cmd.PersistentFlags().StringVar(&f.Catalog, "catalog", "", "type catalog export, overrides the config")
	cmd.PersistentFlags().StringVar(&f.Dir, "dir", "", "project directory (default is the working directory)")
	cmd.PersistentFlags().BoolVar(&f.Debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&f.Trace, "trace", false, "enable trace logging")
	cmd.PersistentFlags().BoolVar(&f.JSONLog, "log-json", false, "log as json lines")
}

// WithLogger attaches the logger selected by the flags to ctx.
func (f *Flags) WithLogger(ctx context.Context) context.Context {
	level := zerolog.WarnLevel
	switch {
	case f.Trace:
		level = zerolog.TraceLevel
	case f.Debug:
		level = zerolog.DebugLevel
	}

	logger := debug.NewLogger(os.Stderr, debug.LoggerOptions{
		Level:  level,
		Color:  !color.NoColor,
		Caller: f.Debug || f.Trace,
		JSON:   f.JSONLog,
	})
	return logger.WithContext(ctx)
}

func (f *Flags) fs() afero.Fs {
	if f.Fs == nil {
		f.Fs = afero.NewOsFs()
	}
	return f.Fs
}

// Abs resolves a command line path against the working directory.
func (f *Flags) Abs(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", path, err)
	}
	return filepath.ToSlash(abs), nil
}

// ReadFile reads a command line path.
func (f *Flags) ReadFile(path string) (string, string, error) {
	abs, err := f.Abs(path)
	if err != nil {
		return "", "", err
	}
	data, err := afero.ReadFile(f.fs(), abs)
	if err != nil {
		return "", "", errors.Errorf("reading %s: %w", path, err)
	}
	return abs, string(data), nil
}

// OpenProject opens the project selected by the flags.
func (f *Flags) OpenProject(ctx context.Context) (*project.Project, error) {
	dir := f.Dir
	if dir == "" {
		dir = "."
	}

	opts := project.Options{}
	var err error
	if opts.Dir, err = f.Abs(dir); err != nil {
		return nil, err
	}
	if opts.ConfigFile, err = f.Abs(f.Config); err != nil {
		return nil, err
	}
	if opts.Catalog, err = f.Abs(f.Catalog); err != nil {
		return nil, err
	}

	p, err := project.Open(ctx, f.fs(), opts)
	if err != nil {
		return nil, errors.Errorf("opening project: %w", err)
	}
	return p, nil
}
