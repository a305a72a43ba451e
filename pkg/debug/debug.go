// Package debug configures logging for the command line tools.
package debug

import (
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"
	"github.com/rs/zerolog"
)

// LoggerOptions control NewLogger.
type LoggerOptions struct {
	Level  zerolog.Level
	Color  bool
	Caller bool
	// JSON writes one object per line instead of the console format.
	JSON bool
}

// NewLogger returns a logger writing to out. Attach it with logger.WithContext.
func NewLogger(out io.Writer, opts LoggerOptions) zerolog.Logger {
	w := out
	if !opts.JSON {
		w = zerolog.ConsoleWriter{
			Out:           out,
			NoColor:       !opts.Color,
			PartsOrder:    []string{"time", "level", "caller", "message"},
			FieldsExclude: []string{"time", "caller"},
			FormatTimestamp: func(i interface{}) string {
				s, _ := i.(string)
				return s
			},
			FormatCaller: func(i interface{}) string {
				s, _ := i.(string)
				return s
			},
		}
	}

	logger := zerolog.New(w).Level(opts.Level).Hook(TimeHook{})
	if opts.Caller {
		logger = logger.Hook(CallerHook{WithColor: opts.Color && !opts.JSON})
	}
	return logger
}

func skipFrameCount(e *zerolog.Event) int {
	v := reflect.ValueOf(e).Elem()
	field := v.FieldByName("skipFrame")
	if field.IsValid() {
		return int(field.Int())
	}
	return 0
}

type TimeHook struct {
	Format string
}

func (t TimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	format := t.Format
	if format == "" {
		// millisecond precision, no zone
		format = "15:04:05.000"
	}
	e.Str("time", time.Now().Format(format))
}

type CallerHook struct {
	WithColor bool
}

func (c CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(skipFrameCount(e) + 3)
	if !ok {
		return
	}

	pkg, _ := PackageAndFunc(runtime.FuncForPC(pc).Name())
	e.Str("caller", FormatCaller(pkg, file, line, c.WithColor))
}

// PackageAndFunc splits a qualified function name as reported by runtime.FuncForPC.
func PackageAndFunc(name string) (pkg, function string) {
	lastSlash := strings.LastIndexByte(name, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}

	firstDot := strings.IndexByte(name[lastSlash:], '.')
	if firstDot < 0 {
		return name, ""
	}
	firstDot += lastSlash

	pkg = name[:firstDot]
	function = name[firstDot+1:]

	if strings.Contains(pkg, ".(") {
		parts := strings.SplitN(pkg, ".(", 2)
		pkg = parts[0]
		function = "(" + parts[1] + "." + function
	}
	return pkg, function
}

func FormatCaller(pkg, file string, line int, colorize bool) string {
	pkg = strings.TrimPrefix(pkg, "github.com/walteh/rwxml/")
	name := FileName(file)
	if colorize {
		name = color.New(color.Bold).Sprint(name)
		num := color.New(color.FgHiRed, color.Bold).Sprintf("%d", line)
		sep := color.New(color.Faint).Sprint(":")
		return fmt.Sprintf("%s%s%s%s%s", pkg, sep, name, sep, num)
	}
	return fmt.Sprintf("%s:%s:%d", pkg, name, line)
}

func FileName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Dump pretty prints v, exported fields only.
func Dump(v any, colorize bool) string {
	printer := pp.New()
	printer.SetColoringEnabled(colorize)
	printer.SetExportedOnly(true)
	return printer.Sprint(v)
}
