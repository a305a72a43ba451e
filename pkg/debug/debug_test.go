package debug_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/rwxml/pkg/debug"
)

func TestPackageAndFunc(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		pkg      string
		function string
	}{
		{"function", "github.com/walteh/rwxml/pkg/inject.New", "github.com/walteh/rwxml/pkg/inject", "New"},
		{"pointer_method", "github.com/walteh/rwxml/pkg/inject.(*Injector).Inject", "github.com/walteh/rwxml/pkg/inject", "(*Injector).Inject"},
		{"closure", "main.run.func1", "main", "run.func1"},
		{"no_dot", "weird", "weird", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, fn := debug.PackageAndFunc(tt.input)
			assert.Equal(t, tt.pkg, pkg)
			assert.Equal(t, tt.function, fn)
		})
	}
}

func TestFormatCaller(t *testing.T) {
	got := debug.FormatCaller("github.com/walteh/rwxml/pkg/dom", "/src/pkg/dom/builder.go", 27, false)
	assert.Equal(t, "pkg/dom:builder.go:27", got)
	assert.Equal(t, "x.go", debug.FileName("x.go"))
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := debug.NewLogger(&buf, debug.LoggerOptions{Level: zerolog.InfoLevel, Caller: true})

	logger.Debug().Msg("hidden")
	logger.Info().Str("uri", "Steel.xml").Msg("parsed document")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "parsed document")
	assert.Contains(t, out, "uri=Steel.xml")
	assert.Contains(t, out, "debug_test.go:")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := debug.NewLogger(&buf, debug.LoggerOptions{Level: zerolog.DebugLevel, JSON: true})

	logger.Debug().Int("files", 2).Msg("loaded workspace")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "loaded workspace", line["message"])
	assert.Equal(t, "debug", line["level"])
	assert.EqualValues(t, 2, line["files"])
	assert.NotEmpty(t, line["time"])
	assert.NotContains(t, line, "caller")
}

func TestDump(t *testing.T) {
	type inner struct {
		Name   string
		hidden int
	}
	out := debug.Dump(inner{Name: "Steel", hidden: 1}, false)
	assert.Contains(t, out, `"Steel"`)
	assert.NotContains(t, out, "hidden")
}
