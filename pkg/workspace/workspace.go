// Package workspace parses and injects every definition file below a directory.
package workspace

import (
	"context"
	"path"
	"runtime"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/rwxml/pkg/diagnostic"
	"github.com/walteh/rwxml/pkg/dom"
	"github.com/walteh/rwxml/pkg/inject"
)

// ErrFileTooLarge is reported for files over Options.MaxFileSize. They are never parsed.
var ErrFileTooLarge = errors.Base("file too large")

const (
	DefaultInclude     = "**/*.xml"
	DefaultMaxFileSize = 8 << 20
)

type Options struct {
	// Include and Exclude are doublestar patterns relative to the workspace root.
	Include     []string
	Exclude     []string
	MaxFileSize int64
	Concurrency int
}

func (o Options) withDefaults() Options {
	if len(o.Include) == 0 {
		o.Include = []string{DefaultInclude}
	}
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	return o
}

// File is one parsed and injected document of the workspace.
type File struct {
	Path   string
	Result *inject.Result
}

// Workspace holds the latest parse of each file. It is safe for concurrent use;
// a File is replaced as a whole on update and never modified.
type Workspace struct {
	fs       afero.Fs
	injector *inject.Injector
	opts     Options

	mu    sync.RWMutex
	files map[string]*File
}

// New returns a workspace over fs. Paths are relative to root, which may be "" for
// the root of fs.
func New(fsys afero.Fs, root string, injector *inject.Injector, opts Options) *Workspace {
	if root != "" && root != "." && root != "/" {
		fsys = afero.NewBasePathFs(fsys, root)
	}
	return &Workspace{
		fs:       fsys,
		injector: injector,
		opts:     opts.withDefaults(),
		files:    map[string]*File{},
	}
}

func (w *Workspace) Options() Options { return w.opts }

// Fs is the file system rooted at the workspace root.
func (w *Workspace) Fs() afero.Fs { return w.fs }

// Discover returns the sorted paths matching an include pattern and no exclude pattern.
func (w *Workspace) Discover(ctx context.Context) ([]string, error) {
	for _, pattern := range append(append([]string{}, w.opts.Include...), w.opts.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid pattern %q", pattern)
		}
	}

	fsys := afero.NewIOFS(w.fs)

	seen := map[string]struct{}{}
	for _, pattern := range w.opts.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("globbing %q: %w", pattern, err)
		}
		for _, m := range matches {
			excluded, err := w.excluded(m)
			if err != nil {
				return nil, err
			}
			if !excluded {
				seen[m] = struct{}{}
			}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	zerolog.Ctx(ctx).Debug().Strs("include", w.opts.Include).Int("files", len(paths)).Msg("discovered files")
	return paths, nil
}

func (w *Workspace) excluded(p string) (bool, error) {
	for _, pattern := range w.opts.Exclude {
		ok, err := doublestar.Match(pattern, p)
		if err != nil {
			return false, errors.Errorf("matching exclude %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Load discovers and loads every file. Files that cannot be read are skipped and
// reported together in the returned error; the others are loaded regardless.
func (w *Workspace) Load(ctx context.Context) error {
	paths, err := w.Discover(ctx)
	if err != nil {
		return err
	}

	var (
		mu     sync.Mutex
		result *multierror.Error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Concurrency)
	for _, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := w.loadFile(ctx, p)
			if err != nil {
				mu.Lock()
				result = multierror.Append(result, err)
				mu.Unlock()
				return nil
			}
			w.put(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Errorf("loading workspace: %w", err)
	}

	zerolog.Ctx(ctx).Info().Int("files", len(paths)).Int("failed", failed(result)).Msg("loaded workspace")
	return result.ErrorOrNil()
}

func failed(err *multierror.Error) int {
	if err == nil {
		return 0
	}
	return len(err.Errors)
}

func (w *Workspace) loadFile(ctx context.Context, p string) (*File, error) {
	info, err := w.fs.Stat(p)
	if err != nil {
		return nil, errors.Errorf("stat %s: %w", p, err)
	}
	if info.Size() > w.opts.MaxFileSize {
		return nil, errors.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, p, info.Size(), w.opts.MaxFileSize)
	}

	data, err := afero.ReadFile(w.fs, p)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", p, err)
	}
	return w.build(ctx, p, string(data)), nil
}

func (w *Workspace) build(ctx context.Context, p string, text string) *File {
	doc := dom.Parse(ctx, p, text)
	return &File{Path: p, Result: w.injector.Inject(ctx, doc)}
}

func (w *Workspace) put(f *File) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[f.Path] = f
}

// Update replaces the content of one file, typically with unsaved editor text.
func (w *Workspace) Update(ctx context.Context, p string, text string) (*File, error) {
	if int64(len(text)) > w.opts.MaxFileSize {
		return nil, errors.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, p, len(text), w.opts.MaxFileSize)
	}
	f := w.build(ctx, path.Clean(p), text)
	w.put(f)
	return f, nil
}

func (w *Workspace) Remove(p string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path.Clean(p))
}

func (w *Workspace) File(p string) (*File, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	f, ok := w.files[path.Clean(p)]
	return f, ok
}

// Files returns every loaded file sorted by path.
func (w *Workspace) Files() []*File {
	w.mu.RLock()
	out := make([]*File, 0, len(w.files))
	for _, f := range w.files {
		out = append(out, f)
	}
	w.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// FindDef searches the defs of every file in path order.
func (w *Workspace) FindDef(tag, name string) *inject.Binding {
	for _, f := range w.Files() {
		if d := f.Result.FindDef(tag, name); d != nil {
			return d
		}
	}
	return nil
}

// Defs returns the defs of every file, grouped by file in path order.
func (w *Workspace) Defs() []*inject.Binding {
	var out []*inject.Binding
	for _, f := range w.Files() {
		out = append(out, f.Result.Defs...)
	}
	return out
}

// Diagnose generates the diagnostics of every file, resolving parents across files.
func (w *Workspace) Diagnose(ctx context.Context) (map[string]*diagnostic.Diagnostics, error) {
	gen := &diagnostic.DefaultGenerator{Defs: w}
	out := map[string]*diagnostic.Diagnostics{}
	for _, f := range w.Files() {
		diags, err := gen.Generate(ctx, f.Result)
		if err != nil {
			return nil, errors.Errorf("diagnosing %s: %w", f.Path, err)
		}
		out[f.Path] = diags
	}
	return out, nil
}
