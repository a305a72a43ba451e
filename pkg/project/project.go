// Package project ties a config, its catalog and a workspace together.
package project

import (
	"context"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rwxml/pkg/catalog"
	"github.com/walteh/rwxml/pkg/config"
	"github.com/walteh/rwxml/pkg/inject"
	"github.com/walteh/rwxml/pkg/workspace"
)

type Options struct {
	// Dir is where the config search starts and the workspace root when no config is found.
	Dir string
	// ConfigFile skips the search when set.
	ConfigFile string
	Catalog    string
}

type Project struct {
	Root      string
	Config    *config.Config
	Catalog   *catalog.Catalog
	Injector  *inject.Injector
	Workspace *workspace.Workspace

	fs afero.Fs
}

// Open loads the config and the catalog. Files are not read until Load or OpenFile.
func Open(ctx context.Context, fs afero.Fs, opts Options) (*Project, error) {
	dir := path.Clean(opts.Dir)

	cfg, err := loadConfig(ctx, fs, dir, opts)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.LoadFile(ctx, fs, cfg.CatalogPath())
	if err != nil {
		return nil, err
	}

	injector := inject.New(cat, cfg.InjectOptions())

	zerolog.Ctx(ctx).Debug().
		Str("root", cfg.Dir).
		Int("types", cat.Len()).
		Int("unresolved", len(cat.Unresolved())).
		Msg("opened project")

	return &Project{
		Root:      cfg.Dir,
		Config:    cfg,
		Catalog:   cat,
		Injector:  injector,
		Workspace: workspace.New(fs, cfg.Dir, injector, cfg.WorkspaceOptions()),
		fs:        fs,
	}, nil
}

func loadConfig(ctx context.Context, fs afero.Fs, dir string, opts Options) (*config.Config, error) {
	file := opts.ConfigFile
	if file == "" {
		found, err := config.Find(fs, dir)
		switch {
		case errors.Is(err, config.ErrNotFound):
			zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no config file, using defaults")
			cfg := config.Default()
			cfg.Dir = dir
			config.WithCatalog(opts.Catalog)(cfg)
			if err := cfg.Validate(); err != nil {
				return nil, errors.Errorf("no config file in %s: %w", dir, err)
			}
			return cfg, nil
		case err != nil:
			return nil, err
		}
		file = found
	}
	return config.LoadFile(ctx, fs, file, config.WithCatalog(opts.Catalog))
}

// Load reads every workspace file.
func (p *Project) Load(ctx context.Context) error {
	return p.Workspace.Load(ctx)
}

// Rel returns file relative to the project root. Files outside the root are returned cleaned.
func (p *Project) Rel(file string) string {
	file = path.Clean(file)
	if !path.IsAbs(file) {
		return file
	}
	if p.Root == "/" {
		return strings.TrimPrefix(file, "/")
	}
	if rel, ok := strings.CutPrefix(file, p.Root+"/"); ok {
		return rel
	}
	return file
}

// OpenFile reads one file into the workspace, whether or not it matches the include patterns.
func (p *Project) OpenFile(ctx context.Context, file string) (*workspace.File, error) {
	rel := p.Rel(file)
	if path.IsAbs(rel) || strings.HasPrefix(rel, "../") {
		return nil, errors.Errorf("%s is outside of %s", file, p.Root)
	}

	data, err := afero.ReadFile(p.Workspace.Fs(), rel)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", file, err)
	}
	return p.Workspace.Update(ctx, rel, string(data))
}
