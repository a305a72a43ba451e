// Package config loads the rwxml project file.
//
// A project file is YAML (.yaml, .yml) or HCL (anything else). HCL files may
// refer to the directory holding the file as `root`. When the file was loaded
// by a relative path, `root` is "." and the value stays relative to that directory:
//
//	catalog = "${root}/types.json"
//	include = ["Defs/**/*.xml"]
//
//	inject {
//	  def_marker = "Verse.Def"
//	}
package config

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/walteh/rwxml/pkg/inject"
	"github.com/walteh/rwxml/pkg/workspace"
)

// FileNames are the names Find looks for, in order.
var FileNames = []string{".rwxml.yaml", ".rwxml.yml", ".rwxml.hcl"}

var ErrNotFound = errors.Base("no rwxml config found")

type Config struct {
	// Catalog is the path of the exported type catalog, relative to the config file.
	Catalog     string       `json:"catalog" yaml:"catalog" hcl:"catalog,optional"`
	Include     []string     `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional"`
	Exclude     []string     `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
	MaxFileSize int64        `json:"max_file_size,omitempty" yaml:"max_file_size,omitempty" hcl:"max_file_size,optional"`
	Concurrency int          `json:"concurrency,omitempty" yaml:"concurrency,omitempty" hcl:"concurrency,optional"`
	Inject      *InjectBlock `json:"inject,omitempty" yaml:"inject,omitempty" hcl:"inject,block"`

	// Dir is the directory of the file the config was loaded from.
	Dir string `json:"-" yaml:"-"`
}

type InjectBlock struct {
	RootTag    string `json:"root_tag,omitempty" yaml:"root_tag,omitempty" hcl:"root_tag,optional"`
	DefNameTag string `json:"def_name_tag,omitempty" yaml:"def_name_tag,omitempty" hcl:"def_name_tag,optional"`
	ClassAttr  string `json:"class_attr,omitempty" yaml:"class_attr,omitempty" hcl:"class_attr,optional"`
	DefMarker  string `json:"def_marker,omitempty" yaml:"def_marker,omitempty" hcl:"def_marker,optional"`
}

// Default returns the config used when no file is present.
func Default() *Config {
	cfg := &Config{Dir: "."}
	cfg.ApplyDefaults()
	return cfg
}

func (c *Config) ApplyDefaults() {
	if len(c.Include) == 0 {
		c.Include = []string{workspace.DefaultInclude}
	}
	if c.MaxFileSize == 0 {
		c.MaxFileSize = workspace.DefaultMaxFileSize
	}
	if c.Inject == nil {
		c.Inject = &InjectBlock{}
	}
	def := inject.DefaultOptions()
	if c.Inject.RootTag == "" {
		c.Inject.RootTag = def.RootTag
	}
	if c.Inject.DefNameTag == "" {
		c.Inject.DefNameTag = def.DefNameTag
	}
	if c.Inject.ClassAttr == "" {
		c.Inject.ClassAttr = def.ClassAttr
	}
	if c.Inject.DefMarker == "" {
		c.Inject.DefMarker = def.DefMarker
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	if c.Catalog == "" {
		err = multierr.Append(err, errors.New("catalog is required"))
	}
	for _, p := range c.Include {
		if !doublestar.ValidatePattern(p) {
			err = multierr.Append(err, errors.Errorf("include pattern %q is invalid", p))
		}
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(p) {
			err = multierr.Append(err, errors.Errorf("exclude pattern %q is invalid", p))
		}
	}
	if c.MaxFileSize < 0 {
		err = multierr.Append(err, errors.Errorf("max_file_size must not be negative, got %d", c.MaxFileSize))
	}
	if c.Concurrency < 0 {
		err = multierr.Append(err, errors.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	return err
}

// CatalogPath resolves Catalog against the config directory.
func (c *Config) CatalogPath() string {
	if c.Catalog == "" || path.IsAbs(c.Catalog) {
		return c.Catalog
	}
	return path.Join(c.Dir, c.Catalog)
}

func (c *Config) InjectOptions() inject.Options {
	if c.Inject == nil {
		return inject.DefaultOptions()
	}
	return inject.Options{
		RootTag:    c.Inject.RootTag,
		DefNameTag: c.Inject.DefNameTag,
		ClassAttr:  c.Inject.ClassAttr,
		DefMarker:  c.Inject.DefMarker,
	}
}

func (c *Config) WorkspaceOptions() workspace.Options {
	return workspace.Options{
		Include:     c.Include,
		Exclude:     c.Exclude,
		MaxFileSize: c.MaxFileSize,
		Concurrency: c.Concurrency,
	}
}

// Find returns the first config file in dir or one of its parents.
func Find(fs afero.Fs, dir string) (string, error) {
	dir = path.Clean(dir)
	for {
		for _, name := range FileNames {
			candidate := path.Join(dir, name)
			if ok, _ := afero.Exists(fs, candidate); ok {
				return candidate, nil
			}
		}
		parent := path.Dir(dir)
		if parent == dir {
			return "", errors.Errorf("%w in %s or its parents", ErrNotFound, dir)
		}
		dir = parent
	}
}

// Override changes a loaded config before it is validated.
type Override func(*Config)

// WithCatalog replaces the catalog path. Relative paths stay relative to the config directory.
func WithCatalog(path string) Override {
	return func(c *Config) {
		if path != "" {
			c.Catalog = path
		}
	}
}

// LoadFile reads, defaults, overrides and validates the config at file.
func LoadFile(ctx context.Context, fs afero.Fs, file string, overrides ...Override) (*Config, error) {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data, file)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	for _, o := range overrides {
		o(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("invalid config %s: %w", file, err)
	}

	zerolog.Ctx(ctx).Debug().Str("file", file).Str("catalog", cfg.CatalogPath()).Strs("include", cfg.Include).Msg("loaded config")
	return cfg, nil
}

// Parse decodes data by the extension of file without applying defaults.
func Parse(data []byte, file string) (*Config, error) {
	dir := path.Dir(file)

	if strings.HasSuffix(file, ".yaml") || strings.HasSuffix(file, ".yml") {
		cfg := &Config{}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
		cfg.Dir = dir
		return cfg, nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, file)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// relative values are joined with Dir by CatalogPath
	root := dir
	if !path.IsAbs(root) {
		root = "."
	}
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"root": cty.StringVal(root),
		},
	}

	cfg := &Config{}
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}
	cfg.Dir = dir
	return cfg, nil
}
