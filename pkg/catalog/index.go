package catalog

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// primitiveAliases maps the short spellings used in definition files to full names.
var primitiveAliases = map[string]string{
	"int":    "System.Int32",
	"float":  "System.Single",
	"double": "System.Double",
	"long":   "System.Int64",
	"short":  "System.Int16",
	"byte":   "System.Byte",
	"bool":   "System.Boolean",
	"string": "System.String",
	"char":   "System.Char",
}

// wellKnownNamespaces are retried with the namespace dropped.
var wellKnownNamespaces = []string{"Verse.", "RimWorld.", "System."}

// TypeInfoByName resolves a type name. In order it tries: primitive aliases, the
// exact full name, a case insensitive class name match (first registered wins),
// the trailing short name of names in a well known namespace, and finally the name
// with one duplicated leading namespace segment collapsed ("RimWorld.RimWorld.X").
// It returns nil when nothing matches.
func (c *Catalog) TypeInfoByName(ctx context.Context, name string) *TypeInfo {
	return c.lookup(ctx, name, true)
}

func (c *Catalog) lookup(ctx context.Context, name string, normalize bool) *TypeInfo {
	if c == nil || name == "" {
		return nil
	}
	logger := zerolog.Ctx(ctx)

	if full, ok := primitiveAliases[name]; ok {
		logger.Trace().Str("name", name).Str("alias", full).Msg("resolved primitive alias")
		name = full
	}

	if t := c.byFullOrClassName(name); t != nil {
		logger.Trace().Str("name", name).Str("type", t.FullName).Msg("found type")
		return t
	}

	for _, ns := range wellKnownNamespaces {
		if !strings.HasPrefix(name, ns) {
			continue
		}
		short := name[strings.LastIndexByte(name, '.')+1:]
		if t := c.byFullOrClassName(short); t != nil {
			logger.Trace().Str("name", name).Str("short", short).Str("type", t.FullName).Msg("found type by short name")
			return t
		}
	}

	if normalize {
		if collapsed, ok := collapseDuplicatedPrefix(name); ok {
			logger.Trace().Str("name", name).Str("collapsed", collapsed).Msg("retrying with collapsed namespace")
			return c.lookup(ctx, collapsed, false)
		}
	}

	logger.Trace().Str("name", name).Msg("type not found")
	return nil
}

func (c *Catalog) byFullOrClassName(name string) *TypeInfo {
	if id, ok := c.byName[name]; ok {
		return c.types[id]
	}
	if id, ok := c.byClassName[strings.ToLower(name)]; ok {
		return c.types[id]
	}
	return nil
}

// collapseDuplicatedPrefix turns "A.A.rest" into "A.rest".
func collapseDuplicatedPrefix(name string) (string, bool) {
	first, rest, ok := strings.Cut(name, ".")
	if !ok || first == "" {
		return "", false
	}
	if !strings.HasPrefix(rest, first+".") {
		return "", false
	}
	return rest, true
}
