package hover_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/rwxml/pkg/catalog/catalogtest"
	"github.com/walteh/rwxml/pkg/diff"
	"github.com/walteh/rwxml/pkg/dom"
	"github.com/walteh/rwxml/pkg/hover"
	"github.com/walteh/rwxml/pkg/inject"
)

const steel = `<Defs>
  <ThingDef Name="ResourceBase" Abstract="True"/>
  <ThingDef ParentName="ResourceBase">
    <defName>Steel</defName>
    <stuffCost>5</stuffCost>
    <techLevel>Industrial</techLevel>
    <comps>
      <li Class="CompProperties_Forbiddable"/>
      <li Class="Nope"/>
    </comps>
    <unknown>1</unknown>
  </ThingDef>
</Defs>`

func setup(t *testing.T) *inject.Result {
	t.Helper()
	ctx := context.Background()
	doc := dom.Parse(ctx, "Steel.xml", steel)
	return inject.New(catalogtest.Load(t), inject.DefaultOptions()).Inject(ctx, doc)
}

func at(needle string, delta int) int {
	return strings.Index(steel, needle) + delta
}

func TestBuildHoverResponse(t *testing.T) {
	r := setup(t)

	tests := []struct {
		name     string
		offset   int
		contains []string
		nilInfo  bool
	}{
		{
			name:     "field_content",
			offset:   at("5</stuffCost>", 0),
			contains: []string{"### field `costStuffCount`", "**Alias**: `stuffCost`", "**Path**: `ThingDef.Steel.stuffCost`"},
		},
		{
			name:     "enum_values",
			offset:   at("Industrial", 2),
			contains: []string{"**Type**: `RimWorld.TechLevel`", "**Values**: Undefined, Animal, Neolithic, Medieval, Industrial, Spacer, Ultra, Archotech"},
		},
		{
			name:     "list_items",
			offset:   at("<comps>", 2),
			contains: []string{"### field `comps`", "**Items**: `Verse.CompProperties`"},
		},
		{
			name:     "def",
			offset:   at(`<ThingDef ParentName`, 3),
			contains: []string{"### def `Steel`", "**Type**: `Verse.ThingDef`", "**Fields**:", "- `comps` `System.Collections.Generic.List`1[[Verse.CompProperties]]`"},
		},
		{
			name:     "class_attribute",
			offset:   at("CompProperties_Forbiddable", 3),
			contains: []string{"### type `RimWorld.CompProperties_Forbiddable`", "**Base**: `Verse.CompProperties`", "- `allowNonPlayer` `System.Boolean`"},
		},
		{
			name:     "unresolved_class_attribute",
			offset:   at(`"Nope"`, 2),
			contains: []string{"class `Nope` is not in the catalog"},
		},
		{
			name:     "item_with_unresolved_class",
			offset:   at(`<li Class="Nope"`, 1),
			contains: []string{"### list item `<li>`", "**Type**: `Verse.CompProperties`", "**Path**: `ThingDef.Steel.comps[1]`"},
		},
		{
			name:     "parent_name",
			offset:   at(`"ResourceBase">`, 3),
			contains: []string{"### def `ResourceBase`", "**Path**: `ThingDef.ResourceBase`"},
		},
		{name: "unknown_field", offset: at("1</unknown>", 0), nilInfo: true},
		{name: "root", offset: at("<Defs>", 1), nilInfo: true},
		{name: "outside", offset: len(steel) + 10, nilInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := hover.BuildHoverResponse(context.Background(), r, tt.offset)
			require.NoError(t, err)
			if tt.nilInfo {
				assert.Nil(t, info)
				return
			}
			require.NotNil(t, info)
			require.Len(t, info.Content, 1)
			for _, want := range tt.contains {
				assert.Contains(t, info.Content[0], want)
			}
			assert.True(t, info.Range.Contains(tt.offset), "range %s does not contain %d", info.Range, tt.offset)
		})
	}
}

func TestFormatBinding(t *testing.T) {
	r := setup(t)
	el, err := r.Lookup("ThingDef.Steel.stuffCost")
	require.NoError(t, err)
	b, ok := r.Binding(el)
	require.True(t, ok)

	want := strings.Join([]string{
		"### field `costStuffCount`",
		"",
		"**Type**: `System.Int32`",
		"",
		"**Declared by**: `Verse.BuildableDef`",
		"",
		"**Alias**: `stuffCost`",
		"",
		"**Path**: `ThingDef.Steel.stuffCost`",
	}, "\n")

	if d := diff.Text(want, hover.FormatBinding(b)); d != "" {
		t.Fatal(d)
	}
}

func TestBuildWithDefFinder(t *testing.T) {
	ctx := context.Background()
	injector := inject.New(catalogtest.Load(t), inject.DefaultOptions())

	text := `<Defs><ThingDef ParentName="MetalBase"><defName>Plasteel</defName></ThingDef></Defs>`
	r := injector.Inject(ctx, dom.Parse(ctx, "Plasteel.xml", text))
	bases := injector.Inject(ctx, dom.Parse(ctx, "Bases.xml", `<Defs><ThingDef Name="MetalBase" Abstract="True"/></Defs>`))
	offset := strings.Index(text, "MetalBase") + 2

	info, err := hover.BuildHoverResponse(ctx, r, offset)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, []string{"parent `MetalBase` is not defined in this file"}, info.Content)

	info, err = (&hover.Builder{Defs: bases}).Build(ctx, r, offset)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Contains(t, info.Content[0], "### def `MetalBase`")
	assert.Contains(t, info.Content[0], "**Path**: `ThingDef.MetalBase`")

	info, err = (&hover.Builder{Defs: r}).Build(ctx, r, offset)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, []string{"parent `MetalBase` is not defined in the project"}, info.Content)
}

func TestBuildHoverResponseNilResult(t *testing.T) {
	_, err := hover.BuildHoverResponse(context.Background(), nil, 0)
	require.Error(t, err)
}
