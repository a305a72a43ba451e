package inject_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rwxml/pkg/catalog/catalogtest"
	"github.com/walteh/rwxml/pkg/dom"
	"github.com/walteh/rwxml/pkg/inject"
)

const steelDefs = `<?xml version="1.0" encoding="utf-8"?>
<Defs>
  <ThingDef Name="ResourceBase" Abstract="True">
    <stackLimit>75</stackLimit>
  </ThingDef>
  <ThingDef ParentName="ResourceBase">
    <defName>Steel</defName>
    <label>steel</label>
    <stuffCost>5</stuffCost>
    <techLevel>Industrial</techLevel>
    <unknownThing><deep>1</deep></unknownThing>
    <graphicData>
      <texPath>Things/Steel</texPath>
    </graphicData>
    <comps>
      <li Class="CompProperties_Forbiddable">
        <allowNonPlayer>true</allowNonPlayer>
      </li>
      <li>
        <compClass>CompColorable</compClass>
      </li>
      <anything/>
    </comps>
    <tradeTags>
      <li>Metal</li>
    </tradeTags>
    <butcherProducts>
      <Steel>5</Steel>
      <li><thingDef>Steel</thingDef><count>1</count></li>
    </butcherProducts>
    <stuffMultipliers>
      <li><key>Heat</key><value>2</value></li>
      <Cold>3</Cold>
    </stuffMultipliers>
    <graphicVariants>
      <li><texPath>a</texPath></li>
    </graphicVariants>
    <mystery>?</mystery>
  </ThingDef>
  <RecipeDef>
    <workAmount>10</workAmount>
  </RecipeDef>
  <NotADef><x/></NotADef>
  <CompProperties/>
  <!-- trailing comment -->
</Defs>
`

func injectText(t *testing.T, text string, opts inject.Options) *inject.Result {
	t.Helper()
	ctx := context.Background()
	doc := dom.Parse(ctx, "Steel.xml", text)
	return inject.New(catalogtest.Load(t), opts).Inject(ctx, doc)
}

func lookup(t *testing.T, r *inject.Result, path string) *dom.Element {
	t.Helper()
	el, err := r.Lookup(path)
	require.NoError(t, err, "path %s", path)
	return el
}

func bindingOf(t *testing.T, r *inject.Result, path string) *inject.Binding {
	t.Helper()
	b, ok := r.Binding(lookup(t, r, path))
	require.True(t, ok, "path %s is not bound", path)
	return b
}

func TestInjectDefs(t *testing.T) {
	r := injectText(t, steelDefs, inject.DefaultOptions())

	require.Len(t, r.Defs, 3)
	base, steel, recipe := r.Defs[0], r.Defs[1], r.Defs[2]

	assert.Equal(t, "ThingDef.ResourceBase", base.Path().String())
	assert.True(t, base.IsAbstract())
	assert.Equal(t, "", base.DefName())

	assert.Equal(t, "ThingDef.Steel", steel.Path().String())
	assert.Equal(t, "Steel", steel.DefName())
	assert.Equal(t, "Verse.ThingDef", steel.DefType().FullName)
	assert.False(t, steel.IsAbstract())
	assert.Same(t, base, r.ParentOf(steel))
	assert.Nil(t, r.ParentOf(base))

	assert.Equal(t, "RecipeDef[2]", recipe.Path().String())
	assert.Equal(t, "RimWorld.RecipeDef", recipe.DefType().FullName)

	assert.Same(t, steel, r.FindDef("ThingDef", "Steel"))
	assert.Same(t, base, r.FindDef("ThingDef", "ResourceBase"))
	assert.Nil(t, r.FindDef("RecipeDef", "Steel"))

	for _, d := range r.Defs {
		assert.True(t, d.IsDef())
		assert.Equal(t, inject.RoleDefRoot, d.Role)
		assert.Nil(t, d.Field)
	}

	// top level elements whose tag is not a def type stay unbound
	for _, path := range []string{"NotADef[3]", "CompProperties[4]", "NotADef[3].x"} {
		_, ok := r.Binding(lookup(t, r, path))
		assert.False(t, ok, path)
	}
}

func TestInjectFields(t *testing.T) {
	r := injectText(t, steelDefs, inject.DefaultOptions())

	tests := []struct {
		path  string
		typ   string
		field string
		role  inject.Role
	}{
		{path: "ThingDef.ResourceBase.stackLimit", typ: "System.Int32", field: "stackLimit"},
		{path: "ThingDef.Steel.defName", typ: "System.String", field: "defName"},
		{path: "ThingDef.Steel.label", typ: "System.String", field: "label"},
		{path: "ThingDef.Steel.stuffCost", typ: "System.Int32", field: "costStuffCount"},
		{path: "ThingDef.Steel.techLevel", typ: catalogtest.TechLevelEnum, field: "techLevel"},
		{path: "ThingDef.Steel.graphicData", typ: catalogtest.GraphicData, field: "graphicData"},
		{path: "ThingDef.Steel.graphicData.texPath", typ: "System.String", field: "texPath"},
		{path: "RecipeDef[2].workAmount", typ: "System.Single", field: "workAmount"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			b := bindingOf(t, r, tt.path)
			assert.Equal(t, tt.typ, b.Type.FullName)
			require.NotNil(t, b.Field)
			assert.Equal(t, tt.field, b.Field.Name)
			assert.Equal(t, tt.role, b.Role)
			assert.False(t, b.Overridden())
		})
	}
}

func TestInjectList(t *testing.T) {
	r := injectText(t, steelDefs, inject.DefaultOptions())

	comps := bindingOf(t, r, "ThingDef.Steel.comps")
	assert.Equal(t, catalogtest.ListOfComps, comps.Type.FullName)

	second := bindingOf(t, r, "ThingDef.Steel.comps[1]")
	assert.Equal(t, "Verse.CompProperties", second.Type.FullName)
	assert.Equal(t, inject.RoleListItem, second.Role)
	assert.Nil(t, second.Field)

	// tag names do not matter inside a sequence
	anything := bindingOf(t, r, "ThingDef.Steel.comps[2]")
	assert.Equal(t, "anything", anything.Element.Name)
	assert.Equal(t, "Verse.CompProperties", anything.Type.FullName)

	compClass := bindingOf(t, r, "ThingDef.Steel.comps[1].compClass")
	assert.Equal(t, "System.String", compClass.Type.FullName)

	tag := bindingOf(t, r, "ThingDef.Steel.tradeTags[0]")
	assert.Equal(t, "System.String", tag.Type.FullName)

	variant := bindingOf(t, r, "ThingDef.Steel.graphicVariants[0]")
	assert.Equal(t, catalogtest.GraphicData, variant.Type.FullName)
	assert.Equal(t, "System.String", bindingOf(t, r, "ThingDef.Steel.graphicVariants[0].texPath").Type.FullName)
}

func TestInjectClassOverride(t *testing.T) {
	r := injectText(t, steelDefs, inject.DefaultOptions())

	first := bindingOf(t, r, "ThingDef.Steel.comps[0]")
	assert.Equal(t, "RimWorld.CompProperties_Forbiddable", first.Type.FullName)
	require.NotNil(t, first.Declared)
	assert.Equal(t, "Verse.CompProperties", first.Declared.FullName)
	assert.True(t, first.Overridden())

	allow := bindingOf(t, r, "ThingDef.Steel.comps[0].allowNonPlayer")
	assert.Equal(t, "System.Boolean", allow.Type.FullName)
	assert.Equal(t, "RimWorld.CompProperties_Forbiddable", allow.Field.DeclaringTypeName())
}

func TestInjectUnknownFields(t *testing.T) {
	r := injectText(t, steelDefs, inject.DefaultOptions())

	for _, path := range []string{
		"ThingDef.Steel.unknownThing",
		"ThingDef.Steel.unknownThing.deep",
		"ThingDef.Steel.mystery",
	} {
		el := lookup(t, r, path)
		_, ok := r.Binding(el)
		assert.False(t, ok, "%s should not be bound", path)
	}

	content, ok := lookup(t, r, "ThingDef.Steel.mystery").Content()
	require.True(t, ok)
	assert.Equal(t, "?", content)
}

func TestInjectDictionary(t *testing.T) {
	r := injectText(t, steelDefs, inject.DefaultOptions())

	dict := bindingOf(t, r, "ThingDef.Steel.stuffMultipliers")
	assert.True(t, dict.Type.IsDictionary())

	// no KeyValuePair type in the catalog, so the item itself stays unbound
	_, ok := r.Binding(lookup(t, r, "ThingDef.Steel.stuffMultipliers[0]"))
	assert.False(t, ok)

	key := bindingOf(t, r, "ThingDef.Steel.stuffMultipliers[0].key")
	assert.Equal(t, inject.RoleDictKey, key.Role)
	assert.Equal(t, "System.String", key.Type.FullName)

	value := bindingOf(t, r, "ThingDef.Steel.stuffMultipliers[0].value")
	assert.Equal(t, inject.RoleDictValue, value.Role)
	assert.Equal(t, "System.Int32", value.Type.FullName)

	cold := bindingOf(t, r, "ThingDef.Steel.stuffMultipliers[1]")
	assert.Equal(t, "Cold", cold.Element.Name)
	assert.Equal(t, inject.RoleDictValue, cold.Role)
	assert.Equal(t, "System.Int32", cold.Type.FullName)
}

func TestInjectDictionaryWithoutEnumerable(t *testing.T) {
	text := `<Defs>
  <RecipeDef>
    <defName>Smelt</defName>
    <skillRequirements>
      <Crafting>4</Crafting>
      <li><key>Mining</key><value>2</value></li>
    </skillRequirements>
  </RecipeDef>
</Defs>`
	r := injectText(t, text, inject.DefaultOptions())

	dict := bindingOf(t, r, "RecipeDef.Smelt.skillRequirements")
	assert.Equal(t, catalogtest.SkillLevels, dict.Type.FullName)
	assert.False(t, dict.Type.IsEnumerable())

	crafting := bindingOf(t, r, "RecipeDef.Smelt.skillRequirements[0]")
	assert.Equal(t, "Crafting", crafting.Element.Name)
	assert.Equal(t, inject.RoleDictValue, crafting.Role)
	assert.Equal(t, "System.Single", crafting.Type.FullName)

	key := bindingOf(t, r, "RecipeDef.Smelt.skillRequirements[1].key")
	assert.Equal(t, inject.RoleDictKey, key.Role)
	assert.Equal(t, "System.String", key.Type.FullName)

	value := bindingOf(t, r, "RecipeDef.Smelt.skillRequirements[1].value")
	assert.Equal(t, inject.RoleDictValue, value.Role)
	assert.Equal(t, "System.Single", value.Type.FullName)
}

func TestInjectCharacterData(t *testing.T) {
	text := `<Defs>
  <ThingDef>
    <defName><![CDATA[Steel]]></defName>
    <label>salt &amp; pepper</label>
  </ThingDef>
  <ThingDef Name="Base&amp;Co" Abstract="True"/>
</Defs>`
	r := injectText(t, text, inject.DefaultOptions())
	require.Len(t, r.Defs, 2)

	steel := r.Defs[0]
	assert.Equal(t, "Steel", steel.DefName())
	assert.Equal(t, "ThingDef.Steel", steel.Path().String())
	assert.Same(t, steel, r.FindDef("ThingDef", "Steel"))
	assert.Same(t, steel.Element, lookup(t, r, "ThingDef.Steel"))

	label := bindingOf(t, r, "ThingDef.Steel.label")
	content, ok := label.Element.Content()
	require.True(t, ok)
	assert.Equal(t, "salt & pepper", content)

	assert.Same(t, r.Defs[1], r.FindDef("ThingDef", "Base&Co"))
}

func TestInjectCustomLoader(t *testing.T) {
	r := injectText(t, steelDefs, inject.DefaultOptions())

	steel := bindingOf(t, r, "ThingDef.Steel.butcherProducts[0]")
	assert.Equal(t, catalogtest.CountClassType, steel.Type.FullName)

	li := bindingOf(t, r, "ThingDef.Steel.butcherProducts[1]")
	assert.Equal(t, catalogtest.CountClassType, li.Type.FullName)

	// the type reads its own XML, so its children are not matched to fields
	_, ok := r.Binding(lookup(t, r, "ThingDef.Steel.butcherProducts[1].thingDef"))
	assert.False(t, ok)
}

func TestPathsRoundTrip(t *testing.T) {
	r := injectText(t, steelDefs, inject.DefaultOptions())

	require.NotEmpty(t, r.Bindings())
	for _, b := range r.Bindings() {
		path := b.Path().String()
		el, err := r.Lookup(path)
		require.NoError(t, err, path)
		assert.Same(t, b.Element, el, path)
		assert.Equal(t, path, r.PathOf(el).String())
	}
}

func TestBindingsOrder(t *testing.T) {
	r := injectText(t, steelDefs, inject.DefaultOptions())

	prev := -1
	for _, b := range r.Bindings() {
		assert.Greater(t, b.Element.Range().Start, prev, b.Path().String())
		prev = b.Element.Range().Start
	}
}

func TestLookupErrors(t *testing.T) {
	r := injectText(t, steelDefs, inject.DefaultOptions())

	for _, path := range []string{"ThingDef", "ThingDef.Nope", "ThingDef.Steel.comps[9]", "ThingDef.Steel.nothing", "RecipeDef[0]"} {
		_, err := r.Lookup(path)
		require.Error(t, err, path)
		assert.True(t, errors.Is(err, inject.ErrPathNotFound), path)
	}

	_, err := r.Lookup("ThingDef[")
	require.Error(t, err)
	assert.False(t, errors.Is(err, inject.ErrPathNotFound))
}

func TestBindingAt(t *testing.T) {
	r := injectText(t, steelDefs, inject.DefaultOptions())

	metal := r.BindingAt(strings.Index(steelDefs, "Metal"))
	require.NotNil(t, metal)
	assert.Equal(t, "ThingDef.Steel.tradeTags[0]", metal.Path().String())

	// unbound elements fall back to the nearest bound ancestor
	deep := r.BindingAt(strings.Index(steelDefs, "<deep>") + 2)
	require.NotNil(t, deep)
	assert.Equal(t, "ThingDef.Steel", deep.Path().String())

	assert.Nil(t, r.BindingAt(strings.Index(steelDefs, "trailing comment")))
	assert.Nil(t, r.BindingAt(-1))
}

func TestDefTypePanics(t *testing.T) {
	r := injectText(t, steelDefs, inject.DefaultOptions())

	comps := bindingOf(t, r, "ThingDef.Steel.comps")
	assert.Panics(t, func() { comps.DefType() })

	r = injectText(t, `<Defs><ThingDef Class="Verse.GraphicData"><defName>Odd</defName></ThingDef></Defs>`, inject.DefaultOptions())
	require.Len(t, r.Defs, 1)
	odd := r.Defs[0]
	assert.True(t, odd.IsDef())
	assert.Equal(t, catalogtest.GraphicData, odd.Type.FullName)
	assert.Panics(t, func() { odd.DefType() })
}

func TestInjectWithoutDefRoot(t *testing.T) {
	r := injectText(t, `<Patch><ThingDef><defName>X</defName></ThingDef></Patch>`, inject.DefaultOptions())
	assert.Empty(t, r.Defs)
	assert.Empty(t, r.Bindings())

	r = injectText(t, "", inject.DefaultOptions())
	assert.Empty(t, r.Defs)
	_, err := r.Lookup("ThingDef.X")
	require.Error(t, err)
}

func TestInjectOptions(t *testing.T) {
	r := injectText(t, `<Root><ThingDef><name>X</name><label>x</label></ThingDef></Root>`, inject.Options{
		RootTag:    "Root",
		DefNameTag: "name",
	})

	assert.Equal(t, "Class", r.Options().ClassAttr)
	assert.Equal(t, "Verse.Def", r.Options().DefMarker)

	require.Len(t, r.Defs, 1)
	assert.Equal(t, "X", r.Defs[0].DefName())
	assert.Equal(t, "ThingDef.X", r.Defs[0].Path().String())
	assert.Equal(t, "System.String", bindingOf(t, r, "ThingDef.X.label").Type.FullName)
}

func TestInjectConcurrent(t *testing.T) {
	cat := catalogtest.Load(t)
	injector := inject.New(cat, inject.DefaultOptions())

	var wg sync.WaitGroup
	results := make([]*inject.Result, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			results[i] = injector.Inject(ctx, dom.Parse(ctx, "Steel.xml", steelDefs))
		}()
	}
	wg.Wait()

	for _, r := range results {
		require.Len(t, r.Defs, 3)
		assert.Equal(t, "ThingDef.Steel", r.Defs[1].Path().String())
	}
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "list item", inject.RoleListItem.String())
	assert.Equal(t, "def", inject.RoleDefRoot.String())
	assert.Equal(t, "unknown", inject.Role(42).String())
}
