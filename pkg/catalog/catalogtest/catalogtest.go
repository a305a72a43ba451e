// Package catalogtest provides a small catalog export shaped like a real game
// export, shared by tests of the packages consuming the catalog.
package catalogtest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/walteh/rwxml/pkg/catalog"
)

const (
	ListOfComps    = "System.Collections.Generic.List`1[[Verse.CompProperties]]"
	ListOfStrings  = "System.Collections.Generic.List`1[[System.String]]"
	ListOfCounts   = "System.Collections.Generic.List`1[[Verse.ThingDefCountClass]]"
	DictStringInt  = "System.Collections.Generic.Dictionary`2[[System.String],[System.Int32]]"
	SkillLevels    = "Verse.SkillLevels`2[[System.String],[System.Single]]"
	EnumOfComps    = "System.Collections.Generic.IEnumerable`1[[Verse.CompProperties]]"
	EnumOfStrings  = "System.Collections.Generic.IEnumerable`1[[System.String]]"
	EnumOfCounts   = "System.Collections.Generic.IEnumerable`1[[Verse.ThingDefCountClass]]"
	EnumOfChars    = "System.Collections.Generic.IEnumerable`1[[System.Char]]"
	WrapperOfList  = "Verse.Wrapper`1[[System.Collections.Generic.List`1[[System.String]]]]"
	BoxOfInt       = "Verse.Box`1[[System.Int32]]"
	MissingType    = "Missing.Type"
	OtherThingDef  = "Other.ThingDef"
	DefMarker      = "Verse.Def"
	ObjectType     = "System.Object"
	TechLevelEnum  = "RimWorld.TechLevel"
	GraphicData    = "Verse.GraphicData"
	CountClassType = "Verse.ThingDefCountClass"
	GraphicArray   = "Verse.GraphicData[]"
)

func class(fullName, base string) catalog.Record {
	ns, name := split(fullName)
	return catalog.Record{
		FullName:      fullName,
		NamespaceName: ns,
		ClassName:     name,
		BaseClass:     base,
		Fields:        map[string]catalog.FieldRecord{},
		Interfaces:    map[string]string{},
	}
}

func split(fullName string) (string, string) {
	open := catalog.OpenGenericName(fullName)
	for i := len(open) - 1; i >= 0; i-- {
		if open[i] == '.' {
			return open[:i], fullName[i+1:]
		}
	}
	return "", fullName
}

func field(declaring, fieldType string) catalog.FieldRecord {
	return catalog.FieldRecord{FieldType: fieldType, DeclaringType: declaring, IsPublic: true}
}

func generic(fullName string, args []string, ifaces ...string) catalog.Record {
	r := class(fullName, ObjectType)
	r.IsGeneric = true
	r.GenericArguments = args
	for _, i := range ifaces {
		r.Interfaces[i] = i
	}
	return r
}

// Records returns a fresh copy of the fixture export.
func Records() []catalog.Record {
	object := class(ObjectType, "")

	str := class("System.String", ObjectType)
	str.Interfaces["System.Collections.IEnumerable"] = "System.Collections.IEnumerable"
	str.Interfaces[EnumOfChars] = EnumOfChars

	def := class(DefMarker, ObjectType)
	def.Fields["defName"] = field(DefMarker, "System.String")
	def.Fields["label"] = field(DefMarker, "System.String")
	def.Fields["description"] = field(DefMarker, "System.String")

	buildable := class("Verse.BuildableDef", DefMarker)
	buildable.Fields["label"] = field("Verse.BuildableDef", "System.String")
	buildable.Fields["costStuffCount"] = field("Verse.BuildableDef", "System.Int32")
	alias := buildable.Fields["costStuffCount"]
	alias.Attributes = map[string]catalog.AttributeRecord{
		catalog.LoadAliasAttribute: {TypeName: "Verse.LoadAliasAttribute", Args: []string{"stuffCost"}},
	}
	buildable.Fields["costStuffCount"] = alias

	thing := class("Verse.ThingDef", "Verse.BuildableDef")
	thing.Fields["comps"] = field("Verse.ThingDef", ListOfComps)
	thing.Fields["tradeTags"] = field("Verse.ThingDef", ListOfStrings)
	thing.Fields["butcherProducts"] = field("Verse.ThingDef", ListOfCounts)
	thing.Fields["stackLimit"] = field("Verse.ThingDef", "System.Int32")
	thing.Fields["techLevel"] = field("Verse.ThingDef", TechLevelEnum)
	thing.Fields["graphicData"] = field("Verse.ThingDef", GraphicData)
	thing.Fields["stuffMultipliers"] = field("Verse.ThingDef", DictStringInt)
	thing.Fields["graphicVariants"] = field("Verse.ThingDef", GraphicArray)
	thing.Fields["mystery"] = field("Verse.ThingDef", MissingType)
	thing.Interfaces["Verse.IExposable"] = "Verse.IExposable"

	graphic := class(GraphicData, ObjectType)
	graphic.Fields["texPath"] = field(GraphicData, "System.String")

	comp := class("Verse.CompProperties", ObjectType)
	comp.Fields["compClass"] = field("Verse.CompProperties", "System.String")

	forbiddable := class("RimWorld.CompProperties_Forbiddable", "Verse.CompProperties")
	forbiddable.Fields["allowNonPlayer"] = field("RimWorld.CompProperties_Forbiddable", "System.Boolean")

	tech := class(TechLevelEnum, "System.Enum")
	tech.IsEnum = true
	tech.Enums = []string{"Undefined", "Animal", "Neolithic", "Medieval", "Industrial", "Spacer", "Ultra", "Archotech"}

	count := class(CountClassType, ObjectType)
	count.Methods = []string{"LoadDataFromXmlCustom", "ToString"}
	count.Fields["thingDef"] = field(CountClassType, "Verse.ThingDef")
	count.Fields["count"] = field(CountClassType, "System.Int32")

	recipe := class("RimWorld.RecipeDef", DefMarker)
	recipe.Fields["workAmount"] = field("RimWorld.RecipeDef", "System.Single")
	recipe.Fields["skillRequirements"] = field("RimWorld.RecipeDef", SkillLevels)

	other := class(OtherThingDef, ObjectType)

	dict := generic(DictStringInt, []string{"System.String", "System.Int32"},
		"System.Collections.IDictionary", "System.Collections.IEnumerable")

	array := class(GraphicArray, "System.Array")
	array.IsArray = true
	array.Interfaces["System.Collections.IList"] = "System.Collections.IList"
	array.Interfaces["System.Collections.IEnumerable"] = "System.Collections.IEnumerable"

	return []catalog.Record{
		object,
		str,
		class("System.Int32", ObjectType),
		class("System.Single", ObjectType),
		class("System.Boolean", ObjectType),
		class("System.Char", ObjectType),
		class("System.Enum", ObjectType),
		class("System.Array", ObjectType),
		class("System.Collections.IEnumerable", ""),
		class("System.Collections.IList", ""),
		class("System.Collections.IDictionary", ""),
		generic(EnumOfComps, []string{"Verse.CompProperties"}),
		generic(EnumOfStrings, []string{"System.String"}),
		generic(EnumOfCounts, []string{CountClassType}),
		generic(EnumOfChars, []string{"System.Char"}),
		generic(ListOfComps, []string{"Verse.CompProperties"},
			"System.Collections.IList", "System.Collections.IEnumerable", EnumOfComps),
		generic(ListOfStrings, []string{"System.String"},
			"System.Collections.IList", "System.Collections.IEnumerable", EnumOfStrings),
		generic(ListOfCounts, []string{CountClassType},
			"System.Collections.IList", "System.Collections.IEnumerable", EnumOfCounts),
		dict,
		generic(SkillLevels, []string{"System.String", "System.Single"}, "System.Collections.IDictionary"),
		generic(WrapperOfList, []string{ListOfStrings}),
		generic(BoxOfInt, []string{"System.Int32"}),
		def,
		buildable,
		thing,
		graphic,
		array,
		comp,
		forbiddable,
		tech,
		count,
		recipe,
		other,
	}
}

// Load loads Records and fails the test on error.
func Load(t testing.TB) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(context.Background(), Records())
	require.NoError(t, err)
	return cat
}

// WriteFile stores Records as a JSON export at path.
func WriteFile(t testing.TB, fs afero.Fs, path string) {
	t.Helper()
	data, err := json.Marshal(Records())
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}
