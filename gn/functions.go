package gn

import (
	"maps"
	"slices"
)

// Kind describes a target-declaring function and the variables its block
// may assign.
type Kind struct {
	Name string
	Help string
	Vars map[string]ValueType
}

var (
	sourceVars = map[string]ValueType{
		"sources":        ValueList,
		"public":         ValueList,
		"inputs":         ValueList,
		"deps":           ValueList,
		"public_deps":    ValueList,
		"data_deps":      ValueList,
		"data":           ValueList,
		"configs":        ValueList,
		"public_configs": ValueList,
		"defines":        ValueList,
		"include_dirs":   ValueList,
		"cflags":         ValueList,
		"cflags_c":       ValueList,
		"cflags_cc":      ValueList,
		"ldflags":        ValueList,
		"libs":           ValueList,
		"lib_dirs":       ValueList,
		"visibility":     ValueList,
		"testonly":       ValueBool,
		"check_includes": ValueBool,
	}

	linkedVars = merge(sourceVars, map[string]ValueType{
		"output_name":      ValueString,
		"output_dir":       ValueString,
		"output_extension": ValueString,
	})

	groupVars = map[string]ValueType{
		"deps":           ValueList,
		"public_deps":    ValueList,
		"data_deps":      ValueList,
		"data":           ValueList,
		"public_configs": ValueList,
		"visibility":     ValueList,
		"testonly":       ValueBool,
	}

	actionVars = map[string]ValueType{
		"script":      ValueString,
		"args":        ValueList,
		"sources":     ValueList,
		"inputs":      ValueList,
		"outputs":     ValueList,
		"deps":        ValueList,
		"public_deps": ValueList,
		"data_deps":   ValueList,
		"depfile":     ValueString,
		"pool":        ValueString,
		"visibility":  ValueList,
		"testonly":    ValueBool,
	}

	copyVars = map[string]ValueType{
		"sources":    ValueList,
		"outputs":    ValueList,
		"deps":       ValueList,
		"visibility": ValueList,
		"testonly":   ValueBool,
	}
)

// Kinds lists the target functions known to the execution core.
var Kinds = map[string]*Kind{
	"executable":     {Name: "executable", Help: "Declare an executable target.", Vars: linkedVars},
	"shared_library": {Name: "shared_library", Help: "Declare a shared library target.", Vars: linkedVars},
	"static_library": {Name: "static_library", Help: "Declare a static library target.", Vars: merge(linkedVars, map[string]ValueType{"complete_static_lib": ValueBool})},
	"source_set":     {Name: "source_set", Help: "Declare a source set target.", Vars: sourceVars},
	"component":      {Name: "component", Help: "Declare a component target.", Vars: linkedVars},
	"group":          {Name: "group", Help: "Declare a named group of targets.", Vars: groupVars},
	"action":         {Name: "action", Help: "Declare a target that runs a script a single time.", Vars: actionVars},
	"copy":           {Name: "copy", Help: "Declare a target that copies files.", Vars: copyVars},
}

// KindNames returns the sorted names in [Kinds].
func KindNames() []string {
	return slices.Sorted(maps.Keys(Kinds))
}

// DepVars are the variables holding labels of other targets.
var DepVars = []string{"deps", "public_deps", "data_deps"}

func merge(base, extra map[string]ValueType) map[string]ValueType {
	out := make(map[string]ValueType, len(base)+len(extra))

	maps.Copy(out, base)
	maps.Copy(out, extra)

	return out
}
