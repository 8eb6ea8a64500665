// Package lang evaluates Starlark build scripts against a GN-style
// execution core.
//
// A script declares targets by calling declaration functions with keyword
// arguments:
//
//	load("//build/widget.gni", "widget")
//
//	executable(name = "a", testonly = True, sources = ["main.cc"])
//	widget(name = "w1")
//
// Each call is assembled into the statement tree the execution core
// accepts natively, equivalent to:
//
//	executable("a") {
//	  testonly = true
//	  sources = [ "main.cc" ]
//	}
//
// The "name" keyword becomes the positional argument. Other keywords must
// hold a boolean, a string, or a list of strings.
//
// # Loads
//
// Only modules whose identifier ends in the import suffix (".gni" by
// default) may be loaded. Every load is resolved before the first
// statement runs: the module is imported through the execution core and
// each template it defines becomes a declaration function of the same
// name.
//
// # Execution context
//
// The core is reached only through a [Handle], a single-writer token that
// is borrowed for the duration of one core call. An [Evaluation] owns its
// handle and closes it when the script finishes.
//
//	script, err := lang.Parse("//app/BUILD.stargn", src)
//	if err != nil {
//		return err
//	}
//
//	scope := gn.NewScope(gn.NewLoader(os.DirFS(root)), gn.NewBuilder(), script.Name)
//
//	return lang.Evaluate(ctx, lang.NewHandle(scope), script)
package lang
