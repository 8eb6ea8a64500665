// Package gn is a small GN-style execution core.
//
// It accepts statement trees shaped like GN's own syntax tree, either parsed
// from import files or constructed programmatically, and executes two kinds
// of statement against a [Scope].
//
// Target declarations are validated against the variables the target kind
// consumes and registered with a [Builder]:
//
//	executable("app") {
//	  sources = [ "main.cc" ]
//	  deps = [ ":lib" ]
//	}
//
// Imports load template definitions and public variables from an import
// file through a shared [Loader] and merge them into the importing scope:
//
//	import("//build/widget.gni")
//
// Nodes built with the constructors in this package ([Ident], [Assign],
// [Block], [Call], and the literal helpers) carry [SyntheticLocation], since
// they have no source origin.
//
// After every script has executed, [Builder.Check] verifies that all
// dependencies exist and that the graph is acyclic, and [Builder.Resolve]
// returns the targets in dependency order.
package gn
