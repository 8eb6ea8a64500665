// Package cmd provides the stargn subcommands. Each command evaluates the
// Starlark build scripts of a source tree into a target graph and reports
// on it.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the YAML configuration file, and the name of the section within it that
	// holds flag values.
	ConfigIdentifier = "config"
)
