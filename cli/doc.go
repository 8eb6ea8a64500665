// Package cli contains the command line interface for stargn.
//
// # Usage
//
// Every command evaluates the build scripts (BUILD.stargn) of a source tree:
//
//	stargn [gen] [--order] [script ...]
//	stargn desc [text|json|yaml] [script ...]
//	stargn query 'kind == "executable"' [script ...]
//	stargn translate [script ...]
//	stargn repl [--dir=//app] [--preload=script ...]
//	stargn init [--force]
//
// Scripts default to every BUILD.stargn below the source root (-C). A path
// naming a GN build file, such as app/BUILD.gn, selects the script beside it.
//
// # Workspace Options
//
//   - --root, -C: Source root that "//" paths are relative to
//   - --import-path, -I: Directories searched for imports after the
//     importing script's own (also read from STARGN_IMPORT_PATH)
//   - --quoting: How string values are quoted in GN (verbatim, escaped)
//   - --builtins: Declaration functions available to scripts
//
// # Configuration
//
// Flag defaults are read from the "config" section of config.yaml in the
// user configuration directory. [cmd.Init] writes that file from the current
// flag values. Nested keys join with hyphens:
//
//	config:
//	  quoting: escaped
//	  log:
//	    level: debug
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o stargn .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/stargn/pprof)
package cli
