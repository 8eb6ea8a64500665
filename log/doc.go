// Package log writes leveled, structured records through [log/slog].
//
// A [Logger] is built from a writer and [Option] values:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//	)
//	logger.InfoContext(ctx, "evaluated build script",
//		slog.String("script", "//app/BUILD.stargn"))
//
// Loggers are values. [Logger.Wrap] and [Logger.With] return changed copies,
// and attributes added with With survive a later Wrap:
//
//	scoped := logger.With(slog.String("script", name))
//	verbose := scoped.Wrap(log.WithLevel(log.LevelTrace)) // still has script=
//
// Every level has a context-aware method and a plain one. The plain methods
// use [context.Background].
//
// The package logger returned by [Default] writes to standard error. [Config]
// replaces it with a reconfigured copy; the package functions such as
// [DebugContext] log through it.
//
// [LevelTrace] sits below [LevelDebug] and is meant for per-declaration
// detail. With [WithPretty] enabled (the default) records are colored when
// the output is a terminal and JSON records are indented.
package log
