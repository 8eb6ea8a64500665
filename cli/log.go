package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/stargn/log"
)

// logLevel and logFormat reconfigure the default logger while kong decodes
// them, so that parse errors are already reported in the requested style.
type (
	logLevel  string
	logFormat string
)

func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(text))))

	return nil
}

func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(text))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"json"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp format."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

func (f *logConfig) options() []log.Option {
	return []log.Option{
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	}
}

// start applies the parsed settings to the default logger.
func (f *logConfig) start(ctx context.Context) {
	log.Config(f.options()...)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan picks the logging flags out of args ahead of kong, wherever they
// appear, and applies them. Unrecognized or malformed flags are left for
// kong to report.
func (f *logConfig) scan(args []string) {
	var opts []log.Option

	for i := 0; i < len(args) && args[i] != "--"; i++ {
		name, value, negated, assigned := splitLogFlag(args[i])

		switch name {
		case "pretty", "caller":
			on := true

			if assigned {
				v, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				on = v
			}

			if name == "pretty" {
				f.Pretty = on != negated
				opts = append(opts, log.WithPretty(f.Pretty))
			} else {
				f.Caller = on != negated
				opts = append(opts, log.WithCaller(f.Caller))
			}

		case "level", "format", "time-layout":
			if negated {
				continue
			}

			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				value = args[i]
			}

			switch name {
			case "level":
				f.Level = logLevel(value)
				opts = append(opts, log.WithLevel(log.ParseLevel(value)))
			case "format":
				f.Format = logFormat(value)
				opts = append(opts, log.WithFormat(log.ParseFormat(value)))
			default:
				f.TimeLayout = value
				opts = append(opts, log.WithTimeLayout(value))
			}
		}
	}

	log.Config(opts...)
}

// splitLogFlag splits "--[no-]log-name[=value]". The name is empty for any
// other argument.
func splitLogFlag(arg string) (name, value string, negated, assigned bool) {
	rest, ok := strings.CutPrefix(arg, "--log-")
	if !ok {
		if rest, ok = strings.CutPrefix(arg, "--no-log-"); !ok {
			return "", "", false, false
		}

		negated = true
	}

	name, value, assigned = strings.Cut(rest, "=")

	return name, value, negated, assigned
}
