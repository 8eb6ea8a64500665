package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// DefaultTimeLayout is the timestamp layout of a new [Logger].
const DefaultTimeLayout = time.RFC3339

// settings is the immutable configuration of a [Logger]. Options operate on
// a copy, so a Logger never observes changes made for another.
type settings struct {
	output io.Writer
	layout string // empty disables timestamps
	attrs  []slog.Attr
	level  Level
	format Format
	caller bool
	pretty bool
}

// Option changes one setting of a [Logger].
type Option func(*settings)

func makeSettings(w io.Writer, opts ...Option) settings {
	var s settings

	WithDefaults(w)(&s)

	return s.with(opts...)
}

func (s settings) with(opts ...Option) settings {
	s.attrs = s.attrs[:len(s.attrs):len(s.attrs)]

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// WithDefaults resets every setting to its default and writes to w.
func WithDefaults(w io.Writer) Option {
	return func(s *settings) {
		*s = settings{
			layout: DefaultTimeLayout,
			level:  DefaultLevel,
			format: DefaultFormat,
			pretty: true,
		}

		WithOutput(w)(s)
	}
}

// WithOutput sets the destination of records. A nil writer discards them.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w == nil {
			w = io.Discard
		}

		s.output = w
	}
}

// WithLevel sets the minimum level of records written.
func WithLevel(level Level) Option {
	return func(s *settings) { s.level = level }
}

// WithFormat sets the record encoding.
func WithFormat(format Format) Option {
	return func(s *settings) { s.format = format }
}

// WithCaller includes the source position of the log call in each record.
func WithCaller(enable bool) Option {
	return func(s *settings) { s.caller = enable }
}

// WithPretty renders records with color when the output is a terminal. JSON
// records are also indented.
func WithPretty(enable bool) Option {
	return func(s *settings) { s.pretty = enable }
}

// WithTimeLayout sets the timestamp layout. The name of a layout constant in
// package [time] is accepted in any case ("rfc3339nano", "Kitchen"). Any
// other string is used as a layout verbatim. An empty layout or "none"
// omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(s *settings) { s.layout = timeLayout(layout) }
}

var namedLayouts = map[string]string{
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"rfc1123":     time.RFC1123,
	"rfc1123z":    time.RFC1123Z,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,
	"none":        "",
}

func timeLayout(layout string) string {
	key := strings.ToLower(strings.TrimSpace(layout))
	if key == "" {
		return ""
	}

	if named, ok := namedLayouts[key]; ok {
		return named
	}

	return layout
}
