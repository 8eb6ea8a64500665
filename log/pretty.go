package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers. Styles are bound to
// a renderer for the handler's output so that color is only emitted when
// that output is a terminal.
type palette struct {
	key, str, num, yes, no, dur, tim, null lipgloss.Style

	trace, debug, info, warn, fail lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		dur:   fg("5"),
		tim:   fg("4"),
		null:  fg("8"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		fail:  fg("1").Bold(true),
	}
}

func (p *palette) level(l slog.Level) string {
	s := strings.ToUpper(Level(l).String())

	switch {
	case l >= slog.LevelError:
		return p.fail.Render(s)
	case l >= slog.LevelWarn:
		return p.warn.Render(s)
	case l >= slog.LevelInfo:
		return p.info.Render(s)
	case l >= slog.LevelDebug:
		return p.debug.Render(s)
	default:
		return p.trace.Render(s)
	}
}

func (p *palette) value(v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())

	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return p.dur.Render(v.Duration().String())

	case slog.KindTime:
		return p.tim.Render(v.Time().Format(time.RFC3339))

	case slog.KindAny:
		if v.Any() == nil {
			return p.null.Render("null")
		}

		if level, ok := v.Any().(slog.Level); ok {
			return p.level(level)
		}
	}

	return p.str.Render(v.String())
}

// prettyCommon is the state shared by both pretty handlers. Attributes added
// with WithAttrs are flattened into attrs under their group prefix.
type prettyCommon struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	pal    *palette
	attrs  []slog.Attr
	prefix string
}

func newPrettyCommon(w io.Writer, opts *slog.HandlerOptions) prettyCommon {
	return prettyCommon{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
		pal:  newPalette(w),
	}
}

func (c prettyCommon) enabled(level slog.Level) bool {
	floor := slog.LevelInfo
	if c.opts.Level != nil {
		floor = c.opts.Level.Level()
	}

	return level >= floor
}

func (c prettyCommon) withAttrs(attrs []slog.Attr) prettyCommon {
	next := c
	next.attrs = append(c.attrs[:len(c.attrs):len(c.attrs)], c.flatten(attrs)...)

	return next
}

func (c prettyCommon) withGroup(name string) prettyCommon {
	if name == "" {
		return c
	}

	next := c
	next.prefix = c.prefix + name + "."

	return next
}

// flatten qualifies keys with the current group prefix, expands nested
// groups and drops empty attributes.
func (c prettyCommon) flatten(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	var walk func(prefix string, as []slog.Attr)

	walk = func(prefix string, as []slog.Attr) {
		for _, a := range as {
			a.Value = a.Value.Resolve()
			if a.Equal(slog.Attr{}) {
				continue
			}

			if a.Value.Kind() == slog.KindGroup {
				p := prefix
				if a.Key != "" {
					p += a.Key + "."
				}

				walk(p, a.Value.Group())

				continue
			}

			a.Key = prefix + a.Key
			out = append(out, a)
		}
	}

	walk(c.prefix, attrs)

	return out
}

// header returns the formatted timestamp and call site of r. Either is
// empty when disabled.
func (c prettyCommon) header(r slog.Record) (stamp, source string) {
	if !r.Time.IsZero() {
		stamp = r.Time.Format(time.RFC3339)

		if c.opts.ReplaceAttr != nil {
			a := c.opts.ReplaceAttr(nil, slog.Time(slog.TimeKey, r.Time))
			stamp = ""

			if !a.Equal(slog.Attr{}) {
				stamp = a.Value.String()
			}
		}
	}

	if c.opts.AddSource {
		if src := r.Source(); src != nil {
			source = fmt.Sprintf("%s:%d", src.File, src.Line)
		}
	}

	return stamp, source
}

func (c prettyCommon) record(r slog.Record) []slog.Attr {
	attrs := make([]slog.Attr, 0, r.NumAttrs())

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	return append(c.attrs[:len(c.attrs):len(c.attrs)], c.flatten(attrs)...)
}

func (c prettyCommon) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.w.Write(buf.Bytes())

	return err
}

// prettyTextHandler writes one colorized key=value line per record.
type prettyTextHandler struct {
	prettyCommon
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{newPrettyCommon(w, opts)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	field := func(key, rendered string) {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.pal.key.Render(key))
		buf.WriteByte('=')
		buf.WriteString(rendered)
	}

	stamp, source := h.header(r)
	if stamp != "" {
		field(slog.TimeKey, h.pal.tim.Render(stamp))
	}

	field(slog.LevelKey, h.pal.level(r.Level))

	if source != "" {
		field(slog.SourceKey, h.pal.str.Render(source))
	}

	field(slog.MessageKey, h.pal.str.Render(r.Message))

	for _, a := range h.record(r) {
		field(a.Key, h.pal.value(a.Value))
	}

	return h.write(&buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler writes each record as an indented, colorized object.
type prettyJSONHandler struct {
	prettyCommon
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyCommon(w, opts)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString("{")

	first := true
	field := func(key, rendered string) {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		buf.WriteString("\n  ")
		buf.WriteString(h.pal.key.Render(key))
		buf.WriteString(": ")
		buf.WriteString(rendered)
	}

	stamp, source := h.header(r)
	if stamp != "" {
		field(slog.TimeKey, h.pal.tim.Render(stamp))
	}

	field(slog.LevelKey, h.pal.level(r.Level))

	if source != "" {
		field(slog.SourceKey, h.pal.str.Render(source))
	}

	field(slog.MessageKey, h.pal.str.Render(r.Message))

	for _, a := range h.record(r) {
		field(a.Key, h.pal.value(a.Value))
	}

	buf.WriteString("\n}")

	return h.write(&buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
