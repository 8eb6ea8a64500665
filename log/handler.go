package log

import (
	"log/slog"
	"strings"
	"time"
)

// handler returns the slog handler that writes records as s describes.
func (s settings) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   s.caller,
		Level:       slog.Level(s.level),
		ReplaceAttr: s.replaceAttr,
	}

	var h slog.Handler

	switch {
	case s.pretty && s.format == FormatJSON:
		h = newPrettyJSONHandler(s.output, opts)
	case s.pretty && s.format == FormatText:
		h = newPrettyTextHandler(s.output, opts)
	case s.format == FormatJSON:
		h = slog.NewJSONHandler(s.output, opts)
	case s.format == FormatText:
		h = slog.NewTextHandler(s.output, opts)
	default:
		return slog.DiscardHandler
	}

	if len(s.attrs) > 0 {
		h = h.WithAttrs(s.attrs)
	}

	return h
}

// replaceAttr renders the built-in time and level attributes. The time is
// dropped when no layout is set.
func (s settings) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		t, ok := a.Value.Any().(time.Time)
		if !ok {
			return a
		}

		if s.layout == "" {
			return slog.Attr{}
		}

		a.Value = slog.StringValue(t.Format(s.layout))

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
		}
	}

	return a
}
