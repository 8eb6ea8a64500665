package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/stargn/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag values from
// the named section of a YAML document.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "config"), "/path/to/config.yaml")
//
// The section is converted as follows:
//   - Keys name flags; underscores may be used in place of hyphens
//   - Nested mappings join their keys with hyphens, so that
//     log: {level: debug} sets --log-level
//   - Numbers are passed to Kong as strings
//   - Sequences set slice flags
//
// Example config file:
//
//	config:
//	  root: ~/src/project
//	  import-path:
//	    - //build/config
//	  log:
//	    level: debug
//	    pretty: false
//
// A document that cannot be parsed, or has no such section, is logged and
// treated as empty. Command-line flags override config file values.
func resolve(ctx context.Context, section string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		dec := yaml.NewDecoder(r)
		if err := dec.DecodeContext(ctx, &doc); err != nil && err != io.EOF {
			log.WarnContext(ctx, "ignoring malformed configuration",
				slog.String("section", section),
				slog.Any("error", err),
			)

			return config{}, nil
		}

		values, ok := doc[section].(map[string]any)
		if !ok {
			return config{}, nil
		}

		cfg := config{}
		cfg.flatten("", values)

		return cfg, nil
	}
}

// config implements [kong.Resolver] over a flattened YAML section.
type config map[string]any

// flatten stores values under their hyphen-joined key paths.
func (c config) flatten(prefix string, values map[string]any) {
	for key, value := range values {
		key = prefix + strings.ReplaceAll(key, "_", "-")

		switch v := value.(type) {
		case map[string]any:
			c.flatten(key+"-", v)

		case []any:
			items := make([]any, len(v))
			for i, item := range v {
				items[i] = scalar(item)
			}

			c[key] = items

		default:
			c[key] = scalar(v)
		}
	}
}

// scalar converts numbers to the string form Kong parses.
func scalar(v any) any {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}

	return v
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}
