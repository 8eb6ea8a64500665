package cmd

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stargn/log"
	"github.com/ardnew/stargn/profile"
)

// Init writes the configuration file from the flag values in effect.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

func (i *Init) Run(ctx context.Context) error {
	path, ok := kongContextFrom(ctx).Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config namespace undefined")
	}

	fail := ErrWriteConfig.With(slog.String("file", path))

	if _, err := os.Stat(path); err == nil && !i.Force {
		return fail.With(slog.Bool("exists", true)).Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalContext(ctx, i.buildConfig(ctx),
		yaml.Indent(2),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return ErrYAMLMarshal.With(slog.String("file", path)).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fail.Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file", slog.String("path", path))

	return nil
}

// buildConfig returns the document written by Run: every visible flag with
// a value, in model order, under the [ConfigIdentifier] section. Help and
// profiling flags are left out.
func (i *Init) buildConfig(ctx context.Context) yaml.MapSlice {
	ktx := kongContextFrom(ctx)

	var section yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden ||
			strings.HasPrefix(flag.Name, "help") ||
			strings.HasPrefix(flag.Name, profile.Tag) {
			continue
		}

		if v, ok := configValue(ktx.FlagValue(flag)); ok {
			section = append(section, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return yaml.MapSlice{{Key: ConfigIdentifier, Value: section}}
}

// configValue converts a decoded flag value to its configuration form.
// Empty strings and empty lists have none.
func configValue(v any) (any, bool) {
	switch v := v.(type) {
	case nil:
		return nil, false
	case bool:
		return v, true
	case interface{ String() string }:
		s := v.String()

		return s, s != ""
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), rv.Len() > 0

	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for j := range items {
			items[j] = rv.Index(j).Interface()
		}

		return items, len(items) > 0
	}

	return v, true
}
