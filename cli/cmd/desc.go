package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stargn/gn"
)

// Desc evaluates build scripts and describes the targets they declare.
type Desc struct {
	Text DescText `cmd:"" default:"withargs" help:"Describe targets as text (default)."`
	JSON DescJSON `cmd:""                    help:"Describe targets as JSON."`
	YAML DescYAML `cmd:""                    help:"Describe targets as YAML."`
}

// selection names the scripts a describing command evaluates.
type selection struct {
	Scripts []string `arg:"" help:"Build scripts to evaluate (default: every BUILD.stargn under the source root)" name:"script" optional:"" type:"path"`
}

// targets evaluates the selected scripts and returns the registered targets
// in definition order.
func (s selection) targets(ctx context.Context) ([]*gn.Target, error) {
	w := workspaceFrom(ctx)

	scripts, err := w.Scripts(ctx, s.Scripts)
	if err != nil {
		return nil, err
	}

	b, err := w.Load(ctx, scripts, nil)
	if err != nil {
		return nil, err
	}

	return b.Builder.Targets(), nil
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}

	return w
}

// defined renders where a target was declared. Declarations assembled from
// Starlark carry no source position, so only the file is shown.
func defined(t *gn.Target) string {
	loc := gn.Location{Line: t.Defined.Line, Column: t.Defined.Column}
	if loc.IsSynthetic() {
		return t.Defined.File
	}

	return t.Defined.String()
}

// DescText describes targets in a human-readable layout.
type DescText struct {
	selection

	out io.Writer
}

// Run executes the desc text command.
func (d *DescText) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	targets, err := d.targets(ctx)
	if err != nil {
		return err
	}

	return writeText(stdout(d.out), targets)
}

func writeText(w io.Writer, targets []*gn.Target) error {
	var b strings.Builder

	for i, t := range targets {
		if i > 0 {
			b.WriteByte('\n')
		}

		fmt.Fprintf(&b, "%s\n  kind: %s\n", t.Label, t.Kind)

		if t.Template != "" {
			fmt.Fprintf(&b, "  template: %s\n", t.Template)
		}

		fmt.Fprintf(&b, "  defined: %s\n", defined(t))

		for _, name := range t.VarOrder {
			fmt.Fprintf(&b, "  %s = %s\n", name, t.Vars[name])
		}
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// DescJSON describes targets as a JSON array.
type DescJSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	selection

	out io.Writer
}

type targetJSON struct {
	Label    string         `json:"label"`
	Kind     string         `json:"kind"`
	Template string         `json:"template,omitempty"`
	Defined  string         `json:"defined"`
	Vars     map[string]any `json:"vars,omitempty"`
}

// Run executes the desc json command.
func (d *DescJSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	targets, err := d.targets(ctx)
	if err != nil {
		return err
	}

	records := make([]targetJSON, len(targets))

	for i, t := range targets {
		records[i] = targetJSON{
			Label:    t.Label.String(),
			Kind:     t.Kind,
			Template: t.Template,
			Defined:  defined(t),
		}

		if len(t.Vars) > 0 {
			records[i].Vars = make(map[string]any, len(t.Vars))
			for name, v := range t.Vars {
				records[i].Vars[name] = v.Native()
			}
		}
	}

	var data []byte
	if d.Indent > 0 {
		data, err = json.MarshalIndent(records, "", strings.Repeat(" ", d.Indent))
	} else {
		data, err = json.Marshal(records)
	}

	if err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	_, err = fmt.Fprintln(stdout(d.out), string(data))

	return err
}

// DescYAML describes targets as a YAML sequence. Variables keep the order
// they were assigned in.
type DescYAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	selection

	out io.Writer
}

// Run executes the desc yaml command.
func (d *DescYAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	targets, err := d.targets(ctx)
	if err != nil {
		return err
	}

	records := make([]yaml.MapSlice, len(targets))

	for i, t := range targets {
		rec := yaml.MapSlice{
			{Key: "label", Value: t.Label.String()},
			{Key: "kind", Value: t.Kind},
		}

		if t.Template != "" {
			rec = append(rec, yaml.MapItem{Key: "template", Value: t.Template})
		}

		rec = append(rec, yaml.MapItem{Key: "defined", Value: defined(t)})

		if len(t.VarOrder) > 0 {
			vars := make(yaml.MapSlice, len(t.VarOrder))
			for j, name := range t.VarOrder {
				vars[j] = yaml.MapItem{Key: name, Value: t.Vars[name].Native()}
			}

			rec = append(rec, yaml.MapItem{Key: "vars", Value: vars})
		}

		records[i] = rec
	}

	var opts []yaml.EncodeOption
	if d.Indent > 0 {
		opts = append(opts, yaml.Indent(d.Indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, records, opts...)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	_, err = fmt.Fprint(stdout(d.out), string(data))

	return err
}
