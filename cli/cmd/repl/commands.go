package repl

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.starlark.net/starlark"

	"github.com/ardnew/stargn/gn"
)

// command is a control-mode command. The first name is shown in help and
// offered for completion; the rest are aliases.
type command struct {
	names []string
	help  string
	run   func(m model) (model, tea.Cmd)
}

func commands() []command {
	return []command{
		{[]string{"help", "h"}, "Print this help",
			func(m model) (model, tea.Cmd) { return m, tea.Println(m.help()) }},
		{[]string{"targets", "t"}, "List declared targets",
			func(m model) (model, tea.Cmd) {
				return m, tea.Println(listTargets(m.env.Targets()))
			}},
		{[]string{"globals", "g"}, "List names bound by evaluated statements",
			func(m model) (model, tea.Cmd) {
				return m, tea.Println(listGlobals(m.env.Globals()))
			}},
		{[]string{"modules", "m"}, "List loaded modules",
			func(m model) (model, tea.Cmd) {
				return m, tea.Println(listModules(m.env.Modules()))
			}},
		{[]string{"edit", "e"}, "Edit and run a multi-line script in $EDITOR",
			func(m model) (model, tea.Cmd) { return m, m.handleEdit() }},
		{[]string{"clear", "c"}, "Clear the screen",
			func(m model) (model, tea.Cmd) { return m, tea.ClearScreen }},
		{[]string{"quit", "q", "exit"}, "Exit the REPL",
			func(m model) (model, tea.Cmd) {
				m.quitting = true

				return m, tea.Quit
			}},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands() {
		if slices.Contains(c.names, name) {
			return c, true
		}
	}

	return command{}, false
}

func (m model) help() string {
	var b strings.Builder

	b.WriteString("\nCommands (esc toggles command mode):\n\n")

	for _, c := range commands() {
		fmt.Fprintf(&b, "  %-9s%s\n", c.names[0], c.help)
	}

	b.WriteString("\nKeys:\n\n")

	for _, k := range m.keys.bindings() {
		h := k.Help()
		fmt.Fprintf(&b, "  %-12s%s\n", h.Key, h.Desc)
	}

	b.WriteString(`
Statements are Starlark and completions appear as you type. Declaration
calls such as executable(name = "app") add targets, and
load("//build/foo.gni", "foo") imports GN templates.
`)

	return b.String()
}

func listTargets(targets []*gn.Target) string {
	if len(targets) == 0 {
		return hintStyle.Render("  (no targets)")
	}

	lines := make([]string, 0, len(targets))

	for _, t := range targets {
		kind := t.Kind
		if t.Template != "" {
			kind = t.Template + " " + kind
		}

		lines = append(lines, "  "+t.Label.String()+" "+hintStyle.Render(kind))
	}

	return strings.Join(lines, "\n")
}

func listGlobals(globals starlark.StringDict) string {
	if len(globals) == 0 {
		return hintStyle.Render("  (no globals)")
	}

	lines := make([]string, 0, len(globals))

	for _, name := range globals.Keys() {
		preview := hintStyle.Render(formatPreview(globals[name]))
		lines = append(lines, "  "+name+" "+preview)
	}

	return strings.Join(lines, "\n")
}

func listModules(modules []string) string {
	if len(modules) == 0 {
		return hintStyle.Render("  (no modules)")
	}

	return "  " + strings.Join(modules, "\n  ")
}
