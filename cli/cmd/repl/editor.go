package repl

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"

	"go.starlark.net/starlark"

	"github.com/ardnew/stargn/lang"
	"github.com/ardnew/stargn/log"
)

const defaultEditor = "vi"

// editScriptCommand is a [tea.ExecCommand] that edits a script in an
// external editor and runs it, offering to edit again until it succeeds.
type editScriptCommand struct {
	env    Env
	ctx    func() context.Context
	logger log.Logger
	draft  string         // script text, kept when a failed script is abandoned
	value  starlark.Value // result of the script, nil if nothing ran

	stdin          io.Reader
	stdout, stderr io.Writer
}

func (c *editScriptCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editScriptCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editScriptCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run returns nil with a nil value when the script is left empty, and
// [ErrEditDeclined] when a failed script is not edited again.
func (c *editScriptCommand) Run() error {
	ctx := c.ctx()

	path, err := scratchFile()
	if err != nil {
		return err
	}

	defer os.Remove(path)

	for {
		if err := os.WriteFile(path, []byte(c.draft), 0o600); err != nil {
			return err
		}

		if err := c.edit(ctx, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if c.draft = string(data); strings.TrimSpace(c.draft) == "" {
			return nil
		}

		value, err := c.env.Exec(ctx, c.draft)

		c.logger.TraceContext(ctx, "repl edit attempt",
			slog.Int("bytes", len(data)), slog.Bool("ok", err == nil))

		if err == nil {
			c.value = value

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", err)

		if !c.confirm("Re-edit? [Y/n] ") {
			return ErrEditDeclined
		}
	}
}

// edit opens path in $VISUAL, $EDITOR or vi.
func (c *editScriptCommand) edit(ctx context.Context, path string) error {
	argv := strings.Fields(cmp.Or(os.Getenv("VISUAL"), os.Getenv("EDITOR")))
	if len(argv) == 0 {
		argv = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, argv[0], append(slices.Clip(argv[1:]), path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = c.stdin, c.stdout, c.stderr

	return cmd.Run()
}

// confirm asks prompt and reports whether the answer was not a no.
func (c *editScriptCommand) confirm(prompt string) bool {
	fmt.Fprint(c.stdout, prompt)

	in := bufio.NewScanner(c.stdin)
	if !in.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(in.Text())) {
	case "n", "no":
		return false
	}

	return true
}

// scratchFile creates an empty private script file and returns its path.
func scratchFile() (string, error) {
	f, err := os.CreateTemp("", "stargn-repl-*"+lang.ScriptExt)
	if err != nil {
		return "", err
	}

	return f.Name(), f.Close()
}
