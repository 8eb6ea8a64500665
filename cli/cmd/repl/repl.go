package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"go.starlark.net/starlark"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/stargn/log"
)

// Messages delivered when the external editor returns.
type (
	// editDoneMsg carries the value and output of a script that ran.
	editDoneMsg struct {
		value starlark.Value
		out   string
	}
	// editCancelledMsg means the editor content was cleared.
	editCancelledMsg struct{}
	// editDeclinedMsg means a failed script was not re-edited. It is kept as
	// the draft of the next edit.
	editDeclinedMsg struct{ draft string }
	// editErrorMsg reports a failure of the edit process itself.
	editErrorMsg struct{ err error }
)

const (
	evalPrompt   = "➜ "
	ctrlPrompt   = " :"
	defaultWidth = 80
)

// inputMode selects whether a line is evaluated or run as a command.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

func (i inputMode) prompt() string {
	if i == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt)
	}

	return promptStyle.Render(evalPrompt)
}

// echo renders line as it was entered in mode i.
func (i inputMode) echo(line string) string {
	return i.prompt() + inputStyle.Render(line)
}

var (
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	printStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// line is a saved input line and cursor.
type line struct {
	text   string
	cursor int
}

// completion holds the candidates for the word under the cursor.
type completion struct {
	matches    fuzzy.Matches
	start, end int // byte bounds of the word
	selected   int // -1 when nothing is selected
	cycling    bool
	before     line // input before cycling began
}

// recall is the state of command-history navigation, which borrows command
// mode and gives the original line back once it runs off either end.
type recall struct {
	active bool
	mode   inputMode
	saved  line
}

type model struct {
	ctx      func() context.Context
	input    textinput.Model
	keys     keyMap
	env      Env
	out      *Output
	logger   log.Logger
	history  *History
	pos      int // history position, history.Len() when not browsing
	comp     completion
	recall   recall
	parked   [2]line // line left behind in each mode
	mode     inputMode
	draft    string // script kept between edits
	width    int
	quitting bool
}

// Run starts the REPL over env. Text printed by evaluated statements is
// collected in out, which must be the print destination of env's session.
// History persists under cacheDir.
func Run(
	ctx context.Context,
	env Env,
	out *Output,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if env == nil {
		return ErrNoSession
	}

	var path string
	if cacheDir != "" {
		path = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", path), slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", path), slog.Int("entries", history.Len()))

	_, err = tea.NewProgram(
		newModel(ctx, env, out, history, logger),
		tea.WithContext(ctx),
	).Run()

	return err
}

func newModel(
	ctx context.Context,
	env Env,
	out *Output,
	history *History,
	logger log.Logger,
) model {
	in := textinput.New()
	in.Prompt = modeEval.prompt()
	in.CharLimit = 1024
	in.Width = defaultWidth
	in.Focus()

	return model{
		ctx:     func() context.Context { return ctx },
		input:   in,
		keys:    defaultKeyMap(),
		env:     env,
		out:     out,
		logger:  logger,
		history: history,
		pos:     history.Len(),
		comp:    completion{selected: -1},
		width:   defaultWidth,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		m.draft = ""
		m.logger.TraceContext(m.ctx(), "repl edit complete",
			slog.Int("targets", len(m.env.Targets())))

		return m, tea.Sequence(append(
			m.resultLines(msg.out, msg.value),
			tea.Println(resultStyle.Render("✔ script executed")),
		)...)

	case editCancelledMsg:
		m.draft = ""

		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))

	case editDeclinedMsg:
		m.draft = msg.draft

		return m, tea.Println(hintStyle.Render("🗴 script kept for the next edit"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("🗴 error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.hint() + "\n"
}

// hint renders the line below the input.
func (m model) hint() string {
	text := m.input.Value()
	call := detectFunctionCall(text, m.input.Position())

	switch {
	case m.browsing():
		pos := lipgloss.NewStyle().Bold(true).Render(fmt.Sprint(m.pos + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))

	case strings.TrimSpace(text) == "" && m.mode == modeCtrl:
		return hintStyle.Render(
			"Type: " + strings.Join(commandNames(), ", ") + " (press Esc to return)")

	case strings.TrimSpace(text) == "":
		return hintStyle.Render("Type a statement or press Esc for commands")

	case len(m.comp.matches) > 0:
		return renderCandidateBar(
			m.env, m.comp.matches, m.comp.selected, m.comp.cycling, m.width)

	case call.inCall && m.mode == modeEval:
		signature, params := getSignature(m.env, call.name)

		return renderSignatureHint(signature, params, call)
	}

	return ""
}

func (m model) browsing() bool { return m.pos < m.history.Len() }

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx(), "repl key", slog.String("key", msg.String()))

	empty := m.input.Value() == ""

	switch {
	case key.Matches(msg, m.keys.Interrupt) && !empty:
		m.input.SetValue("")
		m.comp.cycling = false
		m.recall.active = false
		m.pos = m.history.Len()

		return m.refresh(false), nil

	case key.Matches(msg, m.keys.Interrupt, m.keys.EOF):
		if !empty {
			return m, nil
		}

		m.quitting = true

		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		m.recall.active = false

		if m.comp.cycling && len(m.comp.matches) > 0 {
			m.comp.cycling = false

			return m.refresh(true), nil
		}

		return m.executeInput()

	case key.Matches(msg, m.keys.Next):
		return m.cycle(1), nil

	case key.Matches(msg, m.keys.Prev):
		return m.cycle(-1), nil

	case key.Matches(msg, m.keys.Older):
		return m.historyStep(-1), nil

	case key.Matches(msg, m.keys.Newer):
		return m.historyStep(1), nil

	case key.Matches(msg, m.keys.OlderInMode):
		return m.historyInMode(-1), nil

	case key.Matches(msg, m.keys.NewerInMode):
		return m.historyInMode(1), nil

	case key.Matches(msg, m.keys.OlderCommand):
		return m.historyCtrl(-1), nil

	case key.Matches(msg, m.keys.NewerCommand):
		return m.historyCtrl(1), nil

	case key.Matches(msg, m.keys.Toggle):
		if m.comp.cycling {
			m.comp.cycling = false

			return m.restore(m.comp.before).refresh(false), nil
		}

		m.recall.active = false

		return m.toggleMode(), nil
	}

	// Typed text accepts the selected candidate and may complete a word that
	// is already whole. Other edits never complete.
	typed := msg.Type == tea.KeyRunes

	if !typed {
		m.recall.active = false
	}

	var cmd tea.Cmd

	m.comp.cycling = false
	m.pos = m.history.Len()
	m.input, cmd = m.input.Update(msg)

	return m.refresh(typed), cmd
}

func (m model) save() line {
	return line{text: m.input.Value(), cursor: m.input.Position()}
}

func (m model) restore(l line) model {
	m.input.SetValue(l.text)
	m.input.SetCursor(l.cursor)

	return m
}

// replaceWord substitutes text for the word under completion.
func (m model) replaceWord(text string) model {
	in := m.input.Value()

	m.input.SetValue(in[:m.comp.start] + text + in[m.comp.end:])
	m.comp.end = m.comp.start + len(text)
	m.input.SetCursor(m.comp.end)

	return m
}

// accept completes the word with text and discards the candidates.
func (m model) accept(text string) model {
	m = m.replaceWord(text)
	m.comp.matches = nil
	m.comp.cycling = false
	m.comp.selected = -1

	return m
}

// refresh recomputes the candidates for the input. With complete set, a word
// that already equals its only candidate is accepted.
func (m model) refresh(complete bool) model {
	m.comp.matches, _, m.comp.start, m.comp.end = m.computeMatches()

	if !m.comp.cycling {
		m.comp.selected = -1
	}

	if complete && len(m.comp.matches) == 1 {
		if only := m.comp.matches[0].Str; m.input.Value()[m.comp.start:m.comp.end] == only {
			m = m.accept(only)
		}
	}

	return m
}

// cycle moves the selection by step, wrapping at either end. A lone candidate
// is accepted at once.
func (m model) cycle(step int) model {
	n := len(m.comp.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		return m.accept(m.comp.matches[0].Str)

	case m.comp.cycling:
		m.comp.selected = (m.comp.selected + step + n) % n

	case step < 0:
		m.comp.cycling, m.comp.before, m.comp.selected = true, m.save(), n-1

	default:
		m.comp.cycling, m.comp.before, m.comp.selected = true, m.save(), 0
	}

	return m.replaceWord(m.comp.matches[m.comp.selected].Str)
}

func (m model) executeInput() (model, tea.Cmd) {
	in := strings.TrimSpace(m.input.Value())
	if in == "" {
		return m, nil
	}

	m.parked = [2]line{}
	m.input.SetValue("")
	m = m.refresh(false)

	if err := m.history.Add(in, m.mode); err != nil {
		m.logger.DebugContext(m.ctx(), "repl history write failed", slog.Any("error", err))
	}

	m.pos = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(in)
	}

	echo := tea.Println(modeEval.echo(in))

	value, err := m.env.Exec(m.ctx(), in)
	cmds := append([]tea.Cmd{echo}, m.resultLines(m.out.Drain(), value)...)

	if err != nil {
		m.logger.TraceContext(m.ctx(), "repl eval failed",
			slog.String("input", in), slog.Any("error", err))

		cmds = append(cmds, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(cmds...)
}

// resultLines renders printed text followed by value. None is not shown.
func (m model) resultLines(printed string, value starlark.Value) []tea.Cmd {
	var cmds []tea.Cmd

	if printed != "" {
		cmds = append(cmds, tea.Println(printStyle.Render(printed)))
	}

	if value != nil && value != starlark.None {
		cmds = append(cmds, tea.Println(resultStyle.Render(value.String())))
	}

	return cmds
}

func (m model) executeCommand(in string) (model, tea.Cmd) {
	args := strings.Fields(in)
	if len(args) == 0 {
		return m, nil
	}

	m.logger.TraceContext(m.ctx(), "repl command", slog.Any("args", args))

	c, ok := lookupCommand(args[0])
	if !ok {
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + args[0] + " (try 'help')"))
	}

	m, cmd := c.run(m)

	return m, tea.Sequence(tea.Println(modeCtrl.echo(in)), cmd)
}

func (m model) handleEdit() tea.Cmd {
	cmd := &editScriptCommand{
		env:    m.env,
		ctx:    m.ctx,
		logger: m.logger,
		draft:  m.draft,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			m.out.Drain()

			return editDeclinedMsg{draft: cmd.draft}

		case err != nil:
			return editErrorMsg{err: err}

		case cmd.value == nil:
			return editCancelledMsg{}
		}

		return editDoneMsg{value: cmd.value, out: m.out.Drain()}
	})
}

// toggleMode flips between eval and command mode.
func (m model) toggleMode() model {
	return m.switchToMode(modeCtrl - m.mode)
}

// switchToMode parks the current line and resumes the one left in mode.
func (m model) switchToMode(mode inputMode) model {
	m.parked[m.mode] = m.save()
	m.mode = mode
	m.input.Prompt = mode.prompt()

	return m.restore(m.parked[mode]).refresh(false)
}

// show loads history entry i, switching to its mode.
func (m model) show(i int, e HistoryEntry) model {
	if m.mode != e.Mode {
		m = m.switchToMode(e.Mode)
	}

	m.pos = i

	return m.restore(line{e.Line, len(e.Line)}).refresh(false)
}

// seek walks history from the current position in direction step and shows
// the first entry accepted by keep. Walking forward past the newest entry
// leaves an empty line.
func (m model) seek(step int, keep func(HistoryEntry) bool) (model, bool) {
	for i := m.pos + step; i >= 0 && i < m.history.Len(); i += step {
		if e, err := m.history.Entry(i); err == nil && keep(e) {
			return m.show(i, e), true
		}
	}

	if step > 0 && m.browsing() {
		m.pos = m.history.Len()

		return m.restore(line{}).refresh(false), true
	}

	return m, false
}

// historyStep moves through entries of both modes.
func (m model) historyStep(step int) model {
	m, _ = m.seek(step, func(HistoryEntry) bool { return true })

	return m
}

// historyInMode moves through entries of the current mode.
func (m model) historyInMode(step int) model {
	mode := m.mode
	m, _ = m.seek(step, func(e HistoryEntry) bool { return e.Mode == mode })

	return m
}

// historyCtrl moves through command entries. The line and mode in use when
// it began come back once navigation runs off either end.
func (m model) historyCtrl(step int) model {
	if !m.recall.active {
		m.recall = recall{active: true, mode: m.mode, saved: m.save()}
		m = m.switchToMode(modeCtrl)
	}

	for i := m.pos + step; i >= 0 && i < m.history.Len(); i += step {
		if e, err := m.history.Entry(i); err == nil && e.Mode == modeCtrl {
			return m.show(i, e)
		}
	}

	m.recall.active = false
	m.input.SetValue("")
	m = m.switchToMode(m.recall.mode)
	m.pos = m.history.Len()

	return m.restore(m.recall.saved).refresh(false)
}
