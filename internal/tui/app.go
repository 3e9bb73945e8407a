package tui

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/jaskcalc/internal/calc"
	"github.com/jask/jaskcalc/internal/config"
	"github.com/jask/jaskcalc/internal/database/repository"
	"github.com/jask/jaskcalc/internal/service"
)

const (
	tapeMinWidth = 24
	tapeMaxWidth = 44
	maxMatches   = 5
)

// App is the terminal front end: it translates keys and clicks into engine
// inputs and is the engine's display sink.
type App struct {
	ctx      context.Context
	cfg      config.Config
	cfgPath  string
	engine   *calc.Engine
	tape     *service.TapeService
	keys     *KeyRegistry
	commands *CommandRegistry

	snapshot calc.Snapshot
	queued   []tea.Cmd
	pressed  string

	tapeEntries []repository.TapeEntry // newest first
	tapeSeq     int64                  // last sequence number handed out
	tapeCleared int64                  // entries up to this sequence number were cleared
	showTape    bool

	commandOpen   bool
	commandLine   textinput.Model
	commandCursor int

	status    string
	statusErr bool
	width     int
}

// Services are optional collaborators. A nil Tape disables the session tape.
type Services struct {
	Tape *service.TapeService
}

func New(ctx context.Context, cfg config.Config, cfgPath string, f calc.Formatter, keys *KeyRegistry, services Services) *App {
	if keys == nil {
		keys = NewKeyRegistry()
	}
	a := &App{
		ctx:      ctx,
		cfg:      cfg,
		cfgPath:  cfgPath,
		tape:     services.Tape,
		keys:     keys,
		commands: NewCommandRegistry(),
		showTape: cfg.UI.ShowTape,
	}
	a.commandLine = newCommandLine()
	a.engine = calc.New(f, calc.WithComputeHook(a.recordComputation))
	a.engine.Refresh(a)
	return a
}

// Display implements calc.DisplaySink.
func (a *App) Display(current, previous string) {
	a.snapshot = calc.Snapshot{Current: current, Previous: previous}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("jaskcalc"), a.loadTapeCmd())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
	case tea.KeyMsg:
		if a.commandOpen {
			return a.updateCommand(m)
		}
		return a.handleKey(m)
	case tea.MouseMsg:
		return a.handleMouse(m)
	case tapeMsg:
		a.mergeTape(m.entries)
	case tapeClearedMsg:
		if m.through > a.tapeCleared {
			a.tapeCleared = m.through
		}
		a.mergeTape(nil)
		a.setStatus("tape cleared")
	case statusMsg:
		a.setStatus(string(m))
	case errMsg:
		log.Printf("jaskcalc: %v", m.error)
		a.setError(m.error)
	}
	return a, nil
}

// apply runs one input through the engine, refreshes the display and returns
// any tape writes the input caused.
func (a *App) apply(in calc.Input) tea.Cmd {
	a.engine.Apply(in)
	a.engine.Refresh(a)
	cmds := a.queued
	a.queued = nil
	return tea.Batch(cmds...)
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyName := m.String()
	b := a.keys.Lookup(keyName, scopeCalculator)
	if b == nil {
		return a, nil
	}
	a.clearStatus()
	switch b.Action {
	case actionQuit:
		return a, tea.Quit
	case actionDigit:
		runes := []rune(keyName)
		if len(runes) != 1 {
			return a, nil
		}
		a.pressed = keyName
		return a, a.apply(calc.Digit(runes[0]))
	case actionOperator:
		op, ok := calc.ParseOperator(keyName)
		if !ok {
			return a, nil
		}
		a.pressed = op.String()
		return a, a.apply(calc.Operation(op))
	case actionCompute:
		a.pressed = "="
		return a, a.apply(calc.ComputeInput())
	case actionDelete:
		a.pressed = "DEL"
		return a, a.apply(calc.DeleteInput())
	case actionClear:
		a.pressed = "AC"
		return a, a.apply(calc.ClearInput())
	case actionToggleTape:
		a.showTape = !a.showTape
	case actionCommandMode:
		a.openCommand()
	}
	return a, nil
}

func (a *App) handleMouse(m tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.Action != tea.MouseActionPress || m.Button != tea.MouseButtonLeft {
		return a, nil
	}
	b, ok := keypadHit(m.X, m.Y-a.keypadTop())
	if !ok {
		return a, nil
	}
	a.clearStatus()
	a.pressed = b.label
	return a, a.apply(b.input)
}

func (a *App) recordComputation(c calc.Computation) {
	if a.tape == nil {
		return
	}
	a.tapeSeq++
	a.queued = append(a.queued, a.recordTapeCmd(a.tapeSeq, c))
}

func (a *App) recordTapeCmd(seq int64, c calc.Computation) tea.Cmd {
	ctx, tape := a.ctx, a.tape
	return func() tea.Msg {
		e, err := tape.Record(ctx, seq, c)
		if err != nil {
			return errMsg{err}
		}
		return tapeMsg{entries: []repository.TapeEntry{e}}
	}
}

func (a *App) loadTapeCmd() tea.Cmd {
	if a.tape == nil {
		return nil
	}
	ctx, tape, limit := a.ctx, a.tape, a.cfg.Tape.Limit
	return func() tea.Msg {
		entries, err := tape.Recent(ctx, limit)
		if err != nil {
			return errMsg{err}
		}
		return tapeMsg{entries: entries}
	}
}

func (a *App) clearTapeCmd() tea.Cmd {
	ctx, tape, seq := a.ctx, a.tape, a.tapeSeq
	return func() tea.Msg {
		if err := tape.Clear(ctx); err != nil {
			return errMsg{err}
		}
		return tapeClearedMsg{through: seq}
	}
}

// mergeTape folds entries into the on-screen tape. Tape commands run
// concurrently, so entries may arrive in any order.
func (a *App) mergeTape(entries []repository.TapeEntry) {
	bySeq := make(map[int64]repository.TapeEntry, len(a.tapeEntries)+len(entries))
	for _, e := range append(a.tapeEntries, entries...) {
		if e.Seq > a.tapeCleared {
			bySeq[e.Seq] = e
		}
	}
	merged := make([]repository.TapeEntry, 0, len(bySeq))
	for _, e := range bySeq {
		merged = append(merged, e)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Seq > merged[j].Seq })
	if limit := a.cfg.Tape.Limit; limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	a.tapeEntries = merged
}

func (a *App) setLocale(raw string) (tea.Cmd, error) {
	tag, err := calc.ParseLocale(raw)
	if err != nil {
		return nil, err
	}
	a.engine.SetFormatter(calc.NewFormatter(tag))
	a.engine.Refresh(a)
	a.cfg.UI.Locale = tag.String()
	a.setStatus("locale " + tag.String())

	cfg, path := a.cfg, a.cfgPath
	return func() tea.Msg {
		if err := config.Save(path, cfg); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("locale %s saved", cfg.UI.Locale))
	}, nil
}

// command mode

func newCommandLine() textinput.Model {
	inp := textinput.New()
	inp.Prompt = ":"
	inp.Placeholder = "command"
	inp.CharLimit = 64
	inp.Cursor.SetMode(cursor.CursorStatic)
	return inp
}

func (a *App) openCommand() {
	a.commandOpen = true
	a.commandLine.Reset()
	a.commandLine.Focus()
	a.commandCursor = 0
}

func (a *App) closeCommand() {
	a.commandOpen = false
	a.commandLine.Reset()
	a.commandLine.Blur()
	a.commandCursor = 0
}

func (a *App) updateCommand(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if b := a.keys.Lookup(m.String(), scopeCommand); b != nil {
		switch b.Action {
		case actionQuit:
			return a, tea.Quit
		case actionClose:
			a.closeCommand()
			return a, nil
		case actionSelect:
			return a.runCommand()
		case actionNavigate:
			a.moveCommandCursor(m.String())
			return a, nil
		}
	}
	before := a.commandLine.Value()
	var cmd tea.Cmd
	a.commandLine, cmd = a.commandLine.Update(m)
	if a.commandLine.Value() != before {
		a.commandCursor = 0
	}
	return a, cmd
}

func (a *App) moveCommandCursor(keyName string) {
	switch keyName {
	case "up", "ctrl+p":
		a.commandCursor--
	case "down", "ctrl+n":
		a.commandCursor++
	}
	n := len(a.commands.Search(a.commandLine.Value()))
	if n > maxMatches {
		n = maxMatches
	}
	if a.commandCursor >= n {
		a.commandCursor = n - 1
	}
	if a.commandCursor < 0 {
		a.commandCursor = 0
	}
}

func (a *App) runCommand() (tea.Model, tea.Cmd) {
	input, cursor := a.commandLine.Value(), a.commandCursor
	a.closeCommand()
	if strings.TrimSpace(input) == "" {
		return a, nil
	}
	cmd, args, err := a.commands.Resolve(input, cursor)
	if err != nil {
		a.setError(err)
		return a, nil
	}
	a.clearStatus()
	next, err := cmd.Execute(a, args)
	if err != nil {
		a.setError(fmt.Errorf("%s: %w", cmd.ID, err))
		return a, nil
	}
	return a, next
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusErr = false
}

func (a *App) setError(err error) {
	a.status = err.Error()
	a.statusErr = true
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusErr = false
}

// messages
type tapeMsg struct {
	entries []repository.TapeEntry
}

type tapeClearedMsg struct {
	through int64
}

type statusMsg string

type errMsg struct{ error }

// rendering

func (a *App) View() string {
	left := strings.Join([]string{a.headerView(), a.displayView(), renderKeypad(a.pressed)}, "\n")
	body := left
	if w := a.tapeWidth(); a.showTape && a.tape != nil && w > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", a.tapeView(w, lipgloss.Height(left)))
	}
	lines := []string{body}
	if a.commandOpen {
		lines = append(lines, a.commandView())
	}
	lines = append(lines, a.statusView(), a.helpView())
	return strings.Join(lines, "\n")
}

func (a *App) headerView() string {
	return titleStyle.Render("jaskcalc") + " " + helpDescStyle.Render(a.engine.Formatter().Locale().String())
}

func (a *App) displayView() string {
	inner := keypadWidth - 2
	prev := previousStyle.Width(inner).Render(fitRight(a.snapshot.Previous, inner))
	cur := currentStyle.Width(inner).Render(fitRight(a.snapshot.Current, inner))
	return displayStyle.Render(prev + "\n" + cur)
}

// keypadTop is the screen row of the keypad's top edge.
func (a *App) keypadTop() int {
	return lipgloss.Height(a.headerView()) + lipgloss.Height(a.displayView())
}

// tapeWidth is the outer width of the tape pane, or zero when it does not fit.
func (a *App) tapeWidth() int {
	if a.width == 0 {
		return tapeMaxWidth
	}
	w := a.width - keypadWidth - 1
	if w < tapeMinWidth {
		return 0
	}
	if w > tapeMaxWidth {
		w = tapeMaxWidth
	}
	return w
}

func (a *App) tapeView(width, height int) string {
	inner := width - 4
	lines := []string{tapeHeadStyle.Render("Tape")}
	if len(a.tapeEntries) == 0 {
		lines = append(lines, helpDescStyle.Render("no calculations yet"))
	}
	f := a.engine.Formatter()
	for _, e := range a.tapeEntries {
		line := fmt.Sprintf("%3d  %s", e.Seq, service.Describe(f, e))
		lines = append(lines, tapeLineStyle.Render(ansi.Truncate(line, inner, "…")))
	}
	if limit := height - 2; limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	return tapeStyle.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

func (a *App) commandView() string {
	lines := []string{commandStyle.Render(a.commandLine.View())}
	matches := a.commands.Search(a.commandLine.Value())
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	for i, m := range matches {
		label := m.Command.ID
		if m.Command.Usage != "" {
			label = m.Command.Usage
		}
		line := fmt.Sprintf("  %-14s %s", label, m.Command.Description)
		if i == a.commandCursor {
			lines = append(lines, matchSelStyle.Render("> "+line[2:]))
			continue
		}
		lines = append(lines, matchStyle.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (a *App) statusView() string {
	if a.status == "" {
		return ""
	}
	if a.statusErr {
		return errorStyle.Render(a.status)
	}
	return statusStyle.Render(a.status)
}

func (a *App) helpView() string {
	scope := scopeCalculator
	if a.commandOpen {
		scope = scopeCommand
	}
	var parts []string
	for _, b := range a.keys.HelpBindings(scope) {
		h := b.Help()
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+helpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

// fitRight keeps the rightmost width cells of s, marking a cut with "…".
func fitRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w <= width {
		return s
	}
	return ansi.TruncateLeft(s, w-width+1, "…")
}
