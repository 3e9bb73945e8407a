package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/jask/jaskcalc/internal/calc"
	"github.com/jask/jaskcalc/internal/config"
	"github.com/jask/jaskcalc/internal/database"
	"github.com/jask/jaskcalc/internal/service"
)

func testConfig() config.Config {
	return config.Config{
		UI:   config.UIConfig{Locale: "en", ShowTape: true},
		Tape: config.TapeConfig{Limit: 10},
	}
}

func newTestApp(t *testing.T, withTape bool) *App {
	t.Helper()
	var services Services
	if withTape {
		db, err := database.OpenMemory()
		if err != nil {
			t.Fatalf("open tape db: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		services.Tape = service.NewTapeService(db)
	}
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	return New(context.Background(), testConfig(), cfgPath, calc.NewFormatter(language.English), nil, services)
}

func runeKey(r rune) tea.KeyMsg {
	if r == ' ' {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// typeKeys sends every rune of s as a key press and returns the commands the
// app produced along the way.
func typeKeys(a *App, s string) []tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range s {
		_, cmd := a.Update(runeKey(r))
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func press(a *App, k tea.KeyType) tea.Cmd {
	_, cmd := a.Update(tea.KeyMsg{Type: k})
	return cmd
}

// drain runs cmds and feeds their messages back into the app.
func drain(t *testing.T, a *App, cmds ...tea.Cmd) {
	t.Helper()
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			drain(t, a, batch...)
			continue
		}
		a.Update(msg)
	}
}

func TestAppDigitEntryUpdatesDisplay(t *testing.T) {
	a := newTestApp(t, false)
	typeKeys(a, "12345.67")
	if a.snapshot != (calc.Snapshot{Current: "12,345.67"}) {
		t.Fatalf("snapshot = %+v", a.snapshot)
	}
	if !strings.Contains(a.View(), "12,345.67") {
		t.Fatal("view does not show the current operand")
	}
}

func TestAppChainedOperatorCollapses(t *testing.T) {
	a := newTestApp(t, false)
	typeKeys(a, "5+3*")
	if a.snapshot != (calc.Snapshot{Previous: "8 *"}) {
		t.Fatalf("snapshot = %+v", a.snapshot)
	}
}

func TestAppDeleteAndClearKeys(t *testing.T) {
	a := newTestApp(t, false)
	typeKeys(a, "987")
	press(a, tea.KeyBackspace)
	if a.snapshot.Current != "98" {
		t.Fatalf("after backspace current = %q, want 98", a.snapshot.Current)
	}
	typeKeys(a, "-")
	press(a, tea.KeyDelete)
	if a.snapshot != (calc.Snapshot{}) {
		t.Fatalf("after delete key snapshot = %+v, want empty", a.snapshot)
	}
	if a.engine.State() != (calc.State{}) {
		t.Fatalf("state = %+v, want cleared", a.engine.State())
	}
}

func TestAppEvaluateRecordsTape(t *testing.T) {
	a := newTestApp(t, true)
	cmds := typeKeys(a, "1200*3")
	cmds = append(cmds, press(a, tea.KeyEnter))
	if a.snapshot.Current != "3,600" {
		t.Fatalf("current = %q, want 3,600", a.snapshot.Current)
	}
	if len(cmds) != 1 {
		t.Fatalf("expected one tape command, got %d", len(cmds))
	}
	drain(t, a, cmds...)
	if len(a.tapeEntries) != 1 {
		t.Fatalf("tape entries = %d, want 1", len(a.tapeEntries))
	}
	if got := service.Describe(a.engine.Formatter(), a.tapeEntries[0]); got != "1,200 * 3 = 3,600" {
		t.Fatalf("tape line = %q", got)
	}
	if !strings.Contains(a.View(), "1,200 * 3 = 3,600") {
		t.Fatal("view does not show the tape entry")
	}
}

func TestAppMergesTapeEntriesOutOfOrder(t *testing.T) {
	a := newTestApp(t, true)
	cmds := typeKeys(a, "1+1+1+")
	if len(cmds) != 2 {
		t.Fatalf("expected two tape commands, got %d", len(cmds))
	}
	// Deliver the newer listing first.
	drain(t, a, cmds[1])
	drain(t, a, cmds[0])
	if len(a.tapeEntries) != 2 || a.tapeEntries[0].Seq != 2 || a.tapeEntries[1].Seq != 1 {
		t.Fatalf("tape = %+v, want both entries newest first", a.tapeEntries)
	}
}

func TestAppTapeRespectsLimitAndClear(t *testing.T) {
	a := newTestApp(t, true)
	a.cfg.Tape.Limit = 2
	drain(t, a, typeKeys(a, "1+1+1+1+1=")...)
	if len(a.tapeEntries) != 2 || a.tapeEntries[0].Seq != 4 {
		t.Fatalf("tape = %+v, want the two newest entries", a.tapeEntries)
	}

	// A record that lands after the clear was issued survives it.
	clearCmd := a.clearTapeCmd()
	late := typeKeys(a, "+2=")
	drain(t, a, late...)
	drain(t, a, clearCmd)
	if len(a.tapeEntries) != 1 || a.tapeEntries[0].Seq != 5 {
		t.Fatalf("tape = %+v, want only the entry recorded after the clear", a.tapeEntries)
	}
}

func TestAppInitLoadsTape(t *testing.T) {
	a := newTestApp(t, true)
	if _, err := a.tape.Record(context.Background(), 1, calc.Computation{Left: 1, Op: calc.OpAdd, Right: 2, Result: 3}); err != nil {
		t.Fatalf("record: %v", err)
	}
	a.tapeSeq = 1
	drain(t, a, a.Init())
	if len(a.tapeEntries) != 1 {
		t.Fatalf("tape after init = %+v", a.tapeEntries)
	}
}

func TestAppWithoutTapeProducesNoCommands(t *testing.T) {
	a := newTestApp(t, false)
	cmds := typeKeys(a, "6/0=")
	if len(cmds) != 0 {
		t.Fatalf("expected no commands without a tape, got %d", len(cmds))
	}
	if a.snapshot.Current != "∞" {
		t.Fatalf("current = %q, want ∞", a.snapshot.Current)
	}
}

func TestAppMouseClicksPressButtons(t *testing.T) {
	a := newTestApp(t, false)
	top := a.keypadTop()
	click := func(col, row int) {
		a.Update(tea.MouseMsg{
			X:      col*cellWidth + 2,
			Y:      top + row*cellHeight + 1,
			Action: tea.MouseActionPress,
			Button: tea.MouseButtonLeft,
		})
	}
	click(0, 3) // 7
	click(3, 2) // +
	click(1, 1) // 2
	click(3, 4) // =
	if a.snapshot.Current != "9" {
		t.Fatalf("current = %q, want 9", a.snapshot.Current)
	}
	click(0, 0) // AC
	if a.engine.State() != (calc.State{}) {
		t.Fatalf("state after AC = %+v", a.engine.State())
	}

	// Releases and clicks outside the keypad do nothing.
	a.Update(tea.MouseMsg{X: 2, Y: top + 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	a.Update(tea.MouseMsg{X: 2, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if a.engine.State() != (calc.State{}) {
		t.Fatalf("state changed by ignored mouse events: %+v", a.engine.State())
	}
}

func TestAppKeypadTopIsBelowDisplay(t *testing.T) {
	a := newTestApp(t, false)
	if got := a.keypadTop(); got != 5 {
		t.Fatalf("keypadTop = %d, want 5 (title + bordered two-line display)", got)
	}
}

func TestAppCommandModeRunsCommands(t *testing.T) {
	a := newTestApp(t, false)
	typeKeys(a, "42+")
	typeKeys(a, ":clear")
	if !a.commandOpen {
		t.Fatal("expected command mode to be open")
	}
	if a.engine.State().Previous != "42" {
		t.Fatal("typing in command mode must not reach the engine")
	}
	press(a, tea.KeyEnter)
	if a.commandOpen {
		t.Fatal("command mode should close after running")
	}
	if a.engine.State() != (calc.State{}) {
		t.Fatalf("state after :clear = %+v", a.engine.State())
	}
}

func TestAppEditCommandsReturnQueuedWork(t *testing.T) {
	for _, name := range []string{"clear", "delete"} {
		a := newTestApp(t, false)
		typeKeys(a, "12")
		a.queued = append(a.queued, func() tea.Msg { return statusMsg("queued") })
		typeKeys(a, ":"+name)
		cmd := press(a, tea.KeyEnter)
		if cmd == nil {
			t.Fatalf(":%s dropped the queued command", name)
		}
		if msg, ok := cmd().(statusMsg); !ok || msg != "queued" {
			t.Fatalf(":%s returned %#v", name, msg)
		}
	}
}

func TestAppCommandModeFuzzySelection(t *testing.T) {
	a := newTestApp(t, false)
	typeKeys(a, "7*6")
	typeKeys(a, ":eval")
	press(a, tea.KeyEnter)
	if a.snapshot.Current != "42" {
		t.Fatalf("current = %q, want 42", a.snapshot.Current)
	}
}

func TestAppCommandModeSuggestsOnTypo(t *testing.T) {
	a := newTestApp(t, false)
	typeKeys(a, ":qiut")
	cmd := press(a, tea.KeyEnter)
	if cmd != nil {
		t.Fatal("an unknown command must not run anything")
	}
	if !a.statusErr || !strings.Contains(a.status, `did you mean "quit"`) {
		t.Fatalf("status = %q", a.status)
	}
}

func TestAppCommandLineEditing(t *testing.T) {
	a := newTestApp(t, false)
	typeKeys(a, ":tapx")
	press(a, tea.KeyBackspace)
	typeKeys(a, "e:t")
	if got := a.commandLine.Value(); got != "tape:t" {
		t.Fatalf("command line = %q, want tape:t", got)
	}
	press(a, tea.KeyDown)
	if a.commandCursor != 0 {
		t.Fatalf("cursor = %d, want 0 with a single match", a.commandCursor)
	}
	if !strings.Contains(a.View(), "tape:toggle") {
		t.Fatal("view should list the matching command")
	}
}

func TestAppCommandModeEscCloses(t *testing.T) {
	a := newTestApp(t, false)
	typeKeys(a, ":loc")
	press(a, tea.KeyEsc)
	if a.commandOpen || a.commandLine.Value() != "" {
		t.Fatal("esc should close command mode")
	}
}

func TestAppLocaleCommandSavesConfig(t *testing.T) {
	a := newTestApp(t, false)
	typeKeys(a, "1234567")
	typeKeys(a, ":locale de")
	cmd := press(a, tea.KeyEnter)
	if a.snapshot.Current != "1.234.567" {
		t.Fatalf("current = %q, want German grouping", a.snapshot.Current)
	}
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	a.Update(cmd())
	if a.statusErr || a.status != "locale de saved" {
		t.Fatalf("status = %q", a.status)
	}
	data, err := os.ReadFile(a.cfgPath)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if !strings.Contains(string(data), "de") {
		t.Fatalf("saved config does not contain the locale:\n%s", data)
	}
}

func TestAppLocaleCommandRejectsBadTag(t *testing.T) {
	a := newTestApp(t, false)
	typeKeys(a, ":locale !!")
	press(a, tea.KeyEnter)
	if !a.statusErr || !strings.HasPrefix(a.status, "locale:") {
		t.Fatalf("status = %q", a.status)
	}
	if a.engine.Formatter().Locale() != language.English {
		t.Fatal("locale should be unchanged")
	}
}

func TestAppTapeClearCommand(t *testing.T) {
	a := newTestApp(t, true)
	drain(t, a, typeKeys(a, "2+2=")...)
	if len(a.tapeEntries) != 1 {
		t.Fatalf("tape entries = %d, want 1", len(a.tapeEntries))
	}
	typeKeys(a, ":tape:clear")
	drain(t, a, press(a, tea.KeyEnter))
	if len(a.tapeEntries) != 0 {
		t.Fatalf("tape entries after clear = %d", len(a.tapeEntries))
	}
	if a.status != "tape cleared" {
		t.Fatalf("status = %q", a.status)
	}
}

func TestAppToggleTapeAndNarrowWindow(t *testing.T) {
	a := newTestApp(t, true)
	if !strings.Contains(a.View(), "Tape") {
		t.Fatal("tape should show by default")
	}
	typeKeys(a, "t")
	if strings.Contains(a.View(), "Tape") {
		t.Fatal("t should hide the tape")
	}
	typeKeys(a, "t")
	a.Update(tea.WindowSizeMsg{Width: keypadWidth + 10, Height: 30})
	if strings.Contains(a.View(), "Tape") {
		t.Fatal("tape should not render in a narrow window")
	}
}

func TestAppQuitKeys(t *testing.T) {
	a := newTestApp(t, false)
	if cmd := press(a, tea.KeyCtrlC); cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	_, cmd := a.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should produce a quit message")
	}
}

func TestFitRightKeepsLeastSignificantDigits(t *testing.T) {
	if got := fitRight("1,234", 10); got != "1,234" {
		t.Fatalf("fitRight short = %q", got)
	}
	if got := fitRight("123,456,789", 6); got != "…6,789" {
		t.Fatalf("fitRight long = %q", got)
	}
}
