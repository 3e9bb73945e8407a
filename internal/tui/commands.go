package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/jaskcalc/internal/calc"
)

// suggestDistance is the largest edit distance still offered as a
// "did you mean" suggestion.
const suggestDistance = 3

type Command struct {
	ID          string
	Label       string
	Description string
	// Usage is shown for commands that take an argument.
	Usage   string
	Execute func(a *App, args []string) (tea.Cmd, error)
}

type CommandMatch struct {
	Command Command
	Score   int
}

type CommandRegistry struct {
	commands []Command
	byID     map[string]Command
}

func NewCommandRegistry() *CommandRegistry {
	r := &CommandRegistry{}
	r.commands = []Command{
		{
			ID:          "clear",
			Label:       "Clear",
			Description: "Reset both operands and the pending operator",
			Execute: func(a *App, _ []string) (tea.Cmd, error) {
				return a.apply(calc.ClearInput()), nil
			},
		},
		{
			ID:          "delete",
			Label:       "Delete",
			Description: "Remove the last character of the current operand",
			Execute: func(a *App, _ []string) (tea.Cmd, error) {
				return a.apply(calc.DeleteInput()), nil
			},
		},
		{
			ID:          "evaluate",
			Label:       "Evaluate",
			Description: "Compute the pending operation",
			Execute: func(a *App, _ []string) (tea.Cmd, error) {
				return a.apply(calc.ComputeInput()), nil
			},
		},
		{
			ID:          "tape:clear",
			Label:       "Clear Tape",
			Description: "Wipe the session tape",
			Execute: func(a *App, _ []string) (tea.Cmd, error) {
				if a.tape == nil {
					return nil, fmt.Errorf("tape is disabled")
				}
				return a.clearTapeCmd(), nil
			},
		},
		{
			ID:          "tape:toggle",
			Label:       "Toggle Tape",
			Description: "Show or hide the session tape",
			Execute: func(a *App, _ []string) (tea.Cmd, error) {
				a.showTape = !a.showTape
				return nil, nil
			},
		},
		{
			ID:          "locale",
			Label:       "Set Locale",
			Description: "Change digit grouping and save it to the config file",
			Usage:       "locale <tag>",
			Execute: func(a *App, args []string) (tea.Cmd, error) {
				if len(args) != 1 {
					return nil, fmt.Errorf("usage: locale <tag>")
				}
				return a.setLocale(args[0])
			},
		},
		{
			ID:          "quit",
			Label:       "Quit",
			Description: "Exit the calculator",
			Execute: func(*App, []string) (tea.Cmd, error) {
				return tea.Quit, nil
			},
		},
	}
	r.byID = make(map[string]Command, len(r.commands))
	for _, cmd := range r.commands {
		r.byID[cmd.ID] = cmd
	}
	return r
}

func (r *CommandRegistry) All() []Command {
	if r == nil {
		return nil
	}
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Search ranks commands by fuzzy match against the command name in query;
// arguments after the first word are ignored.
func (r *CommandRegistry) Search(query string) []CommandMatch {
	if r == nil {
		return nil
	}
	name, _ := splitCommand(query)
	out := make([]CommandMatch, 0, len(r.commands))
	for _, cmd := range r.commands {
		matched, score := commandMatchScore(cmd, name)
		if !matched {
			continue
		}
		out = append(out, CommandMatch{Command: cmd, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Command.ID < out[j].Command.ID
	})
	return out
}

// Suggest returns the command whose ID is closest to name by edit distance,
// if it is close enough to be a plausible typo.
func (r *CommandRegistry) Suggest(name string) (Command, bool) {
	if r == nil {
		return Command{}, false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Command{}, false
	}
	best, bestDist := Command{}, suggestDistance+1
	for _, cmd := range r.commands {
		d := levenshtein.ComputeDistance(name, cmd.ID)
		if d < bestDist {
			best, bestDist = cmd, d
		}
	}
	return best, bestDist <= suggestDistance
}

// Resolve picks the command for input. An exact ID match on the first word
// wins; otherwise the fuzzy match at index selected (as highlighted in the
// command line) is used. The remaining words are returned as arguments.
func (r *CommandRegistry) Resolve(input string, selected int) (Command, []string, error) {
	if r == nil {
		return Command{}, nil, fmt.Errorf("no commands registered")
	}
	name, args := splitCommand(input)
	if name == "" {
		return Command{}, nil, fmt.Errorf("empty command")
	}
	if cmd, ok := r.byID[strings.ToLower(name)]; ok {
		return cmd, args, nil
	}
	matches := r.Search(name)
	if selected >= 0 && selected < len(matches) {
		return matches[selected].Command, args, nil
	}
	if s, ok := r.Suggest(name); ok {
		return Command{}, nil, fmt.Errorf("unknown command %q, did you mean %q?", name, s.ID)
	}
	return Command{}, nil, fmt.Errorf("unknown command %q", name)
}

func splitCommand(input string) (string, []string) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func commandMatchScore(cmd Command, query string) (bool, int) {
	if query == "" {
		return true, 0
	}
	best := -1
	fields := []string{cmd.ID, cmd.Label}
	for _, field := range fields {
		matched, score := fuzzyMatchScore(field, query)
		if !matched {
			continue
		}
		if strings.EqualFold(field, query) {
			score += 15
		}
		if score > best {
			best = score
		}
	}
	if best < 0 {
		return false, 0
	}
	return true, best
}

func fuzzyMatchScore(label, query string) (bool, int) {
	if query == "" {
		return true, 0
	}
	labelLower := strings.ToLower(label)
	queryLower := strings.ToLower(query)

	matchIdx := make([]int, 0, len(queryLower))
	searchFrom := 0
	for i := 0; i < len(queryLower); i++ {
		ch := queryLower[i]
		found := false
		for j := searchFrom; j < len(labelLower); j++ {
			if labelLower[j] == ch {
				matchIdx = append(matchIdx, j)
				searchFrom = j + 1
				found = true
				break
			}
		}
		if !found {
			return false, 0
		}
	}

	score := len(queryLower)
	if len(matchIdx) > 0 && matchIdx[0] == 0 {
		score += 10
	}
	for i := 1; i < len(matchIdx); i++ {
		if matchIdx[i] == matchIdx[i-1]+1 {
			score += 3
		}
	}
	return true, score
}
