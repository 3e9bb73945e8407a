// Package calc holds the calculator state machine and its display formatting.
// Adapters (terminal UI, scripted input) drive an Engine through Apply or the
// individual mutation methods and read it back through RenderSnapshot.
package calc

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// State is a copy of the three fields the engine tracks.
type State struct {
	Current   string
	Previous  string
	Operation Operator
}

// Snapshot is what a display shows: the current-operand line and the
// previous-operand-plus-operator line.
type Snapshot struct {
	Current  string
	Previous string
}

// Computation describes one compute that changed the engine state.
type Computation struct {
	Left   float64
	Op     Operator
	Right  float64
	Result float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithComputeHook registers fn to be called after every compute that changed
// state, including the implicit one done by ChooseOperation.
func WithComputeHook(fn func(Computation)) Option {
	return func(e *Engine) { e.onCompute = fn }
}

// Engine is the calculator. It is not safe for concurrent use; all calls are
// expected to come from a single input loop.
type Engine struct {
	current   string
	previous  string
	operation Operator

	format    Formatter
	onCompute func(Computation)
}

// New returns a cleared engine that renders with f.
func New(f Formatter, opts ...Option) *Engine {
	e := &Engine{format: f}
	for _, opt := range opts {
		opt(e)
	}
	e.Clear()
	return e
}

func (e *Engine) Formatter() Formatter { return e.format }

// SetFormatter swaps the display convention. Operand state is untouched.
func (e *Engine) SetFormatter(f Formatter) { e.format = f }

func (e *Engine) State() State {
	return State{Current: e.current, Previous: e.previous, Operation: e.operation}
}

func (e *Engine) Clear() {
	e.current = ""
	e.previous = ""
	e.operation = OpNone
}

// AppendDigit appends a digit or the decimal point to the current operand.
// A second decimal point and any rune other than 0-9 or '.' are ignored.
func (e *Engine) AppendDigit(token rune) {
	switch {
	case token == '.':
		if strings.Contains(e.current, ".") {
			return
		}
	case token < '0' || token > '9':
		return
	}
	e.current += string(token)
}

// Delete drops the last character of the current operand.
func (e *Engine) Delete() {
	if e.current == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(e.current)
	e.current = e.current[:len(e.current)-size]
}

// ChooseOperation stores op as the pending operation and moves the current
// operand into the previous slot. A pending operation is computed first so
// chained input like 3 + 4 + 5 evaluates left to right.
func (e *Engine) ChooseOperation(op Operator) {
	if !op.Valid() || e.current == "" {
		return
	}
	if e.previous != "" {
		e.Compute()
	}
	e.operation = op
	e.previous = e.current
	e.current = ""
}

// Compute evaluates previous <op> current. Missing or unparseable operands and
// a missing operation leave the state untouched. Division by zero yields an
// infinite or NaN result.
func (e *Engine) Compute() {
	left, ok := parseOperand(e.previous)
	if !ok {
		return
	}
	right, ok := parseOperand(e.current)
	if !ok {
		return
	}
	result, ok := e.operation.apply(left, right)
	if !ok {
		return
	}
	op := e.operation
	e.current = FormatNumber(result)
	e.operation = OpNone
	e.previous = ""
	if e.onCompute != nil {
		e.onCompute(Computation{Left: left, Op: op, Right: right, Result: result})
	}
}

// RenderSnapshot formats the state for display. It does not mutate the engine.
func (e *Engine) RenderSnapshot() Snapshot {
	s := Snapshot{Current: e.format.FormatForDisplay(e.current)}
	if e.operation != OpNone {
		s.Previous = e.format.FormatForDisplay(e.previous) + " " + e.operation.String()
	}
	return s
}

// Refresh pushes the current snapshot to sink.
func (e *Engine) Refresh(sink DisplaySink) {
	s := e.RenderSnapshot()
	sink.Display(s.Current, s.Previous)
}

// FormatNumber renders v the way a computed result is stored in the current
// operand: the shortest decimal string, never in exponent form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseOperand(s string) (float64, bool) {
	v, ok := parseNumber(s)
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// parseNumber parses s as a float64. Out-of-range input saturates to ±Inf
// (or zero) instead of failing. A stored infinity stays infinite when digits
// are typed after it, so "+Inf5" reads as +Inf.
func parseNumber(s string) (float64, bool) {
	switch {
	case s == "":
		return 0, false
	case strings.HasPrefix(s, "+Inf"):
		return math.Inf(1), true
	case strings.HasPrefix(s, "-Inf"):
		return math.Inf(-1), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}
