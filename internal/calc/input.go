package calc

import "unicode"

// InputKind is one of the five user actions an Input Source can produce.
type InputKind int

const (
	InputDigit InputKind = iota + 1
	InputDelete
	InputClear
	InputOperator
	InputCompute
)

// Input is a single discrete input event.
type Input struct {
	Kind  InputKind
	Token rune
	Op    Operator
}

func Digit(token rune) Input      { return Input{Kind: InputDigit, Token: token} }
func Operation(op Operator) Input { return Input{Kind: InputOperator, Op: op} }
func DeleteInput() Input          { return Input{Kind: InputDelete} }
func ClearInput() Input           { return Input{Kind: InputClear} }
func ComputeInput() Input         { return Input{Kind: InputCompute} }

// Apply dispatches in to the matching engine operation. Unknown kinds are
// ignored.
func (e *Engine) Apply(in Input) {
	switch in.Kind {
	case InputDigit:
		e.AppendDigit(in.Token)
	case InputDelete:
		e.Delete()
	case InputClear:
		e.Clear()
	case InputOperator:
		e.ChooseOperation(in.Op)
	case InputCompute:
		e.Compute()
	}
}

// ParseToken maps a scripted token to an input:
//
//	0-9 .     digit entry
//	+ - * /   operator
//	=         compute
//	<         delete
//	c C       clear
func ParseToken(r rune) (Input, bool) {
	switch {
	case r >= '0' && r <= '9', r == '.':
		return Digit(r), true
	case r == '=':
		return ComputeInput(), true
	case r == '<':
		return DeleteInput(), true
	case r == 'c', r == 'C':
		return ClearInput(), true
	}
	if op, ok := ParseOperator(string(r)); ok {
		return Operation(op), true
	}
	return Input{}, false
}

// Feed applies every recognised token in tokens to e, in order. Whitespace
// and unknown runes are skipped.
func Feed(e *Engine, tokens string) {
	for _, r := range tokens {
		if unicode.IsSpace(r) {
			continue
		}
		if in, ok := ParseToken(r); ok {
			e.Apply(in)
		}
	}
}
