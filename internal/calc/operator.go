package calc

// Operator is a pending binary operation. The zero value means no operation
// has been chosen.
type Operator string

const (
	OpNone     Operator = ""
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
)

// Operators lists the supported operators in keypad order.
func Operators() []Operator {
	return []Operator{OpDivide, OpMultiply, OpAdd, OpSubtract}
}

// ParseOperator maps a token to a supported operator.
func ParseOperator(s string) (Operator, bool) {
	op := Operator(s)
	return op, op.Valid()
}

func (op Operator) Valid() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	}
	return false
}

func (op Operator) String() string { return string(op) }

// apply evaluates left op right with IEEE-754 semantics.
func (op Operator) apply(left, right float64) (float64, bool) {
	switch op {
	case OpAdd:
		return left + right, true
	case OpSubtract:
		return left - right, true
	case OpMultiply:
		return left * right, true
	case OpDivide:
		return left / right, true
	}
	return 0, false
}
