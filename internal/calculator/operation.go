package calculator

import (
	"fmt"
	"strings"
)

// Operation is one of the four binary operators, or OpNone when nothing is pending.
type Operation int

const (
	OpNone Operation = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

// ParseOperation accepts an operator name ("add") or a button symbol ("+", "×").
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "+":
		return OpAdd, nil
	case "subtract", "-", "−":
		return OpSubtract, nil
	case "multiply", "*", "×", "x":
		return OpMultiply, nil
	case "divide", "/", "÷":
		return OpDivide, nil
	}
	return OpNone, fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}

// Apply evaluates a <op> b in double precision. Division by zero is guarded
// by the engine, not here.
func (o Operation) Apply(a, b float64) float64 {
	switch o {
	case OpAdd:
		return a + b
	case OpSubtract:
		return a - b
	case OpMultiply:
		return a * b
	case OpDivide:
		return a / b
	default:
		panic(fmt.Sprintf("calculator: apply on %v", o))
	}
}

func (o Operation) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	default:
		return ""
	}
}

// Symbol is the label printed on the calculator button.
func (o Operation) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "−"
	case OpMultiply:
		return "×"
	case OpDivide:
		return "÷"
	default:
		return ""
	}
}

func (o Operation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Operation) UnmarshalText(text []byte) error {
	op, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}
