package calculator

import "strings"

// ErrorMarker is shown in place of the current operand after a division by zero.
const ErrorMarker = "Error"

const initialOperand = "0"

// Clear button labels.
const (
	LabelClearEntry = "C"
	LabelAllClear   = "AC"
)

// Digit is a single digit key or the decimal point.
type Digit byte

// ParseDigit accepts "0" through "9" and ".".
func ParseDigit(s string) (Digit, error) {
	if len(s) != 1 || !(s[0] == '.' || (s[0] >= '0' && s[0] <= '9')) {
		return 0, &KeyError{Key: s, Err: ErrInvalidDigit}
	}
	return Digit(s[0]), nil
}

func (d Digit) String() string { return string(rune(d)) }

// State is a snapshot of an engine. Previous is empty when no operation is
// pending.
type State struct {
	Current   string
	Previous  string
	Operation Operation
	Overwrite bool
}

// ClearLabel is "C" while an entry is being typed, "AC" otherwise.
func (s State) ClearLabel() string {
	if s.Current != initialOperand && !s.Overwrite {
		return LabelClearEntry
	}
	return LabelAllClear
}

// IsError reports whether the current operand holds the error marker.
func (s State) IsError() bool {
	return s.Current == ErrorMarker
}

// Engine is the input accumulation state machine behind one calculator. It is
// not safe for concurrent use; Store serialises access per session.
type Engine struct {
	state State
}

func NewEngine() *Engine {
	e := &Engine{}
	e.Clear()
	return e
}

func (e *Engine) State() State {
	return e.state
}

// Clear restores the initial state.
func (e *Engine) Clear() {
	e.state = State{Current: initialOperand}
}

// AppendDigit types one digit or the decimal point. It returns false when the
// key was rejected.
func (e *Engine) AppendDigit(d Digit) bool {
	s := &e.state
	digit := d.String()

	if s.Overwrite {
		s.Current = digit
		s.Overwrite = false
		return true
	}

	switch {
	case d == '0' && s.Current == initialOperand:
		return false
	case d == '.' && strings.Contains(s.Current, "."):
		return false
	case len(s.Current) >= maxOperandLen:
		return false
	}

	if s.Current == initialOperand && d != '.' {
		s.Current = digit
	} else {
		s.Current += digit
	}
	return true
}

// SelectOperation makes op the pending operation. A pending operation that
// already has a second operand is resolved first, so operators apply left to
// right.
func (e *Engine) SelectOperation(op Operation) bool {
	if op == OpNone {
		return false
	}
	cleared := e.state.IsError()
	if cleared {
		e.Clear()
	}
	s := &e.state
	if s.Current == initialOperand && s.Previous == "" {
		return cleared
	}

	if s.Previous != "" && !s.Overwrite {
		e.Compute(true)
		if s.IsError() {
			return true
		}
	}

	s.Operation = op
	s.Previous = s.Current
	s.Current = initialOperand
	s.Overwrite = false
	return true
}

// Compute applies the pending operation to the previous and current operands.
// When chained is false the pending operation is consumed and the next digit
// starts a new number.
func (e *Engine) Compute(chained bool) bool {
	s := &e.state
	if s.Operation == OpNone || s.Previous == "" {
		return false
	}

	prev, ok := parseOperand(s.Previous)
	if !ok {
		return false
	}
	cur, ok := parseOperand(s.Current)
	if !ok {
		return false
	}

	if s.Operation == OpDivide && cur == 0 {
		*s = State{Current: ErrorMarker, Overwrite: true}
		return true
	}

	s.Current = renderResult(s.Operation.Apply(prev, cur))
	if !chained {
		s.Operation = OpNone
		s.Previous = ""
		s.Overwrite = true
	}
	return true
}

// PressClear performs whatever the clear button currently shows: "C" drops
// the current entry only, "AC" resets everything.
func (e *Engine) PressClear() string {
	label := e.state.ClearLabel()
	if label == LabelClearEntry {
		e.state.Current = initialOperand
		e.state.Overwrite = false
	} else {
		e.Clear()
	}
	return label
}
