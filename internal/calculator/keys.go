package calculator

import (
	"fmt"
	"strings"
)

// KeyKind groups keys for metrics and logs.
type KeyKind string

const (
	KindDigit     KeyKind = "digit"
	KindOperation KeyKind = "operation"
	KindEquals    KeyKind = "equals"
	KindClear     KeyKind = "clear"
	KindReset     KeyKind = "reset"
)

// KeyError reports a button label that could not be interpreted.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Key)
}

func (e *KeyError) Unwrap() error { return e.Err }

// Key is one button press on the calculator.
type Key struct {
	Label string
	Kind  KeyKind
	Digit Digit
	Op    Operation
}

// ParseKey maps a button label to a key. Digits, ".", the operator symbols,
// "=", "C"/"AC"/"clear" and "reset" are understood.
func ParseKey(label string) (Key, error) {
	k := Key{Label: label}
	trimmed := strings.TrimSpace(label)

	if d, err := ParseDigit(trimmed); err == nil {
		k.Kind, k.Digit = KindDigit, d
		return k, nil
	}
	if op, err := ParseOperation(trimmed); err == nil {
		k.Kind, k.Op = KindOperation, op
		return k, nil
	}

	switch strings.ToLower(trimmed) {
	case "=", "equals", "enter":
		k.Kind = KindEquals
	case "c", "ac", "clear":
		k.Kind = KindClear
	case "reset":
		k.Kind = KindReset
	default:
		return Key{}, &KeyError{Key: label, Err: ErrUnknownKey}
	}
	return k, nil
}

// Press applies the key to e and reports whether the state changed.
func (k Key) Press(e *Engine) bool {
	before := e.State()
	switch k.Kind {
	case KindDigit:
		return e.AppendDigit(k.Digit)
	case KindOperation:
		return e.SelectOperation(k.Op)
	case KindEquals:
		return e.Compute(false)
	case KindClear:
		e.PressClear()
	case KindReset:
		e.Clear()
	}
	return e.State() != before
}
