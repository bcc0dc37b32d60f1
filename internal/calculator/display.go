package calculator

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var displayPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatOperand renders an operand for the screen: the integer part gets
// thousands separators, the fraction (including a bare trailing ".") is kept
// as typed. Exponential and non-finite text is shown unchanged.
func FormatOperand(operand string) string {
	switch {
	case operand == "":
		return ""
	case operand == ErrorMarker:
		return operand
	case strings.ContainsAny(operand, "eE"), strings.Contains(operand, "Infinity"), operand == "NaN":
		return operand
	}

	sign, rest := "", operand
	if strings.HasPrefix(rest, "-") {
		sign, rest = "-", rest[1:]
	}

	integer, fraction, hasPoint := strings.Cut(rest, ".")
	grouped := "0"
	if integer != "" {
		n, err := strconv.ParseUint(integer, 10, 64)
		if err != nil {
			return operand
		}
		grouped = displayPrinter.Sprintf("%d", n)
	}

	if hasPoint {
		return sign + grouped + "." + fraction
	}
	return sign + grouped
}

// Display is the two-line screen of a calculator.
type Display struct {
	Expression string `json:"expression"`
	Current    string `json:"current"`
}

// Render formats a state the way the screen shows it: the previous operand
// followed by the pending operator symbol above the current operand.
func Render(s State) Display {
	expr := FormatOperand(s.Previous)
	if sym := s.Operation.Symbol(); sym != "" {
		expr = strings.TrimSpace(expr + " " + sym)
	}
	return Display{
		Expression: expr,
		Current:    FormatOperand(s.Current),
	}
}
