package calculator

import (
	"math"
	"strconv"
	"strings"
)

const (
	// maxOperandLen caps typed operands and natural result text.
	maxOperandLen = 15
	// fallbackPrecision is used when the natural text of a result is too long.
	fallbackPrecision = 10
	// exactDigits is enough fractional digits in 'e' form to hold the exact
	// decimal expansion of any float64.
	exactDigits = 800
)

// parseOperand reads an operand as a double. The error marker, NaN and
// anything that is not a decimal number report false.
func parseOperand(s string) (float64, bool) {
	switch s {
	case "Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if s == "" || strings.ContainsAny(s, "_xXpPnN") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// renderResult produces the text stored as the current operand after a
// computation.
func renderResult(f float64) string {
	s := formatShortest(f)
	if len(s) > maxOperandLen {
		return formatPrecision(f, fallbackPrecision)
	}
	return s
}

func formatNonFinite(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "Infinity", true
	case math.IsInf(f, -1):
		return "-Infinity", true
	}
	return "", false
}

// formatShortest renders the shortest round-trip decimal text. Plain
// notation is used for decimal exponents between -7 and 21, exponential
// notation ("1.5e+21", "1e-7") outside of it.
func formatShortest(f float64) string {
	if s, ok := formatNonFinite(f); ok {
		return s
	}
	if f == 0 {
		return "0"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	digits, exp := decimalDigits(strconv.FormatFloat(f, 'e', -1, 64))
	k := len(digits)
	n := exp + 1 // position of the decimal point relative to digits

	var b strings.Builder
	b.WriteString(sign)

	switch {
	case k <= n && n <= 21:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", n-k))
	case 0 < n && n <= 21:
		b.WriteString(digits[:n])
		b.WriteByte('.')
		b.WriteString(digits[n:])
	case -6 < n && n <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -n))
		b.WriteString(digits)
	default:
		b.WriteString(digits[:1])
		if k > 1 {
			b.WriteByte('.')
			b.WriteString(digits[1:])
		}
		writeExponent(&b, n-1)
	}
	return b.String()
}

// formatPrecision renders f with exactly p significant digits, switching to
// exponential notation when the exponent is below -6 or at least p.
func formatPrecision(f float64, p int) string {
	if s, ok := formatNonFinite(f); ok {
		return s
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	var digits string
	var e int
	if f == 0 {
		digits, e = strings.Repeat("0", p), 0
	} else {
		digits, e = roundHalfUp(f, p)
	}

	var b strings.Builder
	b.WriteString(sign)

	switch {
	case e < -6 || e >= p:
		b.WriteString(digits[:1])
		if p > 1 {
			b.WriteByte('.')
			b.WriteString(digits[1:])
		}
		writeExponent(&b, e)
	case e == p-1:
		b.WriteString(digits)
	case e >= 0:
		b.WriteString(digits[:e+1])
		b.WriteByte('.')
		b.WriteString(digits[e+1:])
	default:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -(e + 1)))
		b.WriteString(digits)
	}
	return b.String()
}

// roundHalfUp returns the first p significant digits of f and its decimal
// exponent. Ties round away from zero, unlike strconv which rounds them to
// even.
func roundHalfUp(f float64, p int) (string, int) {
	exact, e := decimalDigits(strconv.FormatFloat(f, 'e', exactDigits, 64))
	digits := []byte(exact[:p])
	if exact[p] < '5' {
		return string(digits), e
	}

	for i := p - 1; i >= 0; i-- {
		if digits[i] != '9' {
			digits[i]++
			return string(digits), e
		}
		digits[i] = '0'
	}
	// All nines carried over: 9.99…e+n becomes 1.00…e+(n+1).
	digits[0] = '1'
	return string(digits), e + 1
}

// decimalDigits splits strconv 'e' output ("1.2345e+06") into its mantissa
// digits ("12345") and decimal exponent (6).
func decimalDigits(s string) (string, int) {
	mantissa, expPart, _ := strings.Cut(s, "e")
	exp, _ := strconv.Atoi(expPart)
	return strings.Replace(mantissa, ".", "", 1), exp
}

func writeExponent(b *strings.Builder, e int) {
	b.WriteByte('e')
	if e >= 0 {
		b.WriteByte('+')
	}
	b.WriteString(strconv.Itoa(e))
}
