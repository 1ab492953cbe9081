package pricing

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var ErrNotANumber = errors.New("not a number")

// ParseAmount reads the longest numeric prefix of s after leading whitespace,
// the way the browser's parseFloat does: "1500" -> 1500, "12.5kg" -> 12.5,
// "abc" -> NaN.
func ParseAmount(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	prefix := numericPrefix(s)
	if prefix == "" {
		return math.NaN()
	}
	switch strings.TrimLeft(prefix, "+-") {
	case "Infinity":
		if strings.HasPrefix(prefix, "-") {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		// Out-of-range prefixes still parse to ±Inf with ErrRange.
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v
		}
		return math.NaN()
	}
	return v
}

// NormalizeAmount parses user input for a rate, expense or price override and
// returns the value with its canonical string form. Input without a numeric
// prefix is rejected.
func NormalizeAmount(s string) (float64, string, error) {
	v := ParseAmount(s)
	if math.IsNaN(v) {
		return 0, "", ErrNotANumber
	}
	return v, FormatAmount(v), nil
}

// FormatAmount renders a number the way the UI prints it: shortest decimal
// form, no grouping, NaN and Infinity spelled out.
func FormatAmount(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return decimal.NewFromFloat(v).String()
}

func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return s[:i+len("Infinity")]
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return s[:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ParseNumber is the strict counterpart of ParseAmount: the whole input,
// after trimming, must be a decimal literal or Infinity.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || numericPrefix(s) != s {
		return 0, ErrNotANumber
	}
	return ParseAmount(s), nil
}
