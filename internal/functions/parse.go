package functions

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// parseInt reads a leading integer from s the way lenient web runtimes do:
// leading whitespace is skipped, an optional sign and 0x prefix are honoured,
// and parsing stops at the first character that is not a digit. Input with no
// digits yields NaN. Values too large for a float64 yield an infinity.
func parseInt(s string) float64 {
	s = strings.TrimLeftFunc(s, isSpace)

	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	end := 0
	for end < len(s) && digitValue(s[end]) < base {
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	digits := s[:end]

	var value float64
	if base == 10 {
		// ParseFloat rounds correctly and reports +Inf with ErrRange on overflow
		value, _ = strconv.ParseFloat(digits, 64)
	} else {
		for i := 0; i < len(digits); i++ {
			value = value*16 + float64(digitValue(digits[i]))
		}
	}

	return sign * value
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return math.MaxInt
	}
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\u2028', '\u2029', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
