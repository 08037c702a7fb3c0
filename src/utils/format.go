package utils

import (
	"math"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------

// Money formats with thousands separators and two decimals (1234.5 -> "1,234.50").
func Money(v float64) string {
	return GroupThousands(strconv.FormatFloat(v, 'f', 2, 64))
}

// -----------------------------------------------------------------------------

// Int formats an integer with thousands separators.
func Int(v int64) string {
	return GroupThousands(strconv.FormatInt(v, 10))
}

// -----------------------------------------------------------------------------

// GroupThousands inserts commas into the integer part of a plain decimal string.
func GroupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}

// -----------------------------------------------------------------------------

// Fixed formats with n decimals and no grouping.
func Fixed(v float64, n int) string {
	return strconv.FormatFloat(v, 'f', n, 64)
}

// -----------------------------------------------------------------------------

// Signed formats with n decimals and an explicit + for non-negative values.
func Signed(v float64, n int) string {
	s := strconv.FormatFloat(v, 'f', n, 64)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s
}

// -----------------------------------------------------------------------------

// ShortFloat prints the shortest representation that round-trips, always
// keeping a decimal point (50 -> "50.0", 33.3 -> "33.3").
func ShortFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// -----------------------------------------------------------------------------

// Round rounds half away from zero to n decimals.
func Round(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}

// -----------------------------------------------------------------------------

// AbbreviateCap renders a market capitalization as $1.2T, $3.4B or $5.6M.
func AbbreviateCap(cap float64) string {
	switch {
	case cap >= 1e12:
		return "$" + Fixed(cap/1e12, 1) + "T"
	case cap >= 1e9:
		return "$" + Fixed(cap/1e9, 1) + "B"
	default:
		return "$" + Fixed(cap/1e6, 1) + "M"
	}
}
