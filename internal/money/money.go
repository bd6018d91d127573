// Package money converts between integer kopeck amounts and their ruble
// text representation.
package money

import (
	"math"
	"strconv"
	"strings"
)

// Glyph is the currency sign appended to formatted amounts.
const Glyph = "₽"

// Format renders kopecks as "12 345,67 ₽". Negative amounts get a leading
// minus sign and the magnitude is formatted as if positive.
func Format(kopecks int64) string {
	var sb strings.Builder

	// Magnitude in uint64 so math.MinInt64 does not overflow.
	magnitude := uint64(kopecks)
	if kopecks < 0 {
		sb.WriteByte('-')
		magnitude = uint64(-(kopecks + 1)) + 1
	}

	rubles := strconv.FormatUint(magnitude/100, 10)
	for i, r := range rubles {
		if i > 0 && (len(rubles)-i)%3 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}

	kop := magnitude % 100
	sb.WriteByte(',')
	sb.WriteByte(byte('0' + kop/10))
	sb.WriteByte(byte('0' + kop%10))
	sb.WriteString(" " + Glyph)
	return sb.String()
}

// Parse reads a ruble amount and returns it in kopecks. The currency glyph
// and spaces are ignored, and either ',' or '.' separates kopecks. Digits
// after the second fractional one are truncated, not rounded. The second
// return value is false for any malformed or negative input.
func Parse(text string) (int64, bool) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, Glyph, "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || strings.Count(s, ".") > 1 {
		return 0, false
	}

	rubStr, kopStr, hasFraction := strings.Cut(s, ".")
	if !hasFraction && rubStr == "" {
		return 0, false
	}
	if !isDigits(rubStr) || !isDigits(kopStr) {
		return 0, false
	}

	var rub uint64
	if rubStr != "" {
		var err error
		rub, err = strconv.ParseUint(rubStr, 10, 64)
		if err != nil || rub > math.MaxInt64/100 {
			return 0, false
		}
	}

	kopStr = (kopStr + "00")[:2]
	kop := int64(kopStr[0]-'0')*10 + int64(kopStr[1]-'0')

	total := int64(rub)*100 + kop
	if total < 0 {
		return 0, false
	}
	return total, true
}

// MustParse is like Parse but panics on malformed input. It is intended for
// fixtures and constants.
func MustParse(text string) int64 {
	v, ok := Parse(text)
	if !ok {
		panic("money: cannot parse " + strconv.Quote(text))
	}
	return v
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
