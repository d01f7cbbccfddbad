// Package core holds the amount normalization and ledger aggregation logic.
//
// This file parses loosely formatted user amounts ("12,50 €", "15 eur",
// "20euros") into plain float64 values without false-accepting unit-bearing
// garbage.
package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// currencyWords are the whole-word tokens stripped before parsing. Matching
// is done on maximal alphabetic runs, so "eureka" is never touched.
var currencyWords = map[string]struct{}{
	"eur":   {},
	"euro":  {},
	"euros": {},
}

// Normalize converts arbitrary user-supplied input into a finite amount.
//
// Already-numeric input passes through unchanged when finite. String input is
// cleaned in a fixed order: lowercase, whole-word currency tokens, the euro
// symbol and whitespace, decimal comma to dot, remaining letters. The cleaned
// text is then parsed with leading-prefix semantics ("12.5x" parses as 12.5).
// Anything that fails to parse, or parses to NaN or an infinity, yields
// ErrInvalidAmount.
func Normalize(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, ErrInvalidAmount
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return normalizeString(x.String())
		}
		return finite(f)
	case string:
		return normalizeString(x)
	default:
		return 0, ErrInvalidAmount
	}
}

func finite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

func normalizeString(s string) (float64, error) {
	s = strings.ToLower(s)
	s = stripCurrencyWords(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '€' || unicode.IsSpace(r):
			// dropped
		case r == ',':
			b.WriteByte('.')
		case unicode.IsLetter(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}

	prefix := leadingFloat(b.String())
	if prefix == "" {
		return 0, ErrInvalidAmount
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return finite(f)
}

// stripCurrencyWords removes maximal alphabetic runs that exactly match a
// currency word. Runs are bounded by any non-letter rune, so "20euros" loses
// its suffix while "eureka" survives intact.
func stripCurrencyWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); {
		if !unicode.IsLetter(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && unicode.IsLetter(runes[j]) {
			j++
		}
		word := string(runes[i:j])
		if _, ok := currencyWords[word]; !ok {
			b.WriteString(word)
		}
		i = j
	}
	return b.String()
}

// leadingFloat returns the longest numeric prefix of s: an optional sign,
// digits, and at most one decimal point. Trailing garbage after a valid
// prefix is ignored, matching standard leading-float parsing.
func leadingFloat(s string) string {
	end := 0
	seenDigit := false
	seenDot := false
	for i, r := range s {
		switch {
		case (r == '+' || r == '-') && i == 0:
			// sign allowed only at the start
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenDot:
			seenDot = true
		default:
			if !seenDigit {
				return ""
			}
			return strings.TrimSuffix(s[:end+1], ".")
		}
		end = i
	}
	if !seenDigit {
		return ""
	}
	return strings.TrimSuffix(s, ".")
}
