// Package core provides the donor domain model and the pure aggregation,
// ranking, sorting and filtering operations built on it.
//
// This file contains the parser that turns source amounts into cents.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a decimal string to cents with half-up rounding on the
// third decimal place.
//
// Both dot and comma separators are accepted. Zero is valid; negative values,
// exponents and garbage are rejected.
//
// Examples:
//
//	ParseAmount("15000")   -> 1500000, nil
//	ParseAmount("12.345")  -> 1235, nil
//	ParseAmount("0")       -> 0, nil
//	ParseAmount("-1")      -> 0, ErrNegative
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "-") {
		return Money{}, ErrNegative
	}
	s = strings.TrimPrefix(s, "+")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// rounding can carry the fraction up to 100 cents
	const maxUnits = (math.MaxInt64 - 100) / 100
	if iv > maxUnits {
		return Money{}, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return Money{Cents: iv*100 + fracCents}, nil
}
