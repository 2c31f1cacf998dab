// Package core provides the budgeting domain: expense records, the fixed
// allocation table and spend aggregation.
//
// This file contains helpers for turning loosely typed input into amounts
// and for rounding totals to cents.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user or wire input into a float the way a browser's
// Number() does for the inputs we care about: blank is 0, anything that does
// not parse is NaN.
//
// Examples:
//   ParseAmount("12.34") -> 12.34
//   ParseAmount(" ")     -> 0
//   ParseAmount("abc")   -> NaN
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ParseSalary applies the "invalid number is zero" policy to the salary
// field.
func ParseSalary(s string) float64 {
	return Finite(ParseAmount(s))
}

// Finite returns v, or 0 when v is NaN or infinite.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round2 rounds v to two decimal places. Non-finite values are returned
// unchanged so callers can still detect them.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
