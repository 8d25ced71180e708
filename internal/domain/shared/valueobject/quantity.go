package valueobject

import "strings"

// MinLineQuantity is the floor for every cart line quantity. Removing a line
// is a separate explicit action, so arithmetic never goes below it.
const MinLineQuantity = 1

// MaxLineQuantity is the ceiling for a cart line. It keeps item counts and
// subtotals far from int overflow.
const MaxLineQuantity = 9999

// MaxSelectorQuantity is the ceiling of the per-product quantity stepper
// shown next to each product before it is added to the cart
const MaxSelectorQuantity = 99

// ClampLineQuantity enforces the cart line range [1, MaxLineQuantity]
func ClampLineQuantity(q int) int {
	switch {
	case q < MinLineQuantity:
		return MinLineQuantity
	case q > MaxLineQuantity:
		return MaxLineQuantity
	}
	return q
}

// ClampSelectorQuantity enforces the stepper range [1, 99]
func ClampSelectorQuantity(q int) int {
	if q > MaxSelectorQuantity {
		return MaxSelectorQuantity
	}
	return ClampLineQuantity(q)
}

// ParseQuantityInput coerces free-form user input into a line quantity.
// Non-numeric input yields the floor, as does anything at or below zero.
// Numbers too large for int yield the ceiling.
func ParseQuantityInput(raw string) int {
	n, ok := ParseLeadingInt(raw)
	if !ok {
		if overflowsInt(raw) {
			return MaxLineQuantity
		}
		return MinLineQuantity
	}
	return ClampLineQuantity(n)
}

// ParseLeadingInt parses an optional sign followed by decimal digits at the
// start of raw, ignoring leading whitespace and any trailing characters.
// "12abc" parses as 12, "abc" and "" do not parse. Values that overflow int
// do not parse either.
func ParseLeadingInt(raw string) (int, bool) {
	s := strings.TrimLeft(raw, " \t\r\n")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	const maxInt = int(^uint(0) >> 1)
	n := 0
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		d := int(s[digits] - '0')
		if n > (maxInt-d)/10 {
			return 0, false
		}
		n = n*10 + d
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// overflowsInt reports whether raw starts with a positive run of digits
// too long for ParseLeadingInt
func overflowsInt(raw string) bool {
	s := strings.TrimLeft(raw, " \t\r\n")
	s = strings.TrimPrefix(s, "+")
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
