package sales

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Quantity is a cart line quantity as sent by the register. Decoding never
// fails: numbers are truncated, numeric strings parsed, and anything missing,
// non-numeric or below one becomes one.
type Quantity int

func (q *Quantity) UnmarshalJSON(b []byte) error {
	*q = Quantity(coerceQuantity(b)).Clamp()
	return nil
}

// Clamp returns q, or 1 when q is not positive.
func (q Quantity) Clamp() Quantity {
	if q < 1 {
		return 1
	}
	return q
}

func coerceQuantity(b []byte) int {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0
		}
		return leadingInt(strings.TrimSpace(s))
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return 0
	}
	if f < 1 {
		return 0
	}
	if f > float64(maxQuantity) {
		return maxQuantity
	}
	return int(f)
}

const maxQuantity = 1_000_000

// leadingInt parses the optional sign and digits at the start of s, so "3 pcs"
// reads as 3.
func leadingInt(s string) int {
	end := 0
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' || end == 0 && (c == '-' || c == '+') {
			end++
			continue
		}
		break
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return maxQuantity
	}
	if err != nil {
		return 0
	}
	if n > maxQuantity {
		return maxQuantity
	}
	return n
}
