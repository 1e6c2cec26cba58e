package promo

import (
	"errors"
	"strings"
)

// ErrUnknownCode is the recoverable user error for a code with no entry.
// Applying an unknown code never disturbs a previously applied promo.
var ErrUnknownCode = errors.New("unknown promo code")

// Table resolves a promo code to a discount percentage.
// Injectable so the fixed table can later be swapped for a remote rules
// service without touching the pricing contract.
type Table interface {
	Lookup(code string) (percent int, ok bool)
}

// Normalize uppercases and trims a user-supplied code before lookup
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FixedTable is an in-memory code table
type FixedTable struct {
	codes map[string]int
}

// NewFixedTable builds a table from code -> percent entries.
// Keys are normalized; percents outside [0, 100] are clamped.
func NewFixedTable(codes map[string]int) *FixedTable {
	t := &FixedTable{codes: make(map[string]int, len(codes))}
	for code, percent := range codes {
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		t.codes[Normalize(code)] = percent
	}
	return t
}

// DefaultTable returns the storefront's built-in promo codes
func DefaultTable() *FixedTable {
	return NewFixedTable(map[string]int{
		"WELCOME10": 10,
		"SAVE15":    15,
		"LUXURY20":  20,
	})
}

// Lookup resolves a code case-insensitively
func (t *FixedTable) Lookup(code string) (int, bool) {
	percent, ok := t.codes[Normalize(code)]
	return percent, ok
}

// Evaluate resolves a code or returns ErrUnknownCode
func Evaluate(t Table, code string) (int, error) {
	percent, ok := t.Lookup(code)
	if !ok {
		return 0, ErrUnknownCode
	}
	return percent, nil
}
