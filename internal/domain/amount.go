package domain

import (
	"bytes"
	"math/big"

	"github.com/shopspring/decimal"
)

// Amount is a non-negative integer quantity of payment token atomic units.
// The zero value is zero.
type Amount struct {
	d decimal.Decimal
}

// NewAmount returns v atomic units.
func NewAmount(v uint64) Amount {
	return Amount{d: decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)}
}

// ParseAmount parses a base-10 integer. Fractions and negative values are
// rejected because atomic units are indivisible.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() || d.IsNegative() {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{d: d}, nil
}

// MustParseAmount is ParseAmount for constants and tests.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic("domain: invalid amount " + s)
	}
	return a
}

func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a-b. Callers check a.Cmp(b) >= 0 first; the result is clamped
// at zero otherwise.
func (a Amount) Sub(b Amount) Amount {
	r := a.d.Sub(b.d)
	if r.IsNegative() {
		return Amount{}
	}
	return Amount{d: r}
}

// MulInt returns a*n.
func (a Amount) MulInt(n uint64) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0))}
}

func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

func (a Amount) LessThan(b Amount) bool {
	return a.d.LessThan(b.d)
}

func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

func (a Amount) IsPositive() bool {
	return a.d.IsPositive()
}

func (a Amount) String() string {
	return a.d.String()
}

// MarshalText renders the amount as a decimal string so large values survive
// JSON clients that parse numbers as floats.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.d.String()), nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// UnmarshalJSON accepts both quoted and bare integers.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	return a.UnmarshalText(data)
}
