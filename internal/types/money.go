// README: Common money value object used across modules.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is an exact rupee amount held in paise. All cart and order
// arithmetic goes through this type; binary floating point is never
// used for currency.
type Money struct {
	Paise int64
}

func Rupees(r int64) Money {
	return Money{Paise: r * 100}
}

func (m Money) Add(other Money) Money {
	return Money{Paise: m.Paise + other.Paise}
}

// MulQty multiplies a unit price by a quantity in milli-units,
// rounding half up to the nearest paisa.
func (m Money) MulQty(q Quantity) Money {
	total := m.Paise * int64(q)
	rem := total % 1000
	total /= 1000
	if rem >= 500 {
		total++
	}
	return Money{Paise: total}
}

func (m Money) LessThan(other Money) bool {
	return m.Paise < other.Paise
}

func (m Money) IsZero() bool {
	return m.Paise == 0
}

// String renders "₹450" for whole rupees and "₹32.50" otherwise,
// matching how amounts appear in chat messages.
func (m Money) String() string {
	if m.Paise%100 == 0 {
		return "₹" + strconv.FormatInt(m.Paise/100, 10)
	}
	return fmt.Sprintf("₹%d.%02d", m.Paise/100, m.Paise%100)
}

// ParseMoney reads a decimal rupee amount like "32.50" or "450".
func ParseMoney(s string) (Money, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "₹")
	whole, frac, err := splitDecimal(s, 2)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q", s)
	}
	return Money{Paise: whole*100 + frac}, nil
}
