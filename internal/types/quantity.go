// README: Quantity value object with exact decimal parsing.
package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Quantity is an amount of product in milli-units: 1500 means 1.5 kg
// for weighed items or 1.5 pieces for counted ones. Parsing is exact
// decimal, never float, so repeated cart mutations cannot drift.
type Quantity int64

const QuantityOne Quantity = 1000

var ErrBadQuantity = errors.New("invalid quantity")

// unit suffixes customers type after the number, in Hindi and English.
var quantitySuffixes = []string{"किग्रा", "किलो", "kgs", "kg"}

// ParseQuantity reads a customer quantity expression such as "2kg",
// "1.5", "500" or "किग्रा 1". An empty remainder after stripping the
// unit suffix defaults to 1, mirroring how "1kg" is usually typed as
// just "kg" by returning customers.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, suf := range quantitySuffixes {
		s = strings.ReplaceAll(s, suf, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return QuantityOne, nil
	}
	whole, frac, err := splitDecimal(s, 3)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadQuantity, s)
	}
	q := Quantity(whole*1000 + frac)
	if q <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadQuantity, s)
	}
	return q, nil
}

// String renders "2" or "1.5", trimming trailing zeros from the
// fractional part the way the cart summary shows quantities.
func (q Quantity) String() string {
	whole := int64(q) / 1000
	frac := int64(q) % 1000
	if frac == 0 {
		return strconv.FormatInt(whole, 10)
	}
	s := fmt.Sprintf("%d.%03d", whole, frac)
	return strings.TrimRight(s, "0")
}

// splitDecimal parses "12.345" into integer part and a fractional part
// scaled to exactly `places` digits. Extra fractional digits are
// rejected rather than silently rounded.
func splitDecimal(s string, places int) (int64, int64, error) {
	wholePart, fracPart, _ := strings.Cut(s, ".")
	if wholePart == "" {
		wholePart = "0"
	}
	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil || whole < 0 {
		return 0, 0, fmt.Errorf("bad decimal %q", s)
	}
	if len(fracPart) > places {
		return 0, 0, fmt.Errorf("too many decimal places in %q", s)
	}
	for len(fracPart) < places {
		fracPart += "0"
	}
	frac := int64(0)
	if fracPart != strings.Repeat("0", places) {
		frac, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil || frac < 0 {
			return 0, 0, fmt.Errorf("bad decimal %q", s)
		}
	}
	return whole, frac, nil
}
