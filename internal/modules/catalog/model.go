// README: Product catalog read model.
package catalog

import (
	"errors"

	"kirana/internal/types"
)

var ErrNotFound = errors.New("product not found")

// Product is read-only to the bot; the catalog is maintained by an
// out-of-band admin surface.
type Product struct {
	ID       int64
	Name     string
	Price    types.Money
	Category string
	Active   bool
	ImageURL string
}

// Section is one category worth of products, in menu order.
type Section struct {
	Category string
	Products []Product
}

// Grouped splits an already ordered (category, name) product slice
// into sections, preserving order. Products without a category land
// under "अन्य".
func Grouped(products []Product) []Section {
	var sections []Section
	for _, p := range products {
		cat := p.Category
		if cat == "" {
			cat = "अन्य"
		}
		if n := len(sections); n == 0 || sections[n-1].Category != cat {
			sections = append(sections, Section{Category: cat})
		}
		last := &sections[len(sections)-1]
		last.Products = append(last.Products, p)
	}
	return sections
}
