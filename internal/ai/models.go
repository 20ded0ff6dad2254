package ai

import (
	"encoding/json"
	"strings"

	"kirana/internal/types"
)

// ParsedItem is one item the model heard in the customer's message.
type ParsedItem struct {
	// Name is the model's best guess at the product name, matched
	// against the catalog by the caller; it is not trusted to exist.
	Name string

	// Quantity is nil when the customer did not say an amount; the
	// caller defaults it to one unit.
	Quantity *types.Quantity

	// Fragment is the original phrase the item was extracted from,
	// echoed back to the customer when nothing matches.
	Fragment string
}

// rawItem is the untrusted JSON shape requested from the model. It is
// validated field by field; never deserialized straight into domain
// types.
type rawItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Fragment string `json:"fragment"`
}

// decodeItems validates model output. Any shape mismatch yields an
// empty list ("nothing understood") rather than an error that could
// leak into session mutation.
func decodeItems(raw string) []ParsedItem {
	var items []rawItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}

	out := make([]ParsedItem, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		p := ParsedItem{Name: name, Fragment: strings.TrimSpace(it.Fragment)}
		if p.Fragment == "" {
			p.Fragment = name
		}
		if q, err := types.ParseQuantity(it.Quantity); err == nil && strings.TrimSpace(it.Quantity) != "" {
			p.Quantity = &q
		}
		out = append(out, p)
	}
	return out
}
