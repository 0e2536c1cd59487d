package scan

import (
	"slices"
	"strings"

	"agroledger/pkg/models"
)

// MatchProducts binds each draft line to a catalogue product, first by
// reference code appearing as a word of the description, then by exact
// case-insensitive name. Matched lines take the product's current name and
// unit. The descriptions of unmatched lines are returned; those lines keep
// an empty product id.
func MatchProducts(draft models.PurchaseOrder, products []models.Product) (models.PurchaseOrder, []string) {
	var unmatched []string

	draft.Items = slices.Clone(draft.Items)
	for i, item := range draft.Items {
		p, ok := findProduct(item.ProductName, products)
		if !ok {
			unmatched = append(unmatched, item.ProductName)
			continue
		}
		item.ProductID = p.ID
		item.ProductName = p.Name
		item.Unit = p.Unit
		draft.Items[i] = item
	}
	return draft, unmatched
}

func findProduct(description string, products []models.Product) (models.Product, bool) {
	words := strings.Fields(description)
	for _, p := range products {
		if p.Reference == "" {
			continue
		}
		if slices.ContainsFunc(words, func(w string) bool { return strings.EqualFold(w, p.Reference) }) {
			return p, true
		}
	}

	description = strings.TrimSpace(description)
	for _, p := range products {
		if strings.EqualFold(description, p.Name) {
			return p, true
		}
	}
	return models.Product{}, false
}
