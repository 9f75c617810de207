// Package display derives the product list shown by the storefront from the
// loaded catalog and the user's filters.
package display

import (
	"slices"
	"strings"

	"github.com/atinyakov/GophStore/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the order of the displayed products.
type SortKey string

const (
	SortNone  SortKey = ""
	SortName  SortKey = "name"
	SortPrice SortKey = "price"
	SortStore SortKey = "store"
)

// Filters are the user's narrowing and ordering choices.
type Filters struct {
	// StoreID restricts the all-products view to one store. Empty means all.
	StoreID string
	// Search is matched case-insensitively against name, defect and rct.
	Search string
	Sort   SortKey
}

// Display returns the products to show, in order. It never modifies
// products and always returns a non-nil slice. Equal sort keys keep their
// input order; an unknown sort key keeps the input order.
func Display(products []models.Product, stores []models.Store, view models.View, f Filters) []models.Product {
	term := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if view == models.ViewAllProducts && f.StoreID != "" && p.StoreID != f.StoreID {
			continue
		}
		if term != "" && !Matches(p, term) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortName:
		col := collate.New(language.Und)
		slices.SortStableFunc(out, func(a, b models.Product) int {
			return col.CompareString(a.Name, b.Name)
		})
	case SortPrice:
		slices.SortStableFunc(out, func(a, b models.Product) int {
			switch {
			case a.FinalPrice < b.FinalPrice:
				return -1
			case a.FinalPrice > b.FinalPrice:
				return 1
			}
			return 0
		})
	case SortStore:
		names := StoreNames(stores)
		col := collate.New(language.Und)
		slices.SortStableFunc(out, func(a, b models.Product) int {
			return col.CompareString(names[a.StoreID], names[b.StoreID])
		})
	}
	return out
}

// Matches reports whether the lower-cased term occurs in the product's name,
// defect or rct, ignoring case.
func Matches(p models.Product, term string) bool {
	for _, field := range []string{p.Name, p.Defect, p.RCT} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// StoreNames indexes store names by id.
func StoreNames(stores []models.Store) map[string]string {
	names := make(map[string]string, len(stores))
	for _, s := range stores {
		names[s.ID] = s.Name
	}
	return names
}
