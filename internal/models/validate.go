package models

import "math"

// Finite reports whether v is a usable price: neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return Finite(v) && v > 0
}

// Validate checks the price invariants of a product record.
func (p *Product) Validate() error {
	if !positive(p.FinalPrice) {
		return NewValidationError("finalPrice", "final price must be greater than zero")
	}
	if !positive(p.OriginalPrice) {
		return NewValidationError("originalPrice", "original price must be greater than zero")
	}
	if p.PromotionalPrice != nil {
		if !Finite(*p.PromotionalPrice) {
			return NewValidationError("promotionalPrice", "must be a number")
		}
		if *p.PromotionalPrice >= p.OriginalPrice {
			return NewValidationError("promotionalPrice", "promotional price must be lower than the original price")
		}
	}
	return nil
}
