// Package models defines the canonical data structures shared by the server,
// the storage gateways and the storefront client.
package models

import (
	"encoding/base64"
	"time"
)

// Store is a tenant of the catalog. Its identity never changes once created.
type Store struct {
	// ID is the canonical string identifier of the store.
	ID string `json:"id"`
	// Name is the display name of the store.
	Name string `json:"name"`
	// PasswordHash is the stored credential. It never leaves the server.
	PasswordHash string `json:"-"`
}

// Product is a defective or discounted item listed by exactly one store.
type Product struct {
	// ID is the canonical string identifier of the listing.
	ID string `json:"id"`
	// Name is the product name.
	Name string `json:"name"`
	// Defect describes what is wrong with the item.
	Defect string `json:"defect"`
	// RCT is the claim/ticket code attached to the listing.
	RCT string `json:"rct"`
	// OriginalPrice is the list price before any discount.
	OriginalPrice float64 `json:"originalPrice"`
	// PromotionalPrice is an optional intermediate price; nil when absent.
	PromotionalPrice *float64 `json:"promotionalPrice"`
	// FinalPrice is the price the item is sold for.
	FinalPrice float64 `json:"finalPrice"`
	// StoreID references the owning Store.
	StoreID string `json:"storeId"`
	// Image is a data URL or a plain URL.
	Image string `json:"image,omitempty"`
	// CreatedAt is set once when the listing is created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is bumped on every update.
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductPatch carries the fields submitted for a create or update.
// A nil pointer means the field was not submitted.
type ProductPatch struct {
	Name          *string
	Defect        *string
	RCT           *string
	OriginalPrice *float64
	FinalPrice    *float64
	StoreID       *string

	// PromotionalPrice is the submitted promotional price. When
	// PromotionalPriceSet is true and PromotionalPrice is nil the
	// promotional price is cleared.
	PromotionalPrice    *float64
	PromotionalPriceSet bool
}

// Apply merges the submitted fields into p. StoreID is not merged.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Defect != nil {
		p.Defect = *pp.Defect
	}
	if pp.RCT != nil {
		p.RCT = *pp.RCT
	}
	if pp.OriginalPrice != nil {
		p.OriginalPrice = *pp.OriginalPrice
	}
	if pp.FinalPrice != nil {
		p.FinalPrice = *pp.FinalPrice
	}
	if pp.PromotionalPriceSet {
		p.PromotionalPrice = pp.PromotionalPrice
	}
}

// Image is an uploaded picture before it is encoded for storage.
type Image struct {
	ContentType string
	Data        []byte
}

// DataURL encodes the image as a data URL.
func (i Image) DataURL() string {
	return "data:" + i.ContentType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// View is the screen the storefront client is showing.
type View string

const (
	// ViewAllProducts lists every store's products.
	ViewAllProducts View = "all-products"
	// ViewStoreProducts lists the products of the selected store.
	ViewStoreProducts View = "store-products"
	// ViewAddProduct shows the product form, for a new or an edited product.
	ViewAddProduct View = "add-product"
	// ViewManageProducts lists the logged-in store's products for management.
	ViewManageProducts View = "manage-products"
)

// Valid reports whether v is one of the known views.
func (v View) Valid() bool {
	switch v {
	case ViewAllProducts, ViewStoreProducts, ViewAddProduct, ViewManageProducts:
		return true
	}
	return false
}
