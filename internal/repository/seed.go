package repository

import (
	"fmt"
	"net/url"
	"time"

	"github.com/atinyakov/GophStore/internal/models"
)

// Hasher produces the stored form of a store password.
type Hasher interface {
	Hash(password string) (string, error)
}

type seedStore struct {
	name     string
	password string
}

var defaultStores = []seedStore{
	{"TechStore", "123456"},
	{"EletroMax", "eletro123"},
	{"InfoCenter", "info456"},
	{"DigitalWorld", "digital789"},
}

// DefaultStores returns the initial stores with hashed credentials. IDs are left empty.
func DefaultStores(h Hasher) ([]models.Store, error) {
	stores := make([]models.Store, 0, len(defaultStores))
	for _, s := range defaultStores {
		hash, err := h.Hash(s.password)
		if err != nil {
			return nil, fmt.Errorf("hash seed password for %s: %w", s.name, err)
		}
		stores = append(stores, models.Store{Name: s.name, PasswordHash: hash})
	}
	return stores, nil
}

func placeholderImage(label, color string) string {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="300" height="200">` +
		`<rect width="300" height="200" fill="` + color + `"/>` +
		`<text x="150" y="105" font-size="20" text-anchor="middle" fill="white">` + label + `</text></svg>`
	return "data:image/svg+xml," + url.PathEscape(svg)
}

func price(v float64) *float64 { return &v }

// DefaultProducts returns the sample listings spread over storeIDs, which must
// hold the ids of the default stores in order. IDs are left empty.
func DefaultProducts(storeIDs []string, now time.Time) []models.Product {
	if len(storeIDs) < 3 {
		return nil
	}
	products := []models.Product{
		{
			Name:             "Smartphone Samsung Galaxy",
			Defect:           "Tela com pequeno risco na parte superior",
			RCT:              "SMG-001-2024",
			OriginalPrice:    1200,
			PromotionalPrice: price(900),
			FinalPrice:       750,
			StoreID:          storeIDs[0],
			Image:            placeholderImage("Smartphone", "#4A90E2"),
		},
		{
			Name:          "Notebook Dell Inspiron",
			Defect:        "Bateria com autonomia reduzida (2-3 horas)",
			RCT:           "NTB-002-2024",
			OriginalPrice: 2500,
			FinalPrice:    1800,
			StoreID:       storeIDs[1],
			Image:         placeholderImage("Notebook", "#7B68EE"),
		},
		{
			Name:             `Smart TV LG 55"`,
			Defect:           "Controle remoto não funciona (TV funciona normalmente)",
			RCT:              "TV-003-2024",
			OriginalPrice:    3200,
			PromotionalPrice: price(2800),
			FinalPrice:       2400,
			StoreID:          storeIDs[2],
			Image:            placeholderImage("Smart TV", "#FF6B6B"),
		},
		{
			Name:             "Fone Bluetooth JBL",
			Defect:           "Caixa original danificada, produto novo",
			RCT:              "FN-004-2024",
			OriginalPrice:    350,
			PromotionalPrice: price(280),
			FinalPrice:       220,
			StoreID:          storeIDs[0],
			Image:            placeholderImage("Fone JBL", "#2ECC71"),
		},
	}
	for i := range products {
		products[i].CreatedAt = now
		products[i].UpdatedAt = now
	}
	return products
}

func qty(n int) *int { return &n }

// DefaultInventory returns the legacy master rows.
func DefaultInventory() []models.InventoryItem {
	return []models.InventoryItem{
		{Barcode: "4066756633288", RCT: "002760MWTPPT44", PromoPrice: 100, ListPrice: 349.99, BalanceQty: qty(5)},
		{Barcode: "0196464441616", RCT: "100000103FSHBC34", PromoPrice: 399.99, ListPrice: 499.99},
		{Barcode: "0054871712197", RCT: "002240WFSHPT34", ListPrice: 499.99},
		{Barcode: "0054871712203", RCT: "002240WFSHPT35", ListPrice: 499.99},
		{Barcode: "0054871712227", RCT: "002240WFSHPT36", ListPrice: 499.99},
		{Barcode: "0054871712234", RCT: "meu ovo", PromoPrice: 6, ListPrice: 49.99, BalanceQty: qty(8888)},
		{Barcode: "0054871712241", RCT: "002240WFSHPT38", ListPrice: 499.99},
		{Barcode: "0054871712258", RCT: "002240WFSHPT39", ListPrice: 499.99},
	}
}
