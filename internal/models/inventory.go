package models

import "time"

// InventoryItem is a row of the legacy master table, keyed by barcode.
// JSON keys keep the names the legacy endpoints have always used.
type InventoryItem struct {
	ID         string  `json:"id,omitempty"`
	Barcode    string  `json:"codigo"`
	RCT        string  `json:"rct"`
	ListPrice  float64 `json:"precoTabela"`
	PromoPrice float64 `json:"precoPromocao"`
	BalanceQty *int    `json:"saldo"`
	Location   string  `json:"localizacao"`
}

// PlaceAt copies the master row into a new placement on the given shelf.
func (i InventoryItem) PlaceAt(location string, at time.Time) Placement {
	item := i
	item.ID = ""
	item.Location = location
	return Placement{InventoryItem: item, AddedAt: at}
}

// Placement is a copy of a master row stocked at a location.
// Several placements of the same barcode may exist.
type Placement struct {
	InventoryItem
	AddedAt     time.Time  `json:"dataAdicao"`
	RelocatedAt *time.Time `json:"dataAtualizacao,omitempty"`
}

// StockLookup joins a master row with its placements.
type StockLookup struct {
	Master     *InventoryItem `json:"produtoTotal"`
	Placements []Placement    `json:"produtosEstoque"`
	Quantity   int            `json:"quantidadeEstoque"`
}
