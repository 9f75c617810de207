package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/GophStore/internal/models"
)

// Item looks a barcode up in the master table.
func (c *Client) Item(ctx context.Context, barcode string) (*models.InventoryItem, error) {
	var it models.InventoryItem
	if err := c.getJSON(ctx, &it, "api", "produto", barcode); err != nil {
		return nil, err
	}
	return &it, nil
}

// ItemByRCT looks an rct code up in the master table.
func (c *Client) ItemByRCT(ctx context.Context, rct string) (*models.InventoryItem, error) {
	var it models.InventoryItem
	if err := c.getJSON(ctx, &it, "api", "produto", "rct", rct); err != nil {
		return nil, err
	}
	return &it, nil
}

// Items lists the master table.
func (c *Client) Items(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := c.getJSON(ctx, &items, "api", "produtos-total"); err != nil {
		return nil, err
	}
	return items, nil
}

// Placements lists every stocked placement.
func (c *Client) Placements(ctx context.Context) ([]models.Placement, error) {
	var placements []models.Placement
	if err := c.getJSON(ctx, &placements, "api", "produtos"); err != nil {
		return nil, err
	}
	return placements, nil
}

// PlacementsAt lists the placements of one shelf.
func (c *Client) PlacementsAt(ctx context.Context, location string) ([]models.Placement, error) {
	var placements []models.Placement
	if err := c.getJSON(ctx, &placements, "api", "produtos", "localizacao", location); err != nil {
		return nil, err
	}
	return placements, nil
}

// Stock places a copy of a master row on a shelf.
func (c *Client) Stock(ctx context.Context, barcode, location string) (models.Placement, error) {
	in := struct {
		Barcode  string `json:"codigo"`
		Location string `json:"localizacao"`
	}{barcode, location}
	var out struct {
		Placement models.Placement `json:"produto"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, in, &out, "api", "adicionar-produto"); err != nil {
		return models.Placement{}, err
	}
	return out.Placement, nil
}

// ReplaceShelf swaps the contents of a shelf for the given barcodes.
func (c *Client) ReplaceShelf(ctx context.Context, location string, barcodes []string) ([]models.Placement, error) {
	in := struct {
		Barcodes []string `json:"produtos"`
		Location string   `json:"localizacao"`
	}{barcodes, location}
	var out struct {
		Placements []models.Placement `json:"produtos"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, in, &out, "api", "substituir-produtos-prateleira"); err != nil {
		return nil, err
	}
	return out.Placements, nil
}

// DeletePlacement removes one placement.
func (c *Client) DeletePlacement(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("api", "produto", id), nil)
	if err != nil {
		return err
	}
	return c.do(req, "", nil)
}

// Relocate moves one placement to another shelf.
func (c *Client) Relocate(ctx context.Context, id, location string) error {
	in := struct {
		Location string `json:"localizacao"`
	}{location}
	return c.sendJSON(ctx, http.MethodPut, in, nil, "api", "produto", id, "localizacao")
}

// Search joins a barcode's master row with its placements.
func (c *Client) Search(ctx context.Context, barcode string) (*models.StockLookup, error) {
	var res models.StockLookup
	if err := c.getJSON(ctx, &res, "api", "buscar", barcode); err != nil {
		return nil, err
	}
	return &res, nil
}

// SearchByRCT joins an rct code's master row with its placements.
func (c *Client) SearchByRCT(ctx context.Context, rct string) (*models.StockLookup, error) {
	var res models.StockLookup
	if err := c.getJSON(ctx, &res, "api", "buscar", "rct", rct); err != nil {
		return nil, err
	}
	return &res, nil
}
