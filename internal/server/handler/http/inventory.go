package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/GophStore/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// InventoryService defines the legacy inventory operations required by the InventoryHandler.
type InventoryService interface {
	ItemByBarcode(ctx context.Context, barcode string) (*models.InventoryItem, error)
	ItemByRCT(ctx context.Context, rct string) (*models.InventoryItem, error)
	Items(ctx context.Context) ([]models.InventoryItem, error)
	Placements(ctx context.Context) ([]models.Placement, error)
	PlacementsAt(ctx context.Context, location string) ([]models.Placement, error)
	Stock(ctx context.Context, barcode, location string) (models.Placement, error)
	ReplaceShelf(ctx context.Context, location string, barcodes []string) ([]models.Placement, error)
	RemovePlacement(ctx context.Context, id string) error
	Relocate(ctx context.Context, id, location string) error
	SearchByBarcode(ctx context.Context, barcode string) (*models.StockLookup, error)
	SearchByRCT(ctx context.Context, rct string) (*models.StockLookup, error)
}

// InventoryHandler serves the legacy barcode inventory endpoints. Request
// and response keys keep their historical names.
type InventoryHandler struct {
	InventoryService InventoryService
	Log              *zap.Logger
}

// StockRequest is the payload of POST /api/adicionar-produto.
type StockRequest struct {
	Barcode  string `json:"codigo"`
	Location string `json:"localizacao"`
}

// StockResponse is returned after a placement is added.
type StockResponse struct {
	Success   bool             `json:"success"`
	ID        string           `json:"id"`
	Placement models.Placement `json:"produto"`
}

// ShelfRequest is the payload of POST /api/substituir-produtos-prateleira.
type ShelfRequest struct {
	Barcodes []string `json:"produtos"`
	Location string   `json:"localizacao"`
}

// ShelfResponse is returned after a shelf is replaced.
type ShelfResponse struct {
	Success    bool               `json:"success"`
	Added      int                `json:"produtosAdicionados"`
	Placements []models.Placement `json:"produtos"`
}

// RelocateRequest is the payload of PUT /api/produto/{id}/localizacao.
type RelocateRequest struct {
	Location string `json:"localizacao"`
}

// Item handles GET /api/produto/{codigo}. The segment shares its route
// node with DELETE /api/produto/{id}.
func (h *InventoryHandler) Item(w http.ResponseWriter, r *http.Request) {
	it, err := h.InventoryService.ItemByBarcode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// ItemByRCT handles GET /api/produto/rct/{rct}.
func (h *InventoryHandler) ItemByRCT(w http.ResponseWriter, r *http.Request) {
	it, err := h.InventoryService.ItemByRCT(r.Context(), chi.URLParam(r, "rct"))
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// Items handles GET /api/produtos-total.
func (h *InventoryHandler) Items(w http.ResponseWriter, r *http.Request) {
	items, err := h.InventoryService.Items(r.Context())
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Placements handles GET /api/produtos.
func (h *InventoryHandler) Placements(w http.ResponseWriter, r *http.Request) {
	placements, err := h.InventoryService.Placements(r.Context())
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placements)
}

// PlacementsAt handles GET /api/produtos/localizacao/{localizacao}.
func (h *InventoryHandler) PlacementsAt(w http.ResponseWriter, r *http.Request) {
	placements, err := h.InventoryService.PlacementsAt(r.Context(), chi.URLParam(r, "localizacao"))
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placements)
}

// Stock handles POST /api/adicionar-produto.
func (h *InventoryHandler) Stock(w http.ResponseWriter, r *http.Request) {
	var req StockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}

	pl, err := h.InventoryService.Stock(r.Context(), req.Barcode, req.Location)
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StockResponse{Success: true, ID: pl.ID, Placement: pl})
}

// ReplaceShelf handles POST /api/substituir-produtos-prateleira.
func (h *InventoryHandler) ReplaceShelf(w http.ResponseWriter, r *http.Request) {
	var req ShelfRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}

	placements, err := h.InventoryService.ReplaceShelf(r.Context(), req.Location, req.Barcodes)
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ShelfResponse{Success: true, Added: len(placements), Placements: placements})
}

// DeletePlacement handles DELETE /api/produto/{id}.
func (h *InventoryHandler) DeletePlacement(w http.ResponseWriter, r *http.Request) {
	if err := h.InventoryService.RemovePlacement(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "placement removed"})
}

// Relocate handles PUT /api/produto/{id}/localizacao.
func (h *InventoryHandler) Relocate(w http.ResponseWriter, r *http.Request) {
	var req RelocateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}

	if err := h.InventoryService.Relocate(r.Context(), chi.URLParam(r, "id"), req.Location); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "location updated"})
}

// Search handles GET /api/buscar/{codigo}.
func (h *InventoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	res, err := h.InventoryService.SearchByBarcode(r.Context(), chi.URLParam(r, "codigo"))
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SearchByRCT handles GET /api/buscar/rct/{rct}.
func (h *InventoryHandler) SearchByRCT(w http.ResponseWriter, r *http.Request) {
	res, err := h.InventoryService.SearchByRCT(r.Context(), chi.URLParam(r, "rct"))
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
