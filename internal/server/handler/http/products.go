package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/GophStore/internal/middleware"
	"github.com/atinyakov/GophStore/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogService defines the listing operations required by the ProductHandler.
type CatalogService interface {
	List(ctx context.Context) ([]models.Product, error)
	ListByStore(ctx context.Context, storeID string) ([]models.Product, error)
	Create(ctx context.Context, callerStoreID string, patch models.ProductPatch, image *models.Image) (*models.Product, error)
	Update(ctx context.Context, callerStoreID, id string, patch models.ProductPatch, image *models.Image) (*models.Product, error)
	Delete(ctx context.Context, callerStoreID, id string) error
}

// ProductHandler serves the defective product listings.
// Writes run behind middleware.StoreAuth.
type ProductHandler struct {
	CatalogService CatalogService
	Log            *zap.Logger
}

// ProductResponse wraps a created or updated listing.
type ProductResponse struct {
	Success bool            `json:"success"`
	Product *models.Product `json:"product"`
}

// MessageResponse acknowledges a write with no payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// List handles GET /api/defective-products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.CatalogService.List(r.Context())
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// ListByStore handles GET /api/defective-products/store/{storeId}.
func (h *ProductHandler) ListByStore(w http.ResponseWriter, r *http.Request) {
	products, err := h.CatalogService.ListByStore(r.Context(), chi.URLParam(r, "storeId"))
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Create handles POST /api/defective-products and answers 200 with the new listing.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	patch, img, err := parseProductForm(w, r)
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}

	caller := middleware.GetStoreIDFromContext(r.Context())
	p, err := h.CatalogService.Create(r.Context(), caller, patch, img)
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProductResponse{Success: true, Product: p})
}

// Update handles PUT /api/defective-products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	patch, img, err := parseProductForm(w, r)
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}

	caller := middleware.GetStoreIDFromContext(r.Context())
	p, err := h.CatalogService.Update(r.Context(), caller, chi.URLParam(r, "id"), patch, img)
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProductResponse{Success: true, Product: p})
}

// Delete handles DELETE /api/defective-products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetStoreIDFromContext(r.Context())
	if err := h.CatalogService.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "product deleted"})
}
