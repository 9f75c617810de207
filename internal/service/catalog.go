package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/GophStore/internal/models"
)

// CatalogRepository defines the persistence operations needed by the CatalogService.
type CatalogRepository interface {
	GetStore(ctx context.Context, id string) (*models.Store, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByStore(ctx context.Context, storeID string) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// CatalogService manages the defective product listings. Every write is
// checked against the store that owns the listing.
type CatalogService struct {
	repo CatalogRepository
	now  func() time.Time
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// List returns every listing.
func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListProducts(ctx)
}

// ListByStore returns the listings of one store.
func (s *CatalogService) ListByStore(ctx context.Context, storeID string) ([]models.Product, error) {
	return s.repo.ListProductsByStore(ctx, storeID)
}

func missing(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// requireFields reports the first field a new listing lacks.
func requireFields(p models.ProductPatch) error {
	switch {
	case missing(p.Name):
		return models.NewValidationError("name", "name is required")
	case missing(p.Defect):
		return models.NewValidationError("defect", "defect is required")
	case missing(p.RCT):
		return models.NewValidationError("rct", "rct is required")
	case p.OriginalPrice == nil:
		return models.NewValidationError("originalPrice", "original price is required")
	case p.FinalPrice == nil:
		return models.NewValidationError("finalPrice", "final price is required")
	case missing(p.StoreID):
		return models.NewValidationError("storeId", "store is required")
	}
	return nil
}

// Create adds a listing for the store named in the patch. callerStoreID must
// be that store. The image is optional.
func (s *CatalogService) Create(ctx context.Context, callerStoreID string, patch models.ProductPatch, image *models.Image) (*models.Product, error) {
	if err := requireFields(patch); err != nil {
		return nil, err
	}
	if *patch.StoreID != callerStoreID {
		return nil, models.ErrForbidden
	}
	if _, err := s.repo.GetStore(ctx, *patch.StoreID); err != nil {
		return nil, err
	}

	now := s.now()
	p := &models.Product{StoreID: *patch.StoreID, CreatedAt: now, UpdatedAt: now}
	patch.Apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if image != nil {
		p.Image = image.DataURL()
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// owned loads a listing and checks that callerStoreID owns it.
func (s *CatalogService) owned(ctx context.Context, callerStoreID, id string) (*models.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.StoreID != callerStoreID {
		return nil, models.ErrForbidden
	}
	return p, nil
}

// Update merges the submitted fields into an existing listing. The image is
// replaced only when a new one is supplied; the owning store never changes.
func (s *CatalogService) Update(ctx context.Context, callerStoreID, id string, patch models.ProductPatch, image *models.Image) (*models.Product, error) {
	p, err := s.owned(ctx, callerStoreID, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if image != nil {
		p.Image = image.DataURL()
	}
	p.UpdatedAt = s.now()

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a listing owned by callerStoreID.
func (s *CatalogService) Delete(ctx context.Context, callerStoreID, id string) error {
	if _, err := s.owned(ctx, callerStoreID, id); err != nil {
		return err
	}
	return s.repo.DeleteProduct(ctx, id)
}
