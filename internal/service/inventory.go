package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/GophStore/internal/models"
)

// InventoryRepository defines the persistence operations needed by the InventoryService.
type InventoryRepository interface {
	FindItemByBarcode(ctx context.Context, barcode string) (*models.InventoryItem, error)
	FindItemByRCT(ctx context.Context, rct string) (*models.InventoryItem, error)
	ListItems(ctx context.Context) ([]models.InventoryItem, error)
	ListPlacements(ctx context.Context) ([]models.Placement, error)
	ListPlacementsByLocation(ctx context.Context, location string) ([]models.Placement, error)
	ListPlacementsByBarcode(ctx context.Context, barcode string) ([]models.Placement, error)
	AddPlacement(ctx context.Context, pl models.Placement) (string, error)
	ReplaceShelf(ctx context.Context, location string, placements []models.Placement) error
	DeletePlacement(ctx context.Context, id string) error
	RelocatePlacement(ctx context.Context, id, location string, at time.Time) error
}

// InventoryService serves the legacy barcode master table and its shelf placements.
type InventoryService struct {
	repo InventoryRepository
	now  func() time.Time
}

// NewInventoryService constructs an InventoryService.
func NewInventoryService(repo InventoryRepository) *InventoryService {
	return &InventoryService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *InventoryService) ItemByBarcode(ctx context.Context, barcode string) (*models.InventoryItem, error) {
	return s.repo.FindItemByBarcode(ctx, barcode)
}

func (s *InventoryService) ItemByRCT(ctx context.Context, rct string) (*models.InventoryItem, error) {
	return s.repo.FindItemByRCT(ctx, rct)
}

func (s *InventoryService) Items(ctx context.Context) ([]models.InventoryItem, error) {
	return s.repo.ListItems(ctx)
}

func (s *InventoryService) Placements(ctx context.Context) ([]models.Placement, error) {
	return s.repo.ListPlacements(ctx)
}

func (s *InventoryService) PlacementsAt(ctx context.Context, location string) ([]models.Placement, error) {
	return s.repo.ListPlacementsByLocation(ctx, location)
}

// Stock copies the master row of barcode onto the shelf at location and
// returns the new placement with its id.
func (s *InventoryService) Stock(ctx context.Context, barcode, location string) (models.Placement, error) {
	if strings.TrimSpace(barcode) == "" {
		return models.Placement{}, models.NewValidationError("codigo", "barcode is required")
	}
	item, err := s.repo.FindItemByBarcode(ctx, barcode)
	if err != nil {
		return models.Placement{}, err
	}

	pl := item.PlaceAt(location, s.now())
	id, err := s.repo.AddPlacement(ctx, pl)
	if err != nil {
		return models.Placement{}, fmt.Errorf("add placement: %w", err)
	}
	pl.ID = id
	return pl, nil
}

// ReplaceShelf replaces everything at location with one placement per barcode.
// Every barcode is resolved first; if any is unknown the shelf is left untouched.
func (s *InventoryService) ReplaceShelf(ctx context.Context, location string, barcodes []string) ([]models.Placement, error) {
	if len(barcodes) == 0 {
		return nil, models.NewValidationError("produtos", "product list is required")
	}
	if strings.TrimSpace(location) == "" {
		return nil, models.NewValidationError("localizacao", "location is required")
	}

	now := s.now()
	placements := make([]models.Placement, 0, len(barcodes))
	for _, code := range barcodes {
		item, err := s.repo.FindItemByBarcode(ctx, code)
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("barcode %s: %w", code, models.ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		placements = append(placements, item.PlaceAt(location, now))
	}

	if err := s.repo.ReplaceShelf(ctx, location, placements); err != nil {
		return nil, fmt.Errorf("replace shelf: %w", err)
	}
	return placements, nil
}

func (s *InventoryService) RemovePlacement(ctx context.Context, id string) error {
	return s.repo.DeletePlacement(ctx, id)
}

// Relocate moves a placement to another shelf and stamps the move.
func (s *InventoryService) Relocate(ctx context.Context, id, location string) error {
	if strings.TrimSpace(location) == "" {
		return models.NewValidationError("localizacao", "location is required")
	}
	return s.repo.RelocatePlacement(ctx, id, location, s.now())
}

// SearchByBarcode joins the master row with its placements. A barcode with no
// master row still answers, with a nil master.
func (s *InventoryService) SearchByBarcode(ctx context.Context, barcode string) (*models.StockLookup, error) {
	placements, err := s.repo.ListPlacementsByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	master, err := s.repo.FindItemByBarcode(ctx, barcode)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	return &models.StockLookup{Master: master, Placements: placements, Quantity: len(placements)}, nil
}

// SearchByRCT resolves the master row by RCT and joins its placements.
func (s *InventoryService) SearchByRCT(ctx context.Context, rct string) (*models.StockLookup, error) {
	master, err := s.repo.FindItemByRCT(ctx, rct)
	if err != nil {
		return nil, err
	}
	placements, err := s.repo.ListPlacementsByBarcode(ctx, master.Barcode)
	if err != nil {
		return nil, err
	}
	return &models.StockLookup{Master: master, Placements: placements, Quantity: len(placements)}, nil
}
