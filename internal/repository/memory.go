package repository

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/atinyakov/GophStore/internal/models"
	"github.com/google/uuid"
)

// MemoryGateway keeps everything in process memory. It is the fallback when
// no database is configured or reachable, and nothing survives a restart.
type MemoryGateway struct {
	mu         sync.RWMutex
	stores     []models.Store
	products   []models.Product
	items      []models.InventoryItem
	placements []models.Placement
}

// NewMemoryGateway creates a MemoryGateway seeded with the default data set.
// Seed stores get the ids "1" to "4".
func NewMemoryGateway(h Hasher) (*MemoryGateway, error) {
	stores, err := DefaultStores(h)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(stores))
	for i := range stores {
		stores[i].ID = strconv.Itoa(i + 1)
		ids[i] = stores[i].ID
	}

	products := DefaultProducts(ids, time.Now().UTC())
	for i := range products {
		products[i].ID = uuid.NewString()
	}

	items := DefaultInventory()
	for i := range items {
		items[i].ID = uuid.NewString()
	}

	return &MemoryGateway{stores: stores, products: products, items: items}, nil
}

func (g *MemoryGateway) Name() string { return "memory" }

func (g *MemoryGateway) Ping(context.Context) error { return nil }

func (g *MemoryGateway) Close(context.Context) error { return nil }

func (g *MemoryGateway) ListStores(context.Context) ([]models.Store, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]models.Store{}, g.stores...), nil
}

func (g *MemoryGateway) GetStore(_ context.Context, id string) (*models.Store, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, s := range g.stores {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, models.ErrNotFound
}

func (g *MemoryGateway) ListProducts(context.Context) ([]models.Product, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]models.Product{}, g.products...), nil
}

func (g *MemoryGateway) ListProductsByStore(_ context.Context, storeID string) ([]models.Product, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := []models.Product{}
	for _, p := range g.products {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (g *MemoryGateway) GetProduct(_ context.Context, id string) (*models.Product, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i := g.productIndex(id)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	p := g.products[i]
	return &p, nil
}

func (g *MemoryGateway) CreateProduct(_ context.Context, p *models.Product) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p.ID = uuid.NewString()
	g.products = append(g.products, *p)
	return nil
}

func (g *MemoryGateway) UpdateProduct(_ context.Context, p *models.Product) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.productIndex(p.ID)
	if i < 0 {
		return models.ErrNotFound
	}
	g.products[i] = *p
	return nil
}

func (g *MemoryGateway) DeleteProduct(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.productIndex(id)
	if i < 0 {
		return models.ErrNotFound
	}
	g.products = append(g.products[:i], g.products[i+1:]...)
	return nil
}

// productIndex must be called with mu held.
func (g *MemoryGateway) productIndex(id string) int {
	for i := range g.products {
		if g.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *MemoryGateway) FindItemByBarcode(_ context.Context, barcode string) (*models.InventoryItem, error) {
	return g.findItem(func(it models.InventoryItem) bool { return it.Barcode == barcode })
}

func (g *MemoryGateway) FindItemByRCT(_ context.Context, rct string) (*models.InventoryItem, error) {
	return g.findItem(func(it models.InventoryItem) bool { return it.RCT == rct })
}

func (g *MemoryGateway) findItem(match func(models.InventoryItem) bool) (*models.InventoryItem, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, it := range g.items {
		if match(it) {
			it := it
			return &it, nil
		}
	}
	return nil, models.ErrNotFound
}

func (g *MemoryGateway) ListItems(context.Context) ([]models.InventoryItem, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]models.InventoryItem{}, g.items...), nil
}

func (g *MemoryGateway) ListPlacements(context.Context) ([]models.Placement, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]models.Placement{}, g.placements...), nil
}

func (g *MemoryGateway) ListPlacementsByLocation(_ context.Context, location string) ([]models.Placement, error) {
	return g.filterPlacements(func(pl models.Placement) bool { return pl.Location == location }), nil
}

func (g *MemoryGateway) ListPlacementsByBarcode(_ context.Context, barcode string) ([]models.Placement, error) {
	return g.filterPlacements(func(pl models.Placement) bool { return pl.Barcode == barcode }), nil
}

func (g *MemoryGateway) filterPlacements(match func(models.Placement) bool) []models.Placement {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := []models.Placement{}
	for _, pl := range g.placements {
		if match(pl) {
			out = append(out, pl)
		}
	}
	return out
}

func (g *MemoryGateway) AddPlacement(_ context.Context, pl models.Placement) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pl.ID = uuid.NewString()
	g.placements = append(g.placements, pl)
	return pl.ID, nil
}

func (g *MemoryGateway) ReplaceShelf(_ context.Context, location string, placements []models.Placement) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.placements[:0:0]
	for _, pl := range g.placements {
		if pl.Location != location {
			kept = append(kept, pl)
		}
	}
	for i := range placements {
		placements[i].ID = uuid.NewString()
		placements[i].Location = location
		kept = append(kept, placements[i])
	}
	g.placements = kept
	return nil
}

func (g *MemoryGateway) DeletePlacement(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.placements {
		if g.placements[i].ID == id {
			g.placements = append(g.placements[:i], g.placements[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (g *MemoryGateway) RelocatePlacement(_ context.Context, id, location string, at time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.placements {
		if g.placements[i].ID == id {
			g.placements[i].Location = location
			g.placements[i].RelocatedAt = &at
			return nil
		}
	}
	return models.ErrNotFound
}
