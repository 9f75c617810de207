// Package repository provides the storage gateways behind the store catalog
// and the legacy inventory tables.
package repository

import (
	"context"
	"time"

	"github.com/atinyakov/GophStore/internal/config"
	"github.com/atinyakov/GophStore/internal/db"
	"github.com/atinyakov/GophStore/internal/models"
	"go.uber.org/zap"
)

// Gateway is the storage contract used by the services. Every implementation
// speaks canonical string ids and returns models.ErrNotFound for unknown ids.
type Gateway interface {
	// Name identifies the backend ("postgres", "mongodb", "memory").
	Name() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	ListStores(ctx context.Context) ([]models.Store, error)
	GetStore(ctx context.Context, id string) (*models.Store, error)

	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByStore(ctx context.Context, storeID string) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	// CreateProduct stores p and assigns its ID.
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error

	FindItemByBarcode(ctx context.Context, barcode string) (*models.InventoryItem, error)
	FindItemByRCT(ctx context.Context, rct string) (*models.InventoryItem, error)
	ListItems(ctx context.Context) ([]models.InventoryItem, error)
	ListPlacements(ctx context.Context) ([]models.Placement, error)
	ListPlacementsByLocation(ctx context.Context, location string) ([]models.Placement, error)
	ListPlacementsByBarcode(ctx context.Context, barcode string) ([]models.Placement, error)
	// AddPlacement stores pl and returns its new ID.
	AddPlacement(ctx context.Context, pl models.Placement) (string, error)
	// ReplaceShelf swaps every placement at location for placements and
	// sets the stored id on each of them.
	ReplaceShelf(ctx context.Context, location string, placements []models.Placement) error
	DeletePlacement(ctx context.Context, id string) error
	RelocatePlacement(ctx context.Context, id, location string, at time.Time) error
}

const connectTimeout = 10 * time.Second

// Open selects the gateway for the configured backend. PostgreSQL wins over
// MongoDB; with neither configured, or when the configured backend cannot be
// reached, an in-memory gateway is returned.
func Open(ctx context.Context, opts *config.Options, h Hasher, log *zap.Logger) (Gateway, error) {
	switch {
	case opts.DatabaseDSN != "":
		conn, err := db.InitPostgres(opts.DatabaseDSN)
		if err != nil {
			log.Error("postgres unavailable, falling back to memory", zap.Error(err))
			break
		}
		gw := NewPostgresGateway(conn)
		if err := gw.Seed(ctx, h); err != nil {
			_ = gw.Close(ctx)
			return nil, err
		}
		log.Info("using postgres storage")
		return gw, nil

	case opts.MongoURI != "":
		client, database, err := db.InitMongo(ctx, opts.MongoURI, opts.MongoDatabase, connectTimeout)
		if err != nil {
			log.Error("mongodb unavailable, falling back to memory", zap.Error(err))
			break
		}
		gw := NewMongoGateway(client, database)
		if err := gw.Migrate(ctx, h); err != nil {
			_ = gw.Close(ctx)
			return nil, err
		}
		if err := gw.Seed(ctx, h); err != nil {
			_ = gw.Close(ctx)
			return nil, err
		}
		log.Info("using mongodb storage", zap.String("database", opts.MongoDatabase))
		return gw, nil
	}

	gw, err := NewMemoryGateway(h)
	if err != nil {
		return nil, err
	}
	log.Warn("using in-memory storage; data is lost on restart")
	return gw, nil
}
