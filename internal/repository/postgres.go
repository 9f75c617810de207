package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/atinyakov/GophStore/internal/models"
	"github.com/google/uuid"
)

// PostgresGateway implements Gateway against a PostgreSQL database.
type PostgresGateway struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresGateway creates a PostgresGateway using the provided *sql.DB.
// The schema from db.InitPostgres must already be applied.
func NewPostgresGateway(db *sql.DB) *PostgresGateway {
	return &PostgresGateway{DB: db}
}

func (g *PostgresGateway) Name() string { return "postgres" }

// Ping verifies the connection is still alive.
func (g *PostgresGateway) Ping(ctx context.Context) error {
	return g.DB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (g *PostgresGateway) Close(context.Context) error {
	return g.DB.Close()
}

// Seed inserts the default stores, sample products and inventory rows when
// the corresponding tables are empty.
func (g *PostgresGateway) Seed(ctx context.Context, h Hasher) error {
	var stores int
	if err := g.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM stores`).Scan(&stores); err != nil {
		return fmt.Errorf("count stores: %w", err)
	}
	if stores == 0 {
		if err := g.seedCatalog(ctx, h); err != nil {
			return err
		}
	}

	var items int
	if err := g.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_items`).Scan(&items); err != nil {
		return fmt.Errorf("count inventory: %w", err)
	}
	if items == 0 {
		return g.seedInventory(ctx)
	}
	return nil
}

func (g *PostgresGateway) seedCatalog(ctx context.Context, h Hasher) error {
	stores, err := DefaultStores(h)
	if err != nil {
		return err
	}

	tx, err := g.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, len(stores))
	for i, s := range stores {
		ids[i] = strconv.Itoa(i + 1)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stores (id, name, password_hash) VALUES ($1, $2, $3)`,
			ids[i], s.Name, s.PasswordHash,
		); err != nil {
			return fmt.Errorf("seed store: %w", err)
		}
	}
	for _, p := range DefaultProducts(ids, time.Now().UTC()) {
		p.ID = uuid.NewString()
		if err := insertProduct(ctx, tx, &p); err != nil {
			return fmt.Errorf("seed product: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (g *PostgresGateway) seedInventory(ctx context.Context) error {
	tx, err := g.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, it := range DefaultInventory() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_items (id, codigo, rct, preco_tabela, preco_promocao, saldo, localizacao)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), it.Barcode, it.RCT, it.ListPrice, it.PromoPrice, nullInt(it.BalanceQty), it.Location); err != nil {
			return fmt.Errorf("seed inventory: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListStores returns every store ordered by id.
func (g *PostgresGateway) ListStores(ctx context.Context) ([]models.Store, error) {
	rows, err := g.DB.QueryContext(ctx, `SELECT id, name, password_hash FROM stores ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("ListStores: %w", err)
	}
	defer rows.Close()

	stores := []models.Store{}
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.PasswordHash); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// GetStore fetches a single store by id.
func (g *PostgresGateway) GetStore(ctx context.Context, id string) (*models.Store, error) {
	var s models.Store
	err := g.DB.QueryRowContext(ctx,
		`SELECT id, name, password_hash FROM stores WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetStore: %w", err)
	}
	return &s, nil
}

const productColumns = `id, store_id, name, defect, rct, original_price, promotional_price, final_price, image, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p     models.Product
		promo sql.NullFloat64
	)
	err := row.Scan(&p.ID, &p.StoreID, &p.Name, &p.Defect, &p.RCT,
		&p.OriginalPrice, &promo, &p.FinalPrice, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	if promo.Valid {
		p.PromotionalPrice = &promo.Float64
	}
	return p, err
}

func (g *PostgresGateway) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := g.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListProducts returns every listing in creation order.
func (g *PostgresGateway) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := g.queryProducts(ctx, `SELECT `+productColumns+` FROM defective_products ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("ListProducts: %w", err)
	}
	return products, nil
}

// ListProductsByStore returns the listings of one store in creation order.
func (g *PostgresGateway) ListProductsByStore(ctx context.Context, storeID string) ([]models.Product, error) {
	products, err := g.queryProducts(ctx,
		`SELECT `+productColumns+` FROM defective_products WHERE store_id = $1 ORDER BY created_at`, storeID)
	if err != nil {
		return nil, fmt.Errorf("ListProductsByStore: %w", err)
	}
	return products, nil
}

// GetProduct fetches a single listing by id.
func (g *PostgresGateway) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanProduct(g.DB.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM defective_products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetProduct: %w", err)
	}
	return &p, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertProduct(ctx context.Context, db execer, p *models.Product) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO defective_products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, p.ID, p.StoreID, p.Name, p.Defect, p.RCT, p.OriginalPrice, nullFloat(p.PromotionalPrice),
		p.FinalPrice, p.Image, p.CreatedAt, p.UpdatedAt)
	return err
}

// CreateProduct inserts p under a fresh id.
func (g *PostgresGateway) CreateProduct(ctx context.Context, p *models.Product) error {
	p.ID = uuid.NewString()
	if err := insertProduct(ctx, g.DB, p); err != nil {
		return fmt.Errorf("CreateProduct: %w", err)
	}
	return nil
}

// UpdateProduct overwrites the mutable columns of an existing listing.
func (g *PostgresGateway) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := g.DB.ExecContext(ctx, `
		UPDATE defective_products
		   SET name = $2, defect = $3, rct = $4, original_price = $5, promotional_price = $6,
		       final_price = $7, image = $8, updated_at = $9
		 WHERE id = $1
	`, p.ID, p.Name, p.Defect, p.RCT, p.OriginalPrice, nullFloat(p.PromotionalPrice),
		p.FinalPrice, p.Image, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("UpdateProduct: %w", err)
	}
	return expectOne(res)
}

// DeleteProduct removes a listing.
func (g *PostgresGateway) DeleteProduct(ctx context.Context, id string) error {
	res, err := g.DB.ExecContext(ctx, `DELETE FROM defective_products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteProduct: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
