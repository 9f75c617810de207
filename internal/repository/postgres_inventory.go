package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/GophStore/internal/models"
	"github.com/google/uuid"
)

const (
	itemColumns      = `id, codigo, rct, preco_tabela, preco_promocao, saldo, localizacao`
	placementColumns = itemColumns + `, data_adicao, data_atualizacao`
)

func scanItem(row rowScanner) (models.InventoryItem, error) {
	var (
		it    models.InventoryItem
		saldo sql.NullInt64
	)
	err := row.Scan(&it.ID, &it.Barcode, &it.RCT, &it.ListPrice, &it.PromoPrice, &saldo, &it.Location)
	if saldo.Valid {
		n := int(saldo.Int64)
		it.BalanceQty = &n
	}
	return it, err
}

func scanPlacement(row rowScanner) (models.Placement, error) {
	var (
		pl        models.Placement
		saldo     sql.NullInt64
		relocated sql.NullTime
	)
	err := row.Scan(&pl.ID, &pl.Barcode, &pl.RCT, &pl.ListPrice, &pl.PromoPrice, &saldo, &pl.Location,
		&pl.AddedAt, &relocated)
	if saldo.Valid {
		n := int(saldo.Int64)
		pl.BalanceQty = &n
	}
	if relocated.Valid {
		pl.RelocatedAt = &relocated.Time
	}
	return pl, err
}

func (g *PostgresGateway) findItem(ctx context.Context, column, value string) (*models.InventoryItem, error) {
	it, err := scanItem(g.DB.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE `+column+` = $1 LIMIT 1`, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find inventory item: %w", err)
	}
	return &it, nil
}

// FindItemByBarcode fetches the master row for a barcode.
func (g *PostgresGateway) FindItemByBarcode(ctx context.Context, barcode string) (*models.InventoryItem, error) {
	return g.findItem(ctx, "codigo", barcode)
}

// FindItemByRCT fetches the first master row with the given RCT.
func (g *PostgresGateway) FindItemByRCT(ctx context.Context, rct string) (*models.InventoryItem, error) {
	return g.findItem(ctx, "rct", rct)
}

// ListItems returns the whole master table.
func (g *PostgresGateway) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	rows, err := g.DB.QueryContext(ctx, `SELECT `+itemColumns+` FROM inventory_items ORDER BY codigo`)
	if err != nil {
		return nil, fmt.Errorf("ListItems: %w", err)
	}
	defer rows.Close()

	items := []models.InventoryItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (g *PostgresGateway) queryPlacements(ctx context.Context, where string, args ...any) ([]models.Placement, error) {
	rows, err := g.DB.QueryContext(ctx,
		`SELECT `+placementColumns+` FROM inventory_placements `+where+` ORDER BY data_adicao`, args...)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	placements := []models.Placement{}
	for rows.Next() {
		pl, err := scanPlacement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		placements = append(placements, pl)
	}
	return placements, rows.Err()
}

// ListPlacements returns every stocked placement.
func (g *PostgresGateway) ListPlacements(ctx context.Context) ([]models.Placement, error) {
	return g.queryPlacements(ctx, "")
}

// ListPlacementsByLocation returns the placements on one shelf.
func (g *PostgresGateway) ListPlacementsByLocation(ctx context.Context, location string) ([]models.Placement, error) {
	return g.queryPlacements(ctx, `WHERE localizacao = $1`, location)
}

// ListPlacementsByBarcode returns the placements of one barcode.
func (g *PostgresGateway) ListPlacementsByBarcode(ctx context.Context, barcode string) ([]models.Placement, error) {
	return g.queryPlacements(ctx, `WHERE codigo = $1`, barcode)
}

func insertPlacement(ctx context.Context, db execer, pl models.Placement) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO inventory_placements (`+placementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, pl.ID, pl.Barcode, pl.RCT, pl.ListPrice, pl.PromoPrice, nullInt(pl.BalanceQty), pl.Location,
		pl.AddedAt, pl.RelocatedAt)
	return err
}

// AddPlacement stores a new placement and returns its id.
func (g *PostgresGateway) AddPlacement(ctx context.Context, pl models.Placement) (string, error) {
	pl.ID = uuid.NewString()
	if err := insertPlacement(ctx, g.DB, pl); err != nil {
		return "", fmt.Errorf("AddPlacement: %w", err)
	}
	return pl.ID, nil
}

// ReplaceShelf deletes the placements at location and inserts the new ones
// within a single transaction.
func (g *PostgresGateway) ReplaceShelf(ctx context.Context, location string, placements []models.Placement) error {
	tx, err := g.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_placements WHERE localizacao = $1`, location); err != nil {
		return fmt.Errorf("clear shelf: %w", err)
	}
	for i := range placements {
		placements[i].ID = uuid.NewString()
		placements[i].Location = location
		if err := insertPlacement(ctx, tx, placements[i]); err != nil {
			return fmt.Errorf("insert placement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeletePlacement removes one placement.
func (g *PostgresGateway) DeletePlacement(ctx context.Context, id string) error {
	res, err := g.DB.ExecContext(ctx, `DELETE FROM inventory_placements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeletePlacement: %w", err)
	}
	return expectOne(res)
}

// RelocatePlacement moves a placement to another shelf.
func (g *PostgresGateway) RelocatePlacement(ctx context.Context, id, location string, at time.Time) error {
	res, err := g.DB.ExecContext(ctx,
		`UPDATE inventory_placements SET localizacao = $2, data_atualizacao = $3 WHERE id = $1`,
		id, location, at)
	if err != nil {
		return fmt.Errorf("RelocatePlacement: %w", err)
	}
	return expectOne(res)
}
