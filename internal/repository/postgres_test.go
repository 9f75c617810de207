package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/GophStore/internal/models"
)

func setupMock(t *testing.T) (*PostgresGateway, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	gw := NewPostgresGateway(db)
	cleanup := func() {
		db.Close()
	}
	return gw, mock, cleanup
}

var productCols = []string{"id", "store_id", "name", "defect", "rct", "original_price",
	"promotional_price", "final_price", "image", "created_at", "updated_at"}

func TestPostgresGetStore(t *testing.T) {
	gw, mock, cleanup := setupMock(t)
	defer cleanup()

	q := regexp.QuoteMeta(`SELECT id, name, password_hash FROM stores WHERE id = $1`)
	mock.ExpectQuery(q).WithArgs("1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "password_hash"}).AddRow("1", "TechStore", "h"))
	mock.ExpectQuery(q).WithArgs("9").WillReturnError(sql.ErrNoRows)

	s, err := gw.GetStore(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "TechStore" || s.PasswordHash != "h" {
		t.Errorf("unexpected store %+v", s)
	}

	if _, err := gw.GetStore(context.Background(), "9"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresListProductsByStore(t *testing.T) {
	gw, mock, cleanup := setupMock(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(productCols).
		AddRow("p1", "1", "TV", "remote", "TV-1", 3200.0, 2800.0, 2400.0, "", now, now).
		AddRow("p2", "1", "Fone", "box", "FN-1", 350.0, nil, 220.0, "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM defective_products WHERE store_id = $1`)).
		WithArgs("1").
		WillReturnRows(rows)

	products, err := gw.ListProductsByStore(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].PromotionalPrice == nil || *products[0].PromotionalPrice != 2800 {
		t.Errorf("promotional price not scanned: %+v", products[0])
	}
	if products[1].PromotionalPrice != nil {
		t.Errorf("expected nil promotional price, got %v", *products[1].PromotionalPrice)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresListProducts_Error(t *testing.T) {
	gw, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM defective_products ORDER BY created_at`)).
		WillReturnError(errors.New("query fail"))

	_, err := gw.ListProducts(context.Background())
	if err == nil || !regexp.MustCompile(`ListProducts`).MatchString(err.Error()) {
		t.Errorf("expected ListProducts error, got %v", err)
	}
}

func TestPostgresCreateProduct(t *testing.T) {
	gw, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO defective_products`)).
		WithArgs(sqlmock.AnyArg(), "1", "TV", "remote", "TV-1", 3200.0, sql.NullFloat64{}, 2400.0, "",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	p := &models.Product{Name: "TV", Defect: "remote", RCT: "TV-1", OriginalPrice: 3200, FinalPrice: 2400, StoreID: "1"}
	if err := gw.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" {
		t.Error("expected id to be assigned")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresUpdateAndDeleteProduct_NotFound(t *testing.T) {
	gw, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE defective_products`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM defective_products WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	if err := gw.UpdateProduct(ctx, &models.Product{ID: "missing", FinalPrice: 1}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("update: expected ErrNotFound, got %v", err)
	}
	if err := gw.DeleteProduct(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresFindItemByBarcode(t *testing.T) {
	gw, mock, cleanup := setupMock(t)
	defer cleanup()

	cols := []string{"id", "codigo", "rct", "preco_tabela", "preco_promocao", "saldo", "localizacao"}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM inventory_items WHERE codigo = $1`)).
		WithArgs("4066756633288").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("i1", "4066756633288", "002760MWTPPT44", 349.99, 100.0, int64(5), ""))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM inventory_items WHERE codigo = $1`)).
		WithArgs("000").
		WillReturnError(sql.ErrNoRows)

	it, err := gw.FindItemByBarcode(context.Background(), "4066756633288")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.BalanceQty == nil || *it.BalanceQty != 5 {
		t.Errorf("saldo not scanned: %+v", it)
	}
	if _, err := gw.FindItemByBarcode(context.Background(), "000"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresReplaceShelf_Success(t *testing.T) {
	gw, mock, cleanup := setupMock(t)
	defer cleanup()

	now := time.Now().UTC()
	item := models.InventoryItem{Barcode: "0054871712197", RCT: "002240WFSHPT34", ListPrice: 499.99}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM inventory_placements WHERE localizacao = $1`)).
		WithArgs("A1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO inventory_placements`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO inventory_placements`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	placements := []models.Placement{item.PlaceAt("A1", now), item.PlaceAt("A1", now)}
	if err := gw.ReplaceShelf(context.Background(), "A1", placements); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if placements[0].ID == "" || placements[1].ID == "" || placements[0].ID == placements[1].ID {
		t.Errorf("placement ids = %q, %q; want two distinct ids", placements[0].ID, placements[1].ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresReplaceShelf_RollbackOnInsertError(t *testing.T) {
	gw, mock, cleanup := setupMock(t)
	defer cleanup()

	item := models.InventoryItem{Barcode: "0054871712197"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM inventory_placements WHERE localizacao = $1`)).
		WithArgs("A1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO inventory_placements`)).
		WillReturnError(errors.New("insert fail"))
	mock.ExpectRollback()

	err := gw.ReplaceShelf(context.Background(), "A1", []models.Placement{item.PlaceAt("A1", time.Now())})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresRelocatePlacement(t *testing.T) {
	gw, mock, cleanup := setupMock(t)
	defer cleanup()

	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE inventory_placements SET localizacao = $2, data_atualizacao = $3 WHERE id = $1`)).
		WithArgs("pl1", "B2", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := gw.RelocatePlacement(context.Background(), "pl1", "B2", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresSeed_SkipsPopulatedTables(t *testing.T) {
	gw, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM stores`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM inventory_items`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))

	if err := gw.Seed(context.Background(), fakeHasher{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresSeed_EmptyStores(t *testing.T) {
	gw, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM stores`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	for i := 0; i < 4; i++ {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO stores`)).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	for i := 0; i < 4; i++ {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO defective_products`)).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM inventory_items`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))

	if err := gw.Seed(context.Background(), fakeHasher{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
