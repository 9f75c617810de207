// Package db opens and prepares the databases behind the storage gateways.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const schema = `
CREATE TABLE IF NOT EXISTS stores (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS defective_products (
    id TEXT PRIMARY KEY,
    store_id TEXT NOT NULL REFERENCES stores(id),
    name TEXT NOT NULL,
    defect TEXT NOT NULL,
    rct TEXT NOT NULL,
    original_price DOUBLE PRECISION NOT NULL,
    promotional_price DOUBLE PRECISION,
    final_price DOUBLE PRECISION NOT NULL CHECK (final_price > 0),
    image TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS inventory_items (
    id TEXT PRIMARY KEY,
    codigo TEXT NOT NULL UNIQUE,
    rct TEXT NOT NULL,
    preco_tabela DOUBLE PRECISION NOT NULL,
    preco_promocao DOUBLE PRECISION NOT NULL,
    saldo INTEGER,
    localizacao TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS inventory_placements (
    id TEXT PRIMARY KEY,
    codigo TEXT NOT NULL,
    rct TEXT NOT NULL,
    preco_tabela DOUBLE PRECISION NOT NULL,
    preco_promocao DOUBLE PRECISION NOT NULL,
    saldo INTEGER,
    localizacao TEXT NOT NULL,
    data_adicao TIMESTAMPTZ NOT NULL,
    data_atualizacao TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS inventory_placements_localizacao_idx ON inventory_placements (localizacao);
`

// InitPostgres opens a PostgreSQL connection, verifies it and applies the schema.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// InitMongo connects to MongoDB and verifies the connection within timeout.
func InitMongo(ctx context.Context, uri, database string, timeout time.Duration) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, client.Database(database), nil
}
