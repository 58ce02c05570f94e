// Package db provides the Postgres-backed product catalog.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/dsjohal14/shopsearch/internal/libs/accel"
	"github.com/dsjohal14/shopsearch/internal/scope/catalog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotConnected is returned when a method is called on a closed or zero DB
var ErrNotConnected = errors.New("database not connected")

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id           INTEGER PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL,
	price        DOUBLE PRECISION NOT NULL CHECK (price >= 0),
	image        TEXT NOT NULL DEFAULT '',
	rating_rate  DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (rating_rate >= 0 AND rating_rate <= 5),
	rating_count INTEGER NOT NULL DEFAULT 0 CHECK (rating_count >= 0)
);
CREATE INDEX IF NOT EXISTS products_category_idx ON products (category);
`

const upsertItem = `
INSERT INTO products (id, title, description, category, price, image, rating_rate, rating_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	category = EXCLUDED.category,
	price = EXCLUDED.price,
	image = EXCLUDED.image,
	rating_rate = EXCLUDED.rating_rate,
	rating_count = EXCLUDED.rating_count
`

const upsertBatchSize = 500

// DB wraps the database connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Ensure DB can serve as a catalog source
var _ catalog.Source = (*DB)(nil)

// New creates a new database connection
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection
func (d *DB) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

// Pool returns the underlying connection pool
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// Migrate creates the products table if it does not exist
func (d *DB) Migrate(ctx context.Context) error {
	if d.pool == nil {
		return ErrNotConnected
	}
	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// UpsertItems inserts or updates items, one pipelined batch per window of
// upsertBatchSize rows. It returns the number of rows written before any error.
func (d *DB) UpsertItems(ctx context.Context, items []catalog.Item) (int, error) {
	if d.pool == nil {
		return 0, ErrNotConnected
	}

	written := 0
	for _, w := range accel.NewBatch(upsertBatchSize).Windows(len(items)) {
		n, err := d.upsertWindow(ctx, items[w.Start:w.End])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (d *DB) upsertWindow(ctx context.Context, items []catalog.Item) (int, error) {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(upsertItem,
			it.ID, it.Title, it.Description, it.Category, it.Price,
			it.Image, it.Rating.Rate, it.Rating.Count)
	}

	br := d.pool.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	for i := range items {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("failed to upsert item %d: %w", items[i].ID, err)
		}
	}
	return len(items), nil
}

// FetchAllItems implements catalog.Source
func (d *DB) FetchAllItems(ctx context.Context) ([]catalog.Item, error) {
	if d.pool == nil {
		return nil, ErrNotConnected
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id, title, description, category, price, image, rating_rate, rating_count
		FROM products
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Item, error) {
		var it catalog.Item
		err := row.Scan(&it.ID, &it.Title, &it.Description, &it.Category, &it.Price,
			&it.Image, &it.Rating.Rate, &it.Rating.Count)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return items, nil
}

// FetchCategories implements catalog.Source
func (d *DB) FetchCategories(ctx context.Context) ([]string, error) {
	if d.pool == nil {
		return nil, ErrNotConnected
	}

	rows, err := d.pool.Query(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return categories, nil
}
