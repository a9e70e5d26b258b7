package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bossnova23/shopify-tracker/internal/database"
	"github.com/bossnova23/shopify-tracker/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repository struct {
	db *database.DB
}

func New(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Tx exposes the writes that must run inside a transaction.
type Tx struct {
	tx *sql.Tx
	db *database.DB
}

// Stores

const storeColumns = `id, domain, track_start, total_sales, week_sales`

func scanStore(row interface{ Scan(...any) error }) (*models.Store, error) {
	var s models.Store
	if err := row.Scan(&s.ID, &s.Domain, &s.TrackStart, &s.TotalSales, &s.WeekSales); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func getStoreByDomain(ctx context.Context, q querier, db *database.DB, domain string) (*models.Store, error) {
	return scanStore(q.QueryRowContext(ctx,
		db.Rebind(`SELECT `+storeColumns+` FROM stores WHERE domain = ?`), domain))
}

func (r *Repository) GetStoreByDomain(ctx context.Context, domain string) (*models.Store, error) {
	return getStoreByDomain(ctx, r.db, r.db, domain)
}

// GetOrCreateStore returns the store for domain, creating it with zeroed
// aggregates when it does not exist yet. Concurrent callers converge on the
// same row.
func (t *Tx) GetOrCreateStore(ctx context.Context, domain, trackStart string) (*models.Store, error) {
	_, err := t.tx.ExecContext(ctx,
		t.db.Rebind(`INSERT INTO stores (domain, track_start) VALUES (?, ?) ON CONFLICT (domain) DO NOTHING`),
		domain, trackStart)
	if err != nil {
		return nil, err
	}
	return getStoreByDomain(ctx, t.tx, t.db, domain)
}

// Products

const productColumns = `p.id, p.store_id, p.handle, p.title, p.image, p.price, p.bought, p.post,
       p.total_price, p.total_sales, p.track_start`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	var image, price, bought, post sql.NullString
	err := row.Scan(&p.ID, &p.StoreID, &p.Handle, &p.Title, &image, &price, &bought, &post,
		&p.TotalPrice, &p.TotalSales, &p.TrackStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Image = image.String
	p.Price = price.String
	p.Bought = bought.String
	p.Post = post.String
	return &p, nil
}

func (r *Repository) GetProduct(ctx context.Context, storeID int64, handle string) (*models.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, r.db.Rebind(`
		SELECT `+productColumns+`
		FROM products p
		WHERE p.store_id = ? AND p.handle = ?
	`), storeID, handle))
}

// FindProduct looks a product up by its store's domain.
func (r *Repository) FindProduct(ctx context.Context, domain, handle string) (*models.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, r.db.Rebind(`
		SELECT `+productColumns+`
		FROM products p
		JOIN stores s ON p.store_id = s.id
		WHERE s.domain = ? AND p.handle = ?
	`), domain, handle))
}

func (r *Repository) GetProductsByStore(ctx context.Context, storeID int64) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
		SELECT `+productColumns+`
		FROM products p
		WHERE p.store_id = ?
		ORDER BY p.id
	`), storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// CreateProduct inserts p and sets its ID. ErrDuplicate is returned when the
// store already tracks a product with the same handle.
func (t *Tx) CreateProduct(ctx context.Context, p *models.Product) error {
	err := t.tx.QueryRowContext(ctx, t.db.Rebind(`
		INSERT INTO products (store_id, handle, title, image, price, bought, post,
		                      total_price, total_sales, track_start)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (store_id, handle) DO NOTHING
		RETURNING id
	`), p.StoreID, p.Handle, p.Title, p.Image, p.Price, p.Bought, p.Post,
		p.TotalPrice, p.TotalSales, p.TrackStart).Scan(&p.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDuplicate
	}
	if err != nil && IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}
