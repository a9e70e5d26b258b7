package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bossnova23/shopify-tracker/internal/config"
)

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS stores (
    id INTEGER PRIMARY KEY,
    domain TEXT NOT NULL UNIQUE,
    track_start TEXT NOT NULL,
    total_sales REAL NOT NULL DEFAULT 0,
    week_sales REAL NOT NULL DEFAULT 0
)`,
	`CREATE TABLE IF NOT EXISTS products (
    id INTEGER PRIMARY KEY,
    store_id INTEGER NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
    handle TEXT NOT NULL,
    title TEXT NOT NULL,
    image TEXT NOT NULL DEFAULT '',
    price TEXT NOT NULL DEFAULT '',
    bought TEXT NOT NULL DEFAULT '',
    post TEXT NOT NULL DEFAULT '',
    total_price REAL NOT NULL DEFAULT 0,
    total_sales REAL NOT NULL DEFAULT 0,
    track_start TEXT NOT NULL,
    UNIQUE(store_id, handle)
)`,
	`CREATE TABLE IF NOT EXISTS themes (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    style TEXT NOT NULL,
    primary_color TEXT NOT NULL,
    secondary_color TEXT NOT NULL,
    accent_color TEXT NOT NULL,
    font_primary TEXT NOT NULL,
    font_secondary TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    preview_data TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_products_store ON products(store_id)`,
	`CREATE INDEX IF NOT EXISTS idx_themes_created ON themes(created_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS stores (
    id BIGSERIAL PRIMARY KEY,
    domain TEXT NOT NULL UNIQUE,
    track_start TEXT NOT NULL,
    total_sales DOUBLE PRECISION NOT NULL DEFAULT 0,
    week_sales DOUBLE PRECISION NOT NULL DEFAULT 0
)`,
	`CREATE TABLE IF NOT EXISTS products (
    id BIGSERIAL PRIMARY KEY,
    store_id BIGINT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
    handle TEXT NOT NULL,
    title TEXT NOT NULL,
    image TEXT NOT NULL DEFAULT '',
    price TEXT NOT NULL DEFAULT '',
    bought TEXT NOT NULL DEFAULT '',
    post TEXT NOT NULL DEFAULT '',
    total_price DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_sales DOUBLE PRECISION NOT NULL DEFAULT 0,
    track_start TEXT NOT NULL,
    UNIQUE(store_id, handle)
)`,
	`CREATE TABLE IF NOT EXISTS themes (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    style VARCHAR(50) NOT NULL,
    primary_color VARCHAR(7) NOT NULL,
    secondary_color VARCHAR(7) NOT NULL,
    accent_color VARCHAR(7) NOT NULL,
    font_primary VARCHAR(100) NOT NULL,
    font_secondary VARCHAR(100) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    preview_data TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_products_store ON products(store_id)`,
	`CREATE INDEX IF NOT EXISTS idx_themes_created ON themes(created_at)`,
}

// DB is a connection pool that knows which SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open picks PostgreSQL when a database URL is configured and a SQLite file
// in the data directory otherwise.
func Open(ctx context.Context, cfg *config.Config) (*DB, error) {
	var (
		db  *DB
		err error
	)
	if cfg.UsePostgres() {
		db, err = NewPostgres(ctx, cfg.DatabaseURL)
	} else {
		db, err = New(cfg.DataDir)
	}
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

func New(dataDir string) (*DB, error) {
	if dataDir == "" {
		dataDir = "./data"
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "shopify_tracker.db")
	sqlDB, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{DB: sqlDB, Dialect: SQLite}
	if err := db.init(context.Background(), sqliteSchema); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func NewPostgres(ctx context.Context, url string) (*DB, error) {
	sqlDB, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{DB: sqlDB, Dialect: Postgres}
	if err := db.init(ctx, postgresSchema); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) init(ctx context.Context, schema []string) error {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Rebind rewrites ? placeholders into the dialect's bind syntax. Queries
// never carry a literal question mark.
func (db *DB) Rebind(query string) string {
	if db.Dialect != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
