package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryPolicy{Attempts: 3, Backoff: time.Millisecond}

func countStores(t *testing.T, repo *Repository) int {
	t.Helper()
	var n int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM stores`).Scan(&n))
	return n
}

func TestWithRetryTransientExhaustsAttempts(t *testing.T) {
	repo := newTestRepo(t)
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}

	calls := 0
	err := repo.WithRetry(context.Background(), fastRetry, func(ctx context.Context, tx *Tx) error {
		calls++
		if _, err := tx.GetOrCreateStore(ctx, fmt.Sprintf("s%d.myshopify.com", calls), "10-15-26"); err != nil {
			return err
		}
		return busy
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, errors.Is(err, busy) || IsTransient(err))
	assert.Zero(t, countStores(t, repo), "every attempt must be rolled back")
}

func TestWithRetryPermanentFailsFast(t *testing.T) {
	repo := newTestRepo(t)
	permanent := errors.New("validation failed")

	calls := 0
	err := repo.WithRetry(context.Background(), fastRetry, func(ctx context.Context, tx *Tx) error {
		calls++
		if _, err := tx.GetOrCreateStore(ctx, "example.myshopify.com", "10-15-26"); err != nil {
			return err
		}
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
	assert.Zero(t, countStores(t, repo))
}

func TestWithRetryRecoversAfterTransient(t *testing.T) {
	repo := newTestRepo(t)

	calls := 0
	err := repo.WithRetry(context.Background(), fastRetry, func(ctx context.Context, tx *Tx) error {
		calls++
		if _, err := tx.GetOrCreateStore(ctx, "example.myshopify.com", "10-15-26"); err != nil {
			return err
		}
		if calls < 2 {
			return driver.ErrBadConn
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, countStores(t, repo))
}

func TestWithRetrySingleAttemptPolicy(t *testing.T) {
	repo := newTestRepo(t)

	calls := 0
	err := repo.WithRetry(context.Background(), RetryPolicy{Attempts: 1}, func(ctx context.Context, tx *Tx) error {
		calls++
		return sqlite3.Error{Code: sqlite3.ErrLocked}
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := repo.WithRetry(ctx, RetryPolicy{Attempts: 3, Backoff: time.Hour}, func(ctx context.Context, tx *Tx) error {
		calls++
		cancel()
		return sqlite3.Error{Code: sqlite3.ErrBusy}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRollsBackOnPanic(t *testing.T) {
	repo := newTestRepo(t)

	assert.Panics(t, func() {
		_ = repo.WithRetry(context.Background(), fastRetry, func(ctx context.Context, tx *Tx) error {
			if _, err := tx.GetOrCreateStore(ctx, "example.myshopify.com", "10-15-26"); err != nil {
				return err
			}
			panic("boom")
		})
	})
	assert.Zero(t, countStores(t, repo))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "bad conn", err: fmt.Errorf("query: %w", driver.ErrBadConn), want: true},
		{name: "sqlite busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: true},
		{name: "sqlite locked", err: sqlite3.Error{Code: sqlite3.ErrLocked}, want: true},
		{name: "sqlite constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, want: false},
		{name: "pg serialization", err: &pgconn.PgError{Code: "40001"}, want: true},
		{name: "pg deadlock", err: &pgconn.PgError{Code: "40P01"}, want: true},
		{name: "pg connection failure", err: &pgconn.PgError{Code: "08006"}, want: true},
		{name: "pg unique violation", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "plain", err: errors.New("nope"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("nope")))
}
