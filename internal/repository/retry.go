package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// readAttempts bounds retries of idempotent reads. Mutations are never retried
// here: a retried deduction could apply twice.
var readAttempts = 3

// SetReadAttempts configures the read retry bound (minimum 1).
func SetReadAttempts(n int) {
	if n < 1 {
		n = 1
	}
	readAttempts = n
}

// IsTransient reports whether err is a serialization failure, a deadlock or a
// dropped connection, all of which are safe to retry for a read.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
	}
	return false
}

// IsUniqueViolation reports whether err comes from a unique index (23505 on
// PostgreSQL, the constraint message on SQLite).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// withReadRetry runs fn up to readAttempts times while it fails transiently.
func withReadRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= readAttempts; attempt++ {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
		if attempt == readAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*25) * time.Millisecond):
		}
	}
	return err
}

// forUpdate locks the selected rows until the surrounding transaction ends.
// The SQLite dialector drops the clause; there the single-connection pool
// serializes transactions instead.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// paginate normalizes page/limit: default limit 100, max 500.
func paginate(page, limit int) (offset, size int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return (page - 1) * limit, limit
}
