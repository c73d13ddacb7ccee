package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsTransient(fmt.Errorf("read: %w", &pgconn.PgError{Code: "40P01"})))
	assert.True(t, IsTransient(driver.ErrBadConn))
	assert.False(t, IsTransient(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsTransient(errors.New("syntax error")))
	assert.False(t, IsTransient(nil))
}

func TestWithReadRetry_RetriesTransientOnly(t *testing.T) {
	calls := 0
	err := withReadRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	permanent := errors.New("permanent")
	err = withReadRetry(context.Background(), func() error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithReadRetry_GivesUpAfterBound(t *testing.T) {
	calls := 0
	err := withReadRetry(context.Background(), func() error {
		calls++
		return driver.ErrBadConn
	})
	assert.ErrorIs(t, err, driver.ErrBadConn)
	assert.Equal(t, readAttempts, calls)
}

func TestPaginate(t *testing.T) {
	off, size := paginate(0, 0)
	assert.Equal(t, 0, off)
	assert.Equal(t, 100, size)

	off, size = paginate(3, 20)
	assert.Equal(t, 40, off)
	assert.Equal(t, 20, size)

	_, size = paginate(1, 1000)
	assert.Equal(t, 100, size)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: table_sessions.table_id")))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, IsUniqueViolation(nil))
}
