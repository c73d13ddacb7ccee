package service

import (
	"context"
	"errors"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/metrics"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/worker"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// StockNotifier receives committed stock changes (worker.Notifier in production).
type StockNotifier interface {
	StockChanged(ctx context.Context, events []worker.StockEvent)
}

type noopNotifier struct{}

func (noopNotifier) StockChanged(context.Context, []worker.StockEvent) {}

func notifierOrNoop(n StockNotifier) StockNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// publishStock reports committed movements. Must only run after commit.
func publishStock(ctx context.Context, n StockNotifier, events []worker.StockEvent) {
	if len(events) == 0 {
		return
	}
	for _, ev := range events {
		metrics.RecordMovement(ev.MovementType)
	}
	n.StockChanged(ctx, events)
}

// notFound converts gorm.ErrRecordNotFound into a NotFoundError for entity.
func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(entity)
	}
	return err
}

// isDuplicate reports a unique-constraint violation, translated by GORM or raw
// from the driver.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || repository.IsUniqueViolation(err)
}
