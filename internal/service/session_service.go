package service

import (
	"context"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/metrics"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/tenant"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StartSessionInput opens a rental on a table. StartedAt may be backdated
// but never in the future; nil means now.
type StartSessionInput struct {
	TableID   uuid.UUID
	StaffID   *uuid.UUID
	StartedAt *time.Time
}

// TrackLine is one item consumed during a session. A nil UnitPrice captures
// the item's current price.
type TrackLine struct {
	ItemID    uuid.UUID
	Quantity  int
	UnitPrice *decimal.Decimal
}

// SessionService runs the table-session lifecycle and the tracked items
// consumed while a session is open.
type SessionService interface {
	Start(ctx context.Context, actor tenant.Actor, in StartSessionInput) (*model.TableSession, error)
	End(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.TableSession, error)
	Cancel(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.TableSession, error)
	// Get returns the session and, while it is ACTIVE, its running cost.
	Get(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.TableSession, *decimal.Decimal, error)
	List(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID, filter repository.SessionFilter) ([]model.TableSession, int64, error)

	TrackItems(ctx context.Context, actor tenant.Actor, sessionID uuid.UUID, lines []TrackLine) ([]model.TrackedItem, error)
	ListTracked(ctx context.Context, actor tenant.Actor, sessionID uuid.UUID) ([]model.TrackedItem, error)
	// UpdateTrackedQuantity returns nil when the new quantity removed the row.
	UpdateTrackedQuantity(ctx context.Context, actor tenant.Actor, sessionID, trackedID uuid.UUID, quantity int) (*model.TrackedItem, error)
	RemoveTracked(ctx context.Context, actor tenant.Actor, sessionID, trackedID uuid.UUID) error
	Availability(ctx context.Context, actor tenant.Actor, sessionID uuid.UUID) ([]dto.AvailabilityResponse, error)
}

type sessionService struct {
	sessions  repository.SessionRepository
	tables    repository.TableRepository
	inventory repository.InventoryRepository
	ledger    *stockLedger
	notifier  StockNotifier
	now       Clock
}

func NewSessionService(
	sessions repository.SessionRepository,
	tables repository.TableRepository,
	inventory repository.InventoryRepository,
	notifier StockNotifier,
	now Clock,
) SessionService {
	if now == nil {
		now = utcNow
	}
	return &sessionService{
		sessions:  sessions,
		tables:    tables,
		inventory: inventory,
		ledger:    &stockLedger{repo: inventory, now: now},
		notifier:  notifierOrNoop(notifier),
		now:       now,
	}
}

const msPerHour = 3_600_000

// SessionCost is the rental charge for [start, end): elapsed milliseconds
// converted to fractional hours times the hourly rate, rounded to cents.
// A nil rate bills nothing.
func SessionCost(rate *decimal.Decimal, start, end time.Time) decimal.Decimal {
	if rate == nil || rate.IsZero() {
		return decimal.Zero
	}
	ms := end.Sub(start).Milliseconds()
	if ms <= 0 {
		return decimal.Zero
	}
	return rate.Mul(decimal.NewFromInt(ms)).Div(decimal.NewFromInt(msPerHour)).Round(2)
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func (s *sessionService) Start(ctx context.Context, actor tenant.Actor, in StartSessionInput) (*model.TableSession, error) {
	now := s.now()
	startedAt := now
	if in.StartedAt != nil {
		if in.StartedAt.After(now) {
			return nil, apierror.Validationf("startedAt cannot be in the future")
		}
		startedAt = in.StartedAt.UTC()
	}
	staffID := in.StaffID
	if staffID == nil {
		staffID = &actor.UserID
	}

	var session *model.TableSession
	err := runTx(ctx, s.sessions.DB(), func(tx *gorm.DB) error {
		table, err := s.tables.FindByIDForUpdateTx(tx, in.TableID)
		if err != nil {
			return notFound(err, "table")
		}
		if err := actor.Owns(table.CompanyID, "table"); err != nil {
			return err
		}
		if table.Status != model.TableStatusAvailable {
			return apierror.Conflictf("table %s is %s", table.Name, table.Status)
		}

		session = &model.TableSession{
			TableID:   table.ID,
			CompanyID: table.CompanyID,
			StaffID:   staffID,
			StartedAt: startedAt,
			Status:    model.SessionActive,
		}
		if err := s.sessions.CreateTx(tx, session); err != nil {
			if isDuplicate(err) {
				return apierror.Conflictf("table %s already has an active session", table.Name)
			}
			return err
		}
		session.Table = table
		table.Status = model.TableStatusOccupied
		return s.tables.UpdateStatusTx(tx, table.ID, model.TableStatusOccupied)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("table_id", session.TableID.String()).
		Time("started_at", session.StartedAt).
		Msg("session started")
	return session, nil
}

func (s *sessionService) End(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.TableSession, error) {
	return s.close(ctx, actor, id, model.SessionCompleted)
}

func (s *sessionService) Cancel(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.TableSession, error) {
	return s.close(ctx, actor, id, model.SessionCancelled)
}

// close moves an ACTIVE session to status and frees its table. Concurrent
// closers serialize on the session row; the loser sees a non-ACTIVE status.
func (s *sessionService) close(ctx context.Context, actor tenant.Actor, id uuid.UUID, status string) (*model.TableSession, error) {
	var cost *decimal.Decimal
	err := runTx(ctx, s.sessions.DB(), func(tx *gorm.DB) error {
		session, err := s.sessions.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "session")
		}
		if err := actor.Owns(session.CompanyID, "session"); err != nil {
			return err
		}
		if session.Status != model.SessionActive {
			return apierror.Conflictf("session is %s, not ACTIVE", session.Status)
		}

		table, err := s.tables.FindByIDForUpdateTx(tx, session.TableID)
		if err != nil {
			return err
		}

		endedAt := s.now()
		if status == model.SessionCompleted {
			c := SessionCost(table.HourlyRate, session.StartedAt, endedAt)
			cost = &c
		}
		ok, err := s.sessions.CloseTx(tx, session.ID, status, endedAt, cost)
		if err != nil {
			return err
		}
		if !ok {
			return apierror.Conflictf("session is no longer ACTIVE")
		}
		return s.tables.UpdateStatusTx(tx, table.ID, model.TableStatusAvailable)
	})
	if err != nil {
		return nil, err
	}
	metrics.SessionsClosedTotal.WithLabelValues(status).Inc()

	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ev := log.Info().Str("session_id", id.String()).Str("status", status)
	if cost != nil {
		ev = ev.Str("total_cost", cost.StringFixed(2))
	}
	ev.Msg("session closed")
	return session, nil
}

// ── Read side ────────────────────────────────────────────────────────────────

func (s *sessionService) Get(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.TableSession, *decimal.Decimal, error) {
	session, err := s.find(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if session.Status != model.SessionActive || session.Table == nil {
		return session, nil, nil
	}
	running := SessionCost(session.Table.HourlyRate, session.StartedAt, s.now())
	return session, &running, nil
}

func (s *sessionService) List(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID, filter repository.SessionFilter) ([]model.TableSession, int64, error) {
	scoped, err := actor.ScopeCompany(companyID)
	if err != nil {
		return nil, 0, err
	}
	filter.CompanyID = scoped
	return s.sessions.List(ctx, filter)
}

func (s *sessionService) find(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.TableSession, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "session")
	}
	if err := actor.Owns(session.CompanyID, "session"); err != nil {
		return nil, err
	}
	return session, nil
}
