package service

import (
	"sync"
	"testing"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCost(t *testing.T) {
	start := time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		rate    *decimal.Decimal
		elapsed time.Duration
		want    string
	}{
		{"ninety minutes at 10", decPtr("10.00"), 90 * time.Minute, "15"},
		{"fractional hours are not rounded up", decPtr("12.00"), 25 * time.Minute, "5"},
		{"rounded to cents", decPtr("10.00"), 61 * time.Second, "0.17"},
		{"nil rate", nil, 2 * time.Hour, "0"},
		{"zero rate", decPtr("0"), 2 * time.Hour, "0"},
		{"end before start", decPtr("10.00"), -time.Minute, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SessionCost(tc.rate, start, start.Add(tc.elapsed))
			assert.True(t, dec(tc.want).Equal(got), "got %s want %s", got, tc.want)
		})
	}
}

// Scenario A: rate 10.00, ended 90 minutes after start → 15.00.
func TestEndSession_BillsElapsedTime(t *testing.T) {
	f := newFixture(t)
	tbl := f.newTable("Table 1", decPtr("10.00"))

	s := f.startSession(tbl)
	occupied, err := f.tables.Get(f.ctx, f.admin, tbl.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TableStatusOccupied, occupied.Status)

	f.advance(90 * time.Minute)
	ended, err := f.sessions.End(f.ctx, f.seller, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, ended.Status)
	require.NotNil(t, ended.TotalCost)
	assert.True(t, dec("15.00").Equal(*ended.TotalCost), "total %s", ended.TotalCost)
	require.NotNil(t, ended.EndedAt)
	assert.True(t, f.now.Equal(*ended.EndedAt))

	got, running, err := f.sessions.Get(f.ctx, f.seller, s.ID)
	require.NoError(t, err)
	assert.Nil(t, running)
	assert.Equal(t, model.SessionCompleted, got.Status)

	freed, err := f.tables.Get(f.ctx, f.admin, tbl.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TableStatusAvailable, freed.Status)
}

func TestGetSession_RunningCostPreview(t *testing.T) {
	f := newFixture(t)
	tbl := f.newTable("Table 1", decPtr("8.00"))
	s := f.startSession(tbl)

	f.advance(30 * time.Minute)
	_, running, err := f.sessions.Get(f.ctx, f.seller, s.ID)
	require.NoError(t, err)
	require.NotNil(t, running)
	assert.True(t, dec("4").Equal(*running))
}

func TestStartSession_Rules(t *testing.T) {
	f := newFixture(t)
	tbl := f.newTable("Table 1", decPtr("10.00"))

	future := f.now.Add(time.Minute)
	_, err := f.sessions.Start(f.ctx, f.seller, StartSessionInput{TableID: tbl.ID, StartedAt: &future})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	backdated := f.now.Add(-20 * time.Minute)
	s, err := f.sessions.Start(f.ctx, f.seller, StartSessionInput{TableID: tbl.ID, StartedAt: &backdated})
	require.NoError(t, err)
	assert.True(t, backdated.Equal(s.StartedAt))
	require.NotNil(t, s.StaffID)
	assert.Equal(t, f.seller.UserID, *s.StaffID)

	_, err = f.sessions.Start(f.ctx, f.seller, StartSessionInput{TableID: tbl.ID})
	assert.ErrorIs(t, err, apierror.ErrConflict)

	maint := f.newTable("Table 2", nil)
	status := model.TableStatusMaintenance
	_, err = f.tables.Update(f.ctx, f.admin, maint.ID, dto.UpdateTableRequest{Status: &status})
	require.NoError(t, err)
	_, err = f.sessions.Start(f.ctx, f.seller, StartSessionInput{TableID: maint.ID})
	assert.ErrorIs(t, err, apierror.ErrConflict)
}

func TestCancelSession_NoCharge(t *testing.T) {
	f := newFixture(t)
	tbl := f.newTable("Table 1", decPtr("10.00"))
	s := f.startSession(tbl)
	f.advance(time.Hour)

	cancelled, err := f.sessions.Cancel(f.ctx, f.seller, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCancelled, cancelled.Status)
	assert.Nil(t, cancelled.TotalCost)

	_, err = f.sessions.End(f.ctx, f.seller, s.ID)
	assert.ErrorIs(t, err, apierror.ErrConflict)

	// The table is free for the next rental.
	next := f.startSession(tbl)
	assert.NotEqual(t, s.ID, next.ID)
}

func TestCloseSession_ConcurrentCallersOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	tbl := f.newTable("Table 1", decPtr("10.00"))
	s := f.startSession(tbl)
	f.advance(time.Hour)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = f.sessions.End(f.ctx, f.seller, s.ID)
			} else {
				_, err = f.sessions.Cancel(f.ctx, f.seller, s.ID)
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case apierror.HTTPStatus(err) == 409:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 5, conflicts)
}

func TestTableUpdate_CannotLeaveOccupied(t *testing.T) {
	f := newFixture(t)
	tbl := f.newTable("Table 1", decPtr("10.00"))
	f.startSession(tbl)

	status := model.TableStatusAvailable
	_, err := f.tables.Update(f.ctx, f.admin, tbl.ID, dto.UpdateTableRequest{Status: &status})
	assert.ErrorIs(t, err, apierror.ErrConflict)

	rate := dec("12.00")
	updated, err := f.tables.Update(f.ctx, f.admin, tbl.ID, dto.UpdateTableRequest{HourlyRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, model.TableStatusOccupied, updated.Status)
}

func TestListSessions_FiltersByStatus(t *testing.T) {
	f := newFixture(t)
	a := f.startSession(f.newTable("A", nil))
	f.startSession(f.newTable("B", nil))
	_, err := f.sessions.End(f.ctx, f.seller, a.ID)
	require.NoError(t, err)

	active, total, err := f.sessions.List(f.ctx, f.seller, nil, repository.SessionFilter{Status: model.SessionActive})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, active, 1)
}
