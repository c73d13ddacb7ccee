//go:build integration

package router

// Full-stack tests against real PostgreSQL + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/config"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/infra"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ── Suite setup ───────────────────────────────────────────────────────────────

func newIntegrationEnv(t *testing.T) (*apiEnv, *redis.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("billar_test"),
		tcPostgres.WithUsername("billar"),
		tcPostgres.WithPassword("billar"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := infra.NewDatabase(pgURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(rdURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	company := &model.Company{ID: uuid.New(), Name: "Cue Club", Timezone: "UTC"}
	require.NoError(t, db.Create(company).Error)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)

	env := &apiEnv{t: t, engine: New(runCtx, cfg, db, rdb, nil), db: db, company: company}
	env.seedUser("admin", "admin-pass", model.RoleAdmin)
	env.seedUser("seller", "seller-pass", model.RoleSeller)
	return env, rdb
}

// ── Tests ─────────────────────────────────────────────────────────────────────

// Concurrent tracking against one item never oversells: the row lock
// serializes read-validate-write per item.
func TestIntegration_ConcurrentTrackingDoesNotOversell(t *testing.T) {
	env, _ := newIntegrationEnv(t)
	admin := env.login("admin", "admin-pass").AccessToken
	seller := env.login("seller", "seller-pass").AccessToken

	w := env.do(http.MethodPost, "/v1/inventory-items", map[string]any{
		"name": "Cola", "price": "2.00", "criticalThreshold": 0, "initialQuantity": 5,
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[dto.ItemResponse](t, w)

	var sessions []string
	for i := 0; i < 4; i++ {
		w = env.do(http.MethodPost, "/v1/tables", map[string]any{"name": uuid.NewString()[:8], "hourlyRate": "10"}, admin)
		require.Equal(t, http.StatusCreated, w.Code)
		table := decode[dto.TableResponse](t, w)
		w = env.do(http.MethodPost, "/v1/table-sessions", map[string]any{"tableId": table.ID}, seller)
		require.Equal(t, http.StatusCreated, w.Code)
		sessions = append(sessions, decode[dto.SessionResponse](t, w).ID)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(sid string) {
			defer wg.Done()
			w := env.do(http.MethodPost, "/v1/table-sessions/"+sid+"/tracked-items", map[string]any{
				"items": []map[string]any{{"itemId": item.ID, "quantity": 1}},
			}, seller)
			mu.Lock()
			defer mu.Unlock()
			switch w.Code {
			case http.StatusCreated:
				ok++
			case http.StatusConflict:
				fail++
			}
		}(sessions[i%len(sessions)])
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 7, fail)

	w = env.do(http.MethodGet, "/v1/inventory-items/"+item.ID+"/ledger", nil, seller)
	require.Equal(t, http.StatusOK, w.Code)
	ledger := decode[dto.LedgerCheckResponse](t, w)
	assert.Equal(t, 0, ledger.Quantity)
	assert.True(t, ledger.Consistent)
}

// Concurrent ends of one session: exactly one wins.
func TestIntegration_ConcurrentEnd(t *testing.T) {
	env, _ := newIntegrationEnv(t)
	admin := env.login("admin", "admin-pass").AccessToken
	seller := env.login("seller", "seller-pass").AccessToken

	w := env.do(http.MethodPost, "/v1/tables", map[string]any{"name": "T1", "hourlyRate": "10"}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	table := decode[dto.TableResponse](t, w)
	w = env.do(http.MethodPost, "/v1/table-sessions", map[string]any{"tableId": table.ID}, seller)
	require.Equal(t, http.StatusCreated, w.Code)
	sid := decode[dto.SessionResponse](t, w).ID

	codes := make(chan int, 6)
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- env.do(http.MethodPatch, "/v1/table-sessions/"+sid+"/end", nil, seller).Code
		}()
	}
	wg.Wait()
	close(codes)

	counts := map[int]int{}
	for c := range codes {
		counts[c]++
	}
	assert.Equal(t, 1, counts[http.StatusOK])
	assert.Equal(t, 5, counts[http.StatusConflict])

	w = env.do(http.MethodGet, "/v1/tables/"+table.ID, nil, seller)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.TableStatusAvailable, decode[dto.TableResponse](t, w).Status)
}

// Committed movements are published on the company's stock channel.
func TestIntegration_StockEventsArePublished(t *testing.T) {
	env, rdb := newIntegrationEnv(t)
	admin := env.login("admin", "admin-pass").AccessToken

	w := env.do(http.MethodPost, "/v1/inventory-items", map[string]any{
		"name": "Chalk", "price": "1.00", "criticalThreshold": 2,
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	item := decode[dto.ItemResponse](t, w)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	events, err := worker.NewNotifier(rdb, nil).Subscribe(ctx, env.company.ID)
	require.NoError(t, err)

	w = env.do(http.MethodPost, "/v1/stock-movements", map[string]any{
		"itemId": item.ID, "type": "PURCHASE", "quantity": 4, "costPrice": "0.50",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	select {
	case ev := <-events:
		assert.Equal(t, item.ID, ev.ItemID.String())
		assert.Equal(t, model.MovementPurchase, ev.MovementType)
		assert.Equal(t, 4, ev.Quantity)
	case <-ctx.Done():
		t.Fatal("no stock event received")
	}
}
