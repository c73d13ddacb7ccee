package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boring-ventures/billar-sub000/internal/config"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/infra"
	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

// ── Helpers ───────────────────────────────────────────────────────────────────

type apiEnv struct {
	t       *testing.T
	engine  *gin.Engine
	db      *gorm.DB
	company *model.Company
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := infra.NewSQLiteDatabase("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	company := &model.Company{ID: uuid.New(), Name: "Cue Club", Timezone: "UTC"}
	require.NoError(t, db.Create(company).Error)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	env := &apiEnv{t: t, engine: New(ctx, cfg, db, nil, nil), db: db, company: company}
	env.seedUser("admin", "admin-pass", model.RoleAdmin)
	env.seedUser("seller", "seller-pass", model.RoleSeller)
	return env
}

func (e *apiEnv) seedUser(username, password, role string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(e.t, err)
	require.NoError(e.t, e.db.Create(&model.User{
		ID:           uuid.New(),
		CompanyID:    e.company.ID,
		Username:     username,
		Name:         username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}).Error)
}

func (e *apiEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) login(username, password string) dto.LoginResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/v1/auth/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func TestAuth_LoginAndRefresh(t *testing.T) {
	env := newAPIEnv(t)

	tokens := env.login("admin", "admin-pass")
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, "bearer", tokens.TokenType)
	assert.Equal(t, model.RoleAdmin, tokens.User.Role)
	assert.Equal(t, env.company.ID.String(), tokens.User.CompanyID)

	w := env.do(http.MethodPost, "/v1/auth/login", map[string]string{"username": "admin", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A refresh token is not an access token.
	w = env.do(http.MethodGet, "/v1/tables", nil, tokens.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/v1/auth/refresh", map[string]string{"refreshToken": tokens.RefreshToken}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[dto.LoginResponse](t, w).AccessToken)

	w = env.do(http.MethodPost, "/v1/auth/refresh", map[string]string{"refreshToken": tokens.AccessToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ShortPasswordIsValidationError(t *testing.T) {
	env := newAPIEnv(t)
	w := env.do(http.MethodPost, "/v1/auth/login", map[string]string{"username": "admin", "password": "12"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ── Role gating ───────────────────────────────────────────────────────────────

func TestRoleGating(t *testing.T) {
	env := newAPIEnv(t)
	seller := env.login("seller", "seller-pass").AccessToken
	admin := env.login("admin", "admin-pass").AccessToken

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/v1/tables", "", http.StatusUnauthorized},
		{"seller reads tables", http.MethodGet, "/v1/tables", seller, http.StatusOK},
		{"seller cannot list expenses", http.MethodGet, "/v1/expenses", seller, http.StatusForbidden},
		{"seller cannot record movements", http.MethodPost, "/v1/stock-movements", seller, http.StatusForbidden},
		{"seller cannot delete orders", http.MethodDelete, "/v1/pos-orders/" + uuid.NewString(), seller, http.StatusForbidden},
		{"admin cannot list companies", http.MethodGet, "/v1/companies", admin, http.StatusForbidden},
		{"admin lists expenses", http.MethodGet, "/v1/expenses", admin, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, env.do(tc.method, tc.path, nil, tc.token).Code)
		})
	}
}

// ── Session checkout over HTTP ────────────────────────────────────────────────

func TestCheckoutFlow(t *testing.T) {
	env := newAPIEnv(t)
	admin := env.login("admin", "admin-pass").AccessToken
	seller := env.login("seller", "seller-pass").AccessToken

	w := env.do(http.MethodPost, "/v1/tables", map[string]any{"name": "Table 1", "hourlyRate": "10.00"}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	table := decode[dto.TableResponse](t, w)

	w = env.do(http.MethodPost, "/v1/inventory-items", map[string]any{
		"name": "Cola", "price": "2.50", "criticalThreshold": 1, "initialQuantity": 5,
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[dto.ItemResponse](t, w)
	assert.Equal(t, 5, item.Quantity)

	w = env.do(http.MethodPost, "/v1/table-sessions", map[string]any{"tableId": table.ID}, seller)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := decode[dto.SessionResponse](t, w)
	assert.Equal(t, model.SessionActive, session.Status)

	// Second start on the same table conflicts.
	w = env.do(http.MethodPost, "/v1/table-sessions", map[string]any{"tableId": table.ID}, seller)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPost, "/v1/table-sessions/"+session.ID+"/tracked-items", map[string]any{
		"items": []map[string]any{{"itemId": item.ID, "quantity": 3}},
	}, seller)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodPost, "/v1/table-sessions/"+session.ID+"/tracked-items", map[string]any{
		"items": []map[string]any{{"itemId": item.ID, "quantity": 3}},
	}, seller)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "2 available")

	w = env.do(http.MethodGet, "/v1/table-sessions/"+session.ID+"/availability", nil, seller)
	require.Equal(t, http.StatusOK, w.Code)
	avail := decode[[]dto.AvailabilityResponse](t, w)
	require.Len(t, avail, 1)
	assert.Equal(t, 2, avail[0].OnHand)
	assert.Equal(t, 3, avail[0].Tracked)
	assert.Equal(t, 5, avail[0].EffectiveAvailable)

	w = env.do(http.MethodPatch, "/v1/table-sessions/"+session.ID+"/end", nil, seller)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.SessionCompleted, decode[dto.SessionResponse](t, w).Status)

	w = env.do(http.MethodPost, "/v1/pos-orders", map[string]any{
		"tableSessionId": session.ID,
		"paymentMethod":  "CASH",
		"paymentStatus":  "UNPAID",
		"items": []map[string]any{
			{"itemId": item.ID, "quantity": 3, "unitPrice": "2.50", "isTrackedItem": true},
			{"itemId": item.ID, "quantity": 1, "unitPrice": "2.50"},
		},
	}, seller)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[dto.OrderResponse](t, w)
	assert.True(t, decimal.RequireFromString("10.00").Equal(order.Amount), order.Amount.String())
	assert.Len(t, order.Items, 2)

	// Only the new line was deducted at checkout.
	w = env.do(http.MethodGet, "/v1/inventory-items/"+item.ID, nil, seller)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.ItemResponse](t, w).Quantity)

	w = env.do(http.MethodPatch, "/v1/pos-orders/"+order.ID, map[string]any{"paymentStatus": "PAID"}, seller)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.PaymentPaid, decode[dto.OrderResponse](t, w).PaymentStatus)

	w = env.do(http.MethodDelete, "/v1/pos-orders/"+order.ID, nil, admin)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/v1/inventory-items/"+item.ID+"/ledger", nil, seller)
	require.Equal(t, http.StatusOK, w.Code)
	ledger := decode[dto.LedgerCheckResponse](t, w)
	assert.True(t, ledger.Consistent)
	assert.Equal(t, 2, ledger.Quantity)
}

func TestValidationAndNotFound(t *testing.T) {
	env := newAPIEnv(t)
	seller := env.login("seller", "seller-pass").AccessToken

	w := env.do(http.MethodPost, "/v1/table-sessions", map[string]any{"tableId": "not-a-uuid"}, seller)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodPost, "/v1/table-sessions", map[string]any{"tableId": uuid.NewString()}, seller)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/v1/table-sessions/nope", nil, seller)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/v1/pos-orders", map[string]any{
		"paymentMethod": "CASH",
		"paymentStatus": "PAID",
		"items":         []map[string]any{{"quantity": 1, "unitPrice": "1.00"}},
	}, seller)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodGet, "/v1/inventory-items/events", nil, seller)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// ── Observability ─────────────────────────────────────────────────────────────

func TestHealthAndMetrics(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])

	w = env.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "billar_http_requests_total")
}
