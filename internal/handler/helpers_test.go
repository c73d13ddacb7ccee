package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderLines_TaggedVariants(t *testing.T) {
	itemID := uuid.New()
	trackedID := uuid.New()
	tid := trackedID.String()

	lines, err := orderLines([]dto.OrderLineRequest{
		{ItemID: itemID.String(), Quantity: 2, UnitPrice: decimal.NewFromInt(3), IsTrackedItem: true},
		{TrackedItemID: &tid, Quantity: 1, UnitPrice: decimal.NewFromInt(3)},
		{ItemID: itemID.String(), Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)
	require.Len(t, lines, 3)

	first, ok := lines[0].(service.TrackedLine)
	require.True(t, ok)
	assert.Equal(t, itemID, first.ItemID)
	assert.Equal(t, uuid.Nil, first.TrackedItemID)

	second, ok := lines[1].(service.TrackedLine)
	require.True(t, ok)
	assert.Equal(t, trackedID, second.TrackedItemID)

	third, ok := lines[2].(service.NewLine)
	require.True(t, ok)
	assert.Equal(t, 1, third.Quantity)
}

func TestOrderLines_MissingIDs(t *testing.T) {
	_, err := orderLines([]dto.OrderLineRequest{{Quantity: 1, IsTrackedItem: true}})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	_, err = orderLines([]dto.OrderLineRequest{{Quantity: 1}})
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"conflict", apierror.Conflictf("session is not ACTIVE"), http.StatusConflict, `{"detail":"session is not ACTIVE"}`},
		{"stock", apierror.InsufficientStock("Cola", 0), http.StatusConflict, `{"detail":"insufficient stock for Cola: 0 available"}`},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError, `{"detail":"internal server error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			respondError(c, tc.err)
			assert.Equal(t, tc.code, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestActorFrom_NoClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := actorFrom(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
