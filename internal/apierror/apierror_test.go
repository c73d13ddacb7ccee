package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validationf("quantity must be positive"), http.StatusUnprocessableEntity},
		{"conflict", Conflictf("session is not ACTIVE"), http.StatusConflict},
		{"stock", InsufficientStock("Cola", 0), http.StatusConflict},
		{"not found", NotFound("table"), http.StatusNotFound},
		{"forbidden", Forbiddenf("company mismatch"), http.StatusForbidden},
		{"unauthorized", Unauthorizedf("invalid credentials"), http.StatusUnauthorized},
		{"wrapped", fmt.Errorf("tx: %w", Conflictf("busy")), http.StatusConflict},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestInsufficientStock_CarriesAvailable(t *testing.T) {
	err := fmt.Errorf("track items: %w", InsufficientStock("Cola", 3))

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "3 available")

	n, ok := AvailableQuantity(err)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = AvailableQuantity(NotFound("item"))
	assert.False(t, ok)
}

func TestIsDomain(t *testing.T) {
	assert.True(t, IsDomain(NotFound("order")))
	assert.False(t, IsDomain(errors.New("boom")))
}
