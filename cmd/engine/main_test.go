package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
	"github.com/Victor-armando18/marketplace-rules/internal/domain/discount"
	"github.com/Victor-armando18/marketplace-rules/internal/infrastructure"
	"github.com/Victor-armando18/marketplace-rules/internal/usecase"
)

func patchContext(t *testing.T, id uint64, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/discounts/"+strconv.FormatUint(id, 10), strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetPath("/discounts/:id")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(id, 10))
	return c, rec
}

func TestHandlePatchDiscount(t *testing.T) {
	snap := &domain.BasketSnapshot{
		StoreID:  1,
		Products: []domain.ProductLine{{ProductID: 200, StoreID: 1, Price: 30.0, Amount: 2}},
	}

	t.Run("rejected patch keeps the original discount", func(t *testing.T) {
		engine := usecase.NewEngineService(infrastructure.AllowAllCatalog{}, nil, zerolog.Nop())
		id, err := engine.AddDiscount(1, discount.Spec{Type: "store", Percentage: 0.10})
		require.NoError(t, err)

		body := `{"storeId":1,"original":{"type":"store","percentage":0.10},"patch":[{"op":"replace","path":"/percentage","value":1.5}]}`
		c, rec := patchContext(t, id, body)
		require.NoError(t, handlePatchDiscount(engine)(c))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		savings, _ := engine.EvaluateDiscounts(context.Background(), snap)
		require.InDelta(t, 6.0, savings, 1e-9, "original node still active")
		require.True(t, engine.RemoveDiscount(id))
	})

	t.Run("valid patch swaps the node", func(t *testing.T) {
		engine := usecase.NewEngineService(infrastructure.AllowAllCatalog{}, nil, zerolog.Nop())
		id, err := engine.AddDiscount(1, discount.Spec{Type: "store", Percentage: 0.10})
		require.NoError(t, err)

		body := `{"storeId":1,"original":{"type":"store","percentage":0.10},"patch":[{"op":"replace","path":"/percentage","value":0.25}]}`
		c, rec := patchContext(t, id, body)
		require.NoError(t, handlePatchDiscount(engine)(c))
		require.Equal(t, http.StatusOK, rec.Code)

		savings, _ := engine.EvaluateDiscounts(context.Background(), snap)
		require.InDelta(t, 15.0, savings, 1e-9)
		require.False(t, engine.RemoveDiscount(id), "old id is retired")
	})

	t.Run("unknown id rolls the rebuilt node back", func(t *testing.T) {
		engine := usecase.NewEngineService(infrastructure.AllowAllCatalog{}, nil, zerolog.Nop())

		body := `{"storeId":1,"original":{"type":"store","percentage":0.10},"patch":[]}`
		c, rec := patchContext(t, 42, body)
		require.NoError(t, handlePatchDiscount(engine)(c))
		require.Equal(t, http.StatusNotFound, rec.Code)

		savings, _ := engine.EvaluateDiscounts(context.Background(), snap)
		require.Zero(t, savings, "nothing left registered")
	})
}
