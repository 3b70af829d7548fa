package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/dmaidana/burger_kiosk/internal/models"
)

func TestGetCouponsByDNI(t *testing.T) {
	db := initTestDB(t)
	h := &ClientHandler{DB: db}
	e := echo.New()

	expired := time.Now().AddDate(0, 0, -10)
	usedOrder := uint(42)
	coupons := []models.Coupon{
		{ClientID: 1, Codigo: "ACTIVO10", Descuento: 10},
		{ClientID: 1, Codigo: "VENCIDO20", Descuento: 20, FechaVencimiento: &expired},
		{ClientID: 1, Codigo: "USADO30", Descuento: 30, OrderID: &usedOrder},
	}
	for _, cp := range coupons {
		require.NoError(t, db.Create(&cp).Error)
	}

	req, rec := jsonRequest(http.MethodGet, "/api/cupones/clientes/30111222", nil)
	c := e.NewContext(req, rec)
	c.SetParamNames("dni")
	c.SetParamValues("30111222")

	require.NoError(t, h.GetCouponsByDNI(c))
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.Equal(t, "OK", env.Status)

	data, ok := env.Data.([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
	first := data[0].(map[string]any)
	require.Equal(t, "ACTIVO10", first["codigo"])
	require.Equal(t, "Ana García", first["cliente"])
}

func TestGetCouponsByDNINoCoupons(t *testing.T) {
	db := initTestDB(t)
	h := &ClientHandler{DB: db}
	e := echo.New()

	req, rec := jsonRequest(http.MethodGet, "/api/cupones/clientes/30111222", nil)
	c := e.NewContext(req, rec)
	c.SetParamNames("dni")
	c.SetParamValues("30111222")

	require.NoError(t, h.GetCouponsByDNI(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	env := decodeEnvelope(t, rec)
	require.Equal(t, "ERROR", env.Status)
	require.Equal(t, "No hay cupones", env.Message)

	data, ok := env.Data.([]any)
	require.True(t, ok)
	require.Empty(t, data)
}

func TestGetCouponsByDNIUnknownClient(t *testing.T) {
	db := initTestDB(t)
	h := &ClientHandler{DB: db}
	e := echo.New()

	req, rec := jsonRequest(http.MethodGet, "/api/cupones/clientes/99999999", nil)
	c := e.NewContext(req, rec)
	c.SetParamNames("dni")
	c.SetParamValues("99999999")

	require.NoError(t, h.GetCouponsByDNI(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
