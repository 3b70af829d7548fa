package handlers

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/dmaidana/burger_kiosk/internal/models"
	"github.com/dmaidana/burger_kiosk/internal/service/order"
)

func newCatalogHandler(t *testing.T) *CatalogHandler {
	db := initTestDB(t)
	return &CatalogHandler{DB: db, Pricing: order.NewService(db, slog.Default())}
}

func TestGetProducts(t *testing.T) {
	h := newCatalogHandler(t)
	e := echo.New()

	req, rec := jsonRequest(http.MethodGet, "/api/productos", nil)
	c := e.NewContext(req, rec)

	require.NoError(t, h.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.Equal(t, "OK", env.Status)

	data := env.Data.(map[string]any)
	products := data["productos"].([]any)
	require.Len(t, products, 2)

	first := products[0].(map[string]any)
	require.Equal(t, "Clásica", first["nombre"])
	require.Equal(t, "Hamburguesas", first["categoria"])

	meta := data["meta"].(map[string]any)
	require.Equal(t, float64(2), meta["total"])
}

func TestGetProductWithBaseIngredients(t *testing.T) {
	h := newCatalogHandler(t)
	e := echo.New()

	require.NoError(t, h.DB.Create(&models.ProductIngredient{ProductID: 1, IngredientID: 1, Cantidad: 1}).Error)

	req, rec := jsonRequest(http.MethodGet, "/api/productos/1", nil)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	product := data["producto"].(map[string]any)
	require.Equal(t, "Clásica", product["nombre"])

	base := data["ingredientes_base"].([]any)
	require.Len(t, base, 1)
	require.Equal(t, "Cheddar", base[0].(map[string]any)["nombre"])
}

func TestGetProductNotFound(t *testing.T) {
	h := newCatalogHandler(t)
	e := echo.New()

	req, rec := jsonRequest(http.MethodGet, "/api/productos/99", nil)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProductsByCategory(t *testing.T) {
	h := newCatalogHandler(t)
	e := echo.New()

	req, rec := jsonRequest(http.MethodGet, "/api/productos/categoria/hamburguesas", nil)
	c := e.NewContext(req, rec)
	c.SetParamNames("categoria")
	c.SetParamValues("hamburguesas")

	require.NoError(t, h.GetProductsByCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	req, rec = jsonRequest(http.MethodGet, "/api/productos/categoria/postres", nil)
	c = e.NewContext(req, rec)
	c.SetParamNames("categoria")
	c.SetParamValues("postres")

	require.NoError(t, h.GetProductsByCategory(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalculatePrice(t *testing.T) {
	h := newCatalogHandler(t)
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/api/productos/2/calcular-precio", map[string]any{
		"ingredientes_personalizados": []map[string]any{
			{"id_ingrediente": 1, "cantidad": 2, "es_extra": true},
		},
	})
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("2")

	require.NoError(t, h.CalculatePrice(c))
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	require.Equal(t, float64(2900), data["precio_total"])
	require.Len(t, data["detalle_precios"].([]any), 2)
}
