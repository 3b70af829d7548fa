package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/dmaidana/burger_kiosk/internal/service/search"
	"github.com/dmaidana/burger_kiosk/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHandler) SearchProducts(c echo.Context) error {
	if h.ES == nil {
		return fail(c, http.StatusServiceUnavailable, "La búsqueda no está disponible", nil)
	}

	query := c.QueryParam("q")
	if query == "" {
		return fail(c, http.StatusBadRequest, "el parámetro q es obligatorio", nil)
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, products, err := search.Search(c.Request().Context(), h.ES, h.Index, query, from, limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error al buscar productos", err)
	}
	return ok(c, http.StatusOK, map[string]any{
		"total":     total,
		"productos": products,
	})
}
