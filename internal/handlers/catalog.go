package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dmaidana/burger_kiosk/internal/models"
	"github.com/dmaidana/burger_kiosk/internal/service/order"
	"github.com/dmaidana/burger_kiosk/internal/util"
)

type CatalogHandler struct {
	DB      *gorm.DB
	Pricing *order.Service
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

type productView struct {
	models.Product
	Categoria string `json:"categoria"`
}

func (h *CatalogHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Product{}).Where("disponible = ?", true).Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "Error al obtener productos", err)
	}

	var items []productView
	err := h.DB.Model(&models.Product{}).
		Select("products.*, categories.nombre AS categoria").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.disponible = ?", true).
		Order("products.id ASC").
		Offset(offset).Limit(limit).
		Scan(&items).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error al obtener productos", err)
	}

	return ok(c, http.StatusOK, map[string]any{
		"productos": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

type baseIngredientView struct {
	IngredientID uint    `json:"id_ingrediente"`
	Nombre       string  `json:"nombre"`
	Descripcion  string  `json:"descripcion"`
	Precio       float64 `json:"precio"`
	Cantidad     uint    `json:"cantidad"`
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "No se encontró el producto", nil)
		}
		return fail(c, http.StatusInternalServerError, "Error al obtener el producto", err)
	}

	var base []baseIngredientView
	err = h.DB.Model(&models.ProductIngredient{}).
		Select(`ingredients.id AS ingredient_id, ingredients.nombre,
			ingredients.descripcion, ingredients.precio,
			product_ingredients.cantidad`).
		Joins("JOIN ingredients ON ingredients.id = product_ingredients.ingredient_id").
		Where("product_ingredients.product_id = ?", id).
		Order("ingredients.nombre").
		Scan(&base).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error al obtener el producto", err)
	}

	return ok(c, http.StatusOK, map[string]any{
		"producto":          product,
		"ingredientes_base": base,
	})
}

func (h *CatalogHandler) GetProductsByCategory(c echo.Context) error {
	categoria := c.Param("categoria")

	var items []productView
	err := h.DB.Model(&models.Product{}).
		Select("products.*, categories.nombre AS categoria").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("LOWER(categories.nombre) = LOWER(?) AND products.disponible = ?", categoria, true).
		Order("products.id ASC").
		Scan(&items).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error al obtener productos", err)
	}
	if len(items) == 0 {
		return fail(c, http.StatusNotFound, "No se encontraron productos en la categoría "+categoria, nil)
	}
	return ok(c, http.StatusOK, items)
}

func (h *CatalogHandler) GetCategories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Order("nombre").Find(&categories).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "Error al obtener categorías", err)
	}
	return ok(c, http.StatusOK, categories)
}

func (h *CatalogHandler) GetIngredients(c echo.Context) error {
	var ingredients []models.Ingredient
	if err := h.DB.Order("id").Find(&ingredients).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "Error al obtener ingredientes", err)
	}
	return ok(c, http.StatusOK, ingredients)
}

func (h *CatalogHandler) GetIngredient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}

	var ingredient models.Ingredient
	if err := h.DB.First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "No se encontró el ingrediente", nil)
		}
		return fail(c, http.StatusInternalServerError, "Error al obtener el ingrediente", err)
	}
	return ok(c, http.StatusOK, ingredient)
}

func (h *CatalogHandler) CalculatePrice(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}

	var req struct {
		Ingredientes []order.IngredientInput `json:"ingredientes_personalizados"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "cuerpo de la solicitud inválido", err)
	}

	quote, err := h.Pricing.PriceQuote(c.Request().Context(), id, req.Ingredientes)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return fail(c, http.StatusNotFound, err.Error(), nil)
		}
		return fail(c, http.StatusInternalServerError, "Error al calcular precio del producto", err)
	}
	return ok(c, http.StatusOK, quote)
}
