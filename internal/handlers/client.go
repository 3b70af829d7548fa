package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dmaidana/burger_kiosk/internal/models"
)

type ClientHandler struct {
	DB *gorm.DB
}

func (h *ClientHandler) GetClients(c echo.Context) error {
	var clients []models.Client
	if err := h.DB.Order("id").Find(&clients).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "Error al obtener clientes", err)
	}
	return ok(c, http.StatusOK, clients)
}

func (h *ClientHandler) GetClient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error(), nil)
	}

	var client models.Client
	if err := h.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "No se encontró el cliente", nil)
		}
		return fail(c, http.StatusInternalServerError, "Error al obtener el cliente", err)
	}
	return ok(c, http.StatusOK, client)
}

type couponView struct {
	ID               uint    `json:"id"`
	Codigo           string  `json:"codigo"`
	Descuento        float64 `json:"descuento"`
	FechaVencimiento *string `json:"fecha_vencimiento"`
	Cliente          string  `json:"cliente"`
}

// GetCouponsByDNI lists the coupons a client can still redeem: not yet
// attached to an order and either without expiry or expiring today or later.
func (h *ClientHandler) GetCouponsByDNI(c echo.Context) error {
	dni := c.Param("dni")
	if dni == "" {
		return fail(c, http.StatusBadRequest, "el DNI es obligatorio", nil)
	}

	var client models.Client
	if err := h.DB.Where("dni = ?", dni).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "No se encontró un cliente con ese DNI", nil)
		}
		return fail(c, http.StatusInternalServerError, "Error al buscar el cliente", err)
	}

	var coupons []couponView
	err := h.DB.Model(&models.Coupon{}).
		Select(`coupons.id, coupons.codigo, coupons.descuento,
			coupons.fecha_vencimiento, clients.nombre AS cliente`).
		Joins("JOIN clients ON clients.id = coupons.client_id").
		Where("coupons.client_id = ? AND coupons.order_id IS NULL", client.ID).
		Where("coupons.fecha_vencimiento IS NULL OR coupons.fecha_vencimiento >= CURRENT_DATE").
		Order("coupons.id").
		Scan(&coupons).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Error al obtener cupones", err)
	}

	if len(coupons) == 0 {
		return c.JSON(http.StatusNotFound, Envelope{
			Status:  "ERROR",
			Message: "No hay cupones",
			Data:    []couponView{},
		})
	}
	return ok(c, http.StatusOK, coupons)
}
